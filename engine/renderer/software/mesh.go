package software

import "github.com/go-gl/mathgl/mgl32"

// Mesh is an indexed triangle list drawn once per instance transform.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
	Instances []mgl32.Mat4
}

func (m *Mesh) DrawCount() int {
	if m.Indices != nil {
		return len(m.Indices)
	}
	return len(m.Positions)
}

func (m *Mesh) InstanceCount() int {
	if len(m.Instances) == 0 {
		return 1
	}
	return len(m.Instances)
}

func (m *Mesh) index(i int) uint32 {
	if m.Indices != nil {
		return m.Indices[i]
	}
	return uint32(i)
}

// NewQuad creates a rectangle in the plane z, wound counter-clockwise when
// seen from +Z.
func NewQuad(lo, hi mgl32.Vec2, z float32) *Mesh {
	return &Mesh{
		Positions: []mgl32.Vec3{
			{lo.X(), lo.Y(), z},
			{hi.X(), lo.Y(), z},
			{hi.X(), hi.Y(), z},
			{lo.X(), hi.Y(), z},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// NewBox creates an axis aligned box whose faces are wound counter-clockwise
// when seen from outside.
func NewBox(lo, hi mgl32.Vec3) *Mesh {
	pick := func(i int, axis int) float32 {
		if i&(1<<axis) != 0 {
			return hi[axis]
		}
		return lo[axis]
	}
	positions := make([]mgl32.Vec3, 8)
	for i := range positions {
		positions[i] = mgl32.Vec3{pick(i, 0), pick(i, 1), pick(i, 2)}
	}
	return &Mesh{
		Positions: positions,
		Indices: []uint32{
			4, 5, 7, 4, 7, 6, // +z
			0, 2, 3, 0, 3, 1, // -z
			1, 3, 7, 1, 7, 5, // +x
			0, 4, 6, 0, 6, 2, // -x
			2, 6, 7, 2, 7, 3, // +y
			0, 1, 5, 0, 5, 4, // -y
		},
	}
}
