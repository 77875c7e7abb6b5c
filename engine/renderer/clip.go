package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"

	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

const MaxClipObjects = 5

// ClipState is the fixed-size form of the clip configuration the shaders
// read. Slots past Count hold neutral values.
type ClipState struct {
	Variant   metadata.ClipVariant
	Count     int
	Types     [MaxClipObjects]int32
	Positions [MaxClipObjects]mgl32.Vec3
	Rotations [MaxClipObjects]mgl32.Vec4
	Scales    [MaxClipObjects]mgl32.Vec3

	source []metadata.ClipObject
}

func NewClipState() *ClipState {
	c := &ClipState{}
	c.reset()
	return c
}

func (c *ClipState) reset() {
	c.Count = 0
	for i := 0; i < MaxClipObjects; i++ {
		c.Types[i] = int32(metadata.ClipPlane)
		c.Positions[i] = mgl32.Vec3{}
		c.Rotations[i] = lmath.IdentityQuat()
		c.Scales[i] = mgl32.Vec3{1, 1, 1}
	}
}

// Update refreshes the slots from props and reports whether anything
// changed. Objects beyond MaxClipObjects are ignored.
func (c *ClipState) Update(p metadata.ClipProps) bool {
	objects := p.Objects
	if len(objects) > MaxClipObjects {
		objects = objects[:MaxClipObjects]
	}
	if c.Variant == p.Variant && c.source != nil && slices.Equal(c.source, objects) {
		return false
	}
	c.Variant = p.Variant
	c.source = slices.Clone(objects)
	if c.source == nil {
		c.source = []metadata.ClipObject{}
	}
	c.reset()
	for i, o := range objects {
		c.Types[i] = int32(o.Type)
		c.Positions[i] = o.Position
		c.Rotations[i] = lmath.QuatFromAxisAngle(o.Axis, o.Angle)
		c.Scales[i] = o.Scale
	}
	c.Count = len(objects)
	return true
}
