package software

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

const maxClipObjects = 5

// Clip object type codes as uploaded in uClipObjectType.
const (
	clipNone int32 = iota
	clipPlane
	clipSphere
	clipCube
	clipCylinder
	clipInfiniteCone
)

type vertexFunc func(p *Program, instance mgl32.Mat4, position mgl32.Vec3) vertexOut

// fragmentFunc fills out and returns false to discard the fragment.
type fragmentFunc func(p *Program, in *FragmentInput, out *[gpu.MaxDrawBuffers]mgl32.Vec4) bool

type programDef struct {
	vertex   vertexFunc
	fragment fragmentFunc
}

var builtins = map[string]programDef{
	gpu.ProgramMeshColor:    {vertex: meshVertex, fragment: meshColor},
	gpu.ProgramMeshPick:     {vertex: meshVertex, fragment: meshPick},
	gpu.ProgramMeshDepth:    {vertex: meshVertex, fragment: meshDepth},
	gpu.ProgramWboitResolve: {vertex: quadVertex, fragment: wboitResolve},
}

// Program is a built-in program plus the uniform values uploaded to it.
type Program struct {
	id       uint32
	name     string
	err      error
	def      programDef
	uniforms map[string]gpu.Value
	uploads  int
}

func (p *Program) ID() uint32   { return p.id }
func (p *Program) Name() string { return p.name }
func (p *Program) Err() error   { return p.err }

// Uploads is the number of uniform values uploaded to the program.
func (p *Program) Uploads() int {
	return p.uploads
}

// Value returns the last value uploaded under name.
func (p *Program) Value(name string) (gpu.Value, bool) {
	v, ok := p.uniforms[name]
	return v, ok
}

func (p *Program) f32(name string, def float32) float32 {
	if v, ok := p.uniforms[name].(float32); ok {
		return v
	}
	return def
}

func (p *Program) i32(name string, def int32) int32 {
	if v, ok := p.uniforms[name].(int32); ok {
		return v
	}
	return def
}

func (p *Program) flag(name string) bool {
	v, _ := p.uniforms[name].(bool)
	return v
}

func (p *Program) vec3(name string, def mgl32.Vec3) mgl32.Vec3 {
	if v, ok := p.uniforms[name].(mgl32.Vec3); ok {
		return v
	}
	return def
}

func (p *Program) vec4(name string, def mgl32.Vec4) mgl32.Vec4 {
	if v, ok := p.uniforms[name].(mgl32.Vec4); ok {
		return v
	}
	return def
}

func (p *Program) mat4(name string) mgl32.Mat4 {
	if v, ok := p.uniforms[name].(mgl32.Mat4); ok {
		return v
	}
	return mgl32.Ident4()
}

// texture returns the sampler bound under name. Depth buffers cannot be
// sampled and read as unbound.
func (p *Program) texture(name string) *texture {
	t, _ := p.uniforms[name].(*texture)
	if t != nil && t.format == gpu.FormatDepthBuffer {
		return nil
	}
	return t
}

func meshVertex(p *Program, instance mgl32.Mat4, position mgl32.Vec3) vertexOut {
	world := p.mat4("uModel").Mul4(instance).Mul4x1(position.Vec4(1))
	view := p.mat4("uView").Mul4x1(world)
	return vertexOut{
		clip:  p.mat4("uProjection").Mul4x1(view),
		world: world.Vec3(),
		viewZ: view.Z(),
	}
}

func quadVertex(_ *Program, _ mgl32.Mat4, position mgl32.Vec3) vertexOut {
	return vertexOut{clip: mgl32.Vec4{position.X(), position.Y(), 0, 1}}
}

// clipped reports whether a world position lies inside one of the active
// clip objects. Planes cut the half space their rotated +Z normal points to.
func clipped(p *Program, world mgl32.Vec3) bool {
	count := int(p.i32("uClipObjectCount", 0))
	if count == 0 {
		return false
	}
	types, _ := p.uniforms["uClipObjectType"].([maxClipObjects]int32)
	positions, _ := p.uniforms["uClipObjectPosition"].([maxClipObjects]mgl32.Vec3)
	rotations, _ := p.uniforms["uClipObjectRotation"].([maxClipObjects]mgl32.Vec4)
	scales, _ := p.uniforms["uClipObjectScale"].([maxClipObjects]mgl32.Vec3)
	for i := 0; i < count && i < maxClipObjects; i++ {
		q := lmath.UnpackQuat(rotations[i])
		local := q.Inverse().Rotate(world.Sub(positions[i]))
		s := scales[i]
		var n mgl32.Vec3
		if s.X() != 0 && s.Y() != 0 && s.Z() != 0 {
			n = mgl32.Vec3{local.X() / s.X(), local.Y() / s.Y(), local.Z() / s.Z()}
		}
		inside := false
		switch types[i] {
		case clipPlane:
			inside = local.Z() > 0
		case clipSphere:
			inside = n.Len() <= 0.5
		case clipCube:
			inside = abs(n.X()) <= 0.5 && abs(n.Y()) <= 0.5 && abs(n.Z()) <= 0.5
		case clipCylinder:
			inside = mgl32.Vec2{n.X(), n.Z()}.Len() <= 0.5 && abs(n.Y()) <= 0.5
		case clipInfiniteCone:
			inside = local.Y() > 0 && mgl32.Vec2{local.X(), local.Z()}.Len() <= local.Y()*s.X()
		}
		if inside {
			return true
		}
	}
	return false
}

func abs(v float32) float32 {
	return math32.Abs(v)
}

func meshColor(p *Program, in *FragmentInput, out *[gpu.MaxDrawBuffers]mgl32.Vec4) bool {
	if clipped(p, in.World) {
		return false
	}
	color := p.vec3("uColor", mgl32.Vec3{1, 1, 1})
	alpha := p.f32("uAlpha", 1)

	shade := lmath.Saturate(p.f32("uAmbientIntensity", 1) + p.f32("uLightIntensity", 0))
	color = color.Mul(shade)

	switch p.i32("uMarker", 0) {
	case 1:
		color = lerp3(color, p.vec3("uHighlightColor", color), 0.5)
	case 2:
		color = lerp3(color, p.vec3("uSelectColor", color), 0.5)
	}

	if !in.FrontFacing {
		if p.flag("uInteriorColorFlag") {
			color = p.vec3("uInteriorColor", color)
		} else {
			color = color.Mul(1 - p.f32("uInteriorDarkening", 0))
		}
	}

	fogNear, fogFar := p.f32("uFogNear", 0), p.f32("uFogFar", 0)
	if fogFar > fogNear {
		f := lmath.Smoothstep(fogNear, fogFar, -in.ViewZ)
		color = lerp3(color, p.vec3("uFogColor", color), f)
		if p.flag("uTransparentBackground") {
			alpha *= 1 - f
		}
	}

	if p.flag("uRenderWboit") {
		return wboitWrite(p, in, color, alpha, out)
	}
	out[0] = color.Vec4(alpha)
	return true
}

// wboitWrite produces the weighted accumulation outputs. Fragments behind
// the opaque depth are dropped here because hardware depth testing is off.
func wboitWrite(p *Program, in *FragmentInput, color mgl32.Vec3, alpha float32, out *[gpu.MaxDrawBuffers]mgl32.Vec4) bool {
	z := in.FragCoord.Z()
	if depth := p.texture("tDepth"); depth != nil {
		vp := p.vec4("uViewport", mgl32.Vec4{})
		if z > depth.sample(in.X+int(vp.X()), in.Y+int(vp.Y())).X() {
			return false
		}
	}
	d := 1 - z
	weight := alpha * lmath.Clamp(d*d, 0.01, 1)
	accum := color.Mul(alpha * weight).Vec4(alpha)
	aw := alpha * weight
	revealage := mgl32.Vec4{aw, aw, aw, aw}
	switch p.i32("uWboitPass", gpu.WboitPassBoth) {
	case gpu.WboitPassColor:
		out[0] = accum
	case gpu.WboitPassWeight:
		out[0] = revealage
	default:
		out[0], out[1] = accum, revealage
	}
	return true
}

func meshPick(p *Program, in *FragmentInput, out *[gpu.MaxDrawBuffers]mgl32.Vec4) bool {
	if clipped(p, in.World) {
		return false
	}
	if p.f32("uAlpha", 1) < p.f32("uPickingAlphaThreshold", 0) {
		return false
	}
	out[0] = lmath.PackID(uint32(p.i32("uObjectId", 0))).Vec4(1)
	return true
}

func meshDepth(p *Program, in *FragmentInput, out *[gpu.MaxDrawBuffers]mgl32.Vec4) bool {
	if clipped(p, in.World) {
		return false
	}
	out[0] = lmath.PackDepth(in.FragCoord.Z()).Vec4(1)
	return true
}

// wboitResolve divides accumulated colour by accumulated weight; alpha is the
// revealage, i.e. how much of the opaque background stays visible.
func wboitResolve(p *Program, in *FragmentInput, out *[gpu.MaxDrawBuffers]mgl32.Vec4) bool {
	a, b := p.texture("tWboitA"), p.texture("tWboitB")
	if a == nil || b == nil {
		return false
	}
	vp := p.vec4("uViewport", mgl32.Vec4{})
	x, y := in.X-int(vp.X()), in.Y-int(vp.Y())
	accum := a.sample(x, y)
	w := lmath.Clamp(b.sample(x, y).X(), 0.0001, 50000)
	out[0] = accum.Vec3().Mul(1 / w).Vec4(accum.W())
	return true
}

func lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
