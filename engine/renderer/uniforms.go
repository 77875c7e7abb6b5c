package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type uniformEntry interface {
	uniformName() string
	uniformVersion() uint64
	uniformValue() gpu.Value
}

// Uniform is one versioned global value. Setting an equal value keeps the
// version, so programs that already received it are not uploaded again.
type Uniform[T comparable] struct {
	name    string
	value   T
	version uint64
	clock   *uint64
}

func (u *Uniform[T]) Set(v T) bool {
	if u.value == v {
		return false
	}
	u.value = v
	*u.clock++
	u.version = *u.clock
	return true
}

func (u *Uniform[T]) Get() T {
	return u.value
}

func (u *Uniform[T]) uniformName() string     { return u.name }
func (u *Uniform[T]) uniformVersion() uint64  { return u.version }
func (u *Uniform[T]) uniformValue() gpu.Value { return u.value }

func newUniform[T comparable](g *GlobalUniforms, name string, v T) *Uniform[T] {
	g.clock++
	u := &Uniform[T]{name: name, value: v, version: g.clock, clock: &g.clock}
	g.entries = append(g.entries, u)
	return u
}

// GlobalUniforms holds the per-frame values shared by every draw call. Each
// value carries the clock tick of its last change; a program is only sent the
// values that changed since it was last brought up to date.
type GlobalUniforms struct {
	clock    uint64
	entries  []uniformEntry
	uploaded map[uint32]uint64

	Model                  *Uniform[mgl32.Mat4]
	View                   *Uniform[mgl32.Mat4]
	InvView                *Uniform[mgl32.Mat4]
	Projection             *Uniform[mgl32.Mat4]
	InvProjection          *Uniform[mgl32.Mat4]
	ModelView              *Uniform[mgl32.Mat4]
	InvModelView           *Uniform[mgl32.Mat4]
	ModelViewProjection    *Uniform[mgl32.Mat4]
	InvModelViewProjection *Uniform[mgl32.Mat4]

	CameraPosition *Uniform[mgl32.Vec3]
	CameraDir      *Uniform[mgl32.Vec3]
	Near           *Uniform[float32]
	Far            *Uniform[float32]
	FogNear        *Uniform[float32]
	FogFar         *Uniform[float32]
	FogColor       *Uniform[mgl32.Vec3]
	IsOrtho        *Uniform[float32]

	Viewport              *Uniform[mgl32.Vec4]
	DrawingBufferSize     *Uniform[mgl32.Vec2]
	PixelRatio            *Uniform[float32]
	TransparentBackground *Uniform[bool]

	InteriorDarkening     *Uniform[float32]
	InteriorColorFlag     *Uniform[bool]
	InteriorColor         *Uniform[mgl32.Vec3]
	HighlightColor        *Uniform[mgl32.Vec3]
	SelectColor           *Uniform[mgl32.Vec3]
	PickingAlphaThreshold *Uniform[float32]

	LightIntensity   *Uniform[float32]
	AmbientIntensity *Uniform[float32]
	Metalness        *Uniform[float32]
	Roughness        *Uniform[float32]
	Reflectivity     *Uniform[float32]

	ClipVariant        *Uniform[int32]
	ClipObjectCount    *Uniform[int32]
	ClipObjectType     *Uniform[[MaxClipObjects]int32]
	ClipObjectPosition *Uniform[[MaxClipObjects]mgl32.Vec3]
	ClipObjectRotation *Uniform[[MaxClipObjects]mgl32.Vec4]
	ClipObjectScale    *Uniform[[MaxClipObjects]mgl32.Vec3]

	RenderWboit  *Uniform[bool]
	WboitPass    *Uniform[int32]
	DepthTexture *Uniform[gpu.Texture]
}

func NewGlobalUniforms() *GlobalUniforms {
	g := &GlobalUniforms{uploaded: make(map[uint32]uint64)}
	id := mgl32.Ident4()
	clip := NewClipState()

	g.Model = newUniform(g, "uModel", id)
	g.View = newUniform(g, "uView", id)
	g.InvView = newUniform(g, "uInvView", id)
	g.Projection = newUniform(g, "uProjection", id)
	g.InvProjection = newUniform(g, "uInvProjection", id)
	g.ModelView = newUniform(g, "uModelView", id)
	g.InvModelView = newUniform(g, "uInvModelView", id)
	g.ModelViewProjection = newUniform(g, "uModelViewProjection", id)
	g.InvModelViewProjection = newUniform(g, "uInvModelViewProjection", id)

	g.CameraPosition = newUniform(g, "uCameraPosition", mgl32.Vec3{})
	g.CameraDir = newUniform(g, "uCameraDir", mgl32.Vec3{0, 0, -1})
	g.Near = newUniform(g, "uNear", float32(1))
	g.Far = newUniform(g, "uFar", float32(10000))
	g.FogNear = newUniform(g, "uFogNear", float32(0))
	g.FogFar = newUniform(g, "uFogFar", float32(0))
	g.FogColor = newUniform(g, "uFogColor", mgl32.Vec3{})
	g.IsOrtho = newUniform(g, "uIsOrtho", float32(0))

	g.Viewport = newUniform(g, "uViewport", mgl32.Vec4{})
	g.DrawingBufferSize = newUniform(g, "uDrawingBufferSize", mgl32.Vec2{})
	g.PixelRatio = newUniform(g, "uPixelRatio", float32(1))
	g.TransparentBackground = newUniform(g, "uTransparentBackground", false)

	g.InteriorDarkening = newUniform(g, "uInteriorDarkening", float32(0))
	g.InteriorColorFlag = newUniform(g, "uInteriorColorFlag", false)
	g.InteriorColor = newUniform(g, "uInteriorColor", mgl32.Vec3{})
	g.HighlightColor = newUniform(g, "uHighlightColor", mgl32.Vec3{})
	g.SelectColor = newUniform(g, "uSelectColor", mgl32.Vec3{})
	g.PickingAlphaThreshold = newUniform(g, "uPickingAlphaThreshold", float32(0))

	g.LightIntensity = newUniform(g, "uLightIntensity", float32(0))
	g.AmbientIntensity = newUniform(g, "uAmbientIntensity", float32(1))
	g.Metalness = newUniform(g, "uMetalness", float32(0))
	g.Roughness = newUniform(g, "uRoughness", float32(1))
	g.Reflectivity = newUniform(g, "uReflectivity", float32(0.5))

	g.ClipVariant = newUniform(g, "uClipVariant", int32(clip.Variant))
	g.ClipObjectCount = newUniform(g, "uClipObjectCount", int32(0))
	g.ClipObjectType = newUniform(g, "uClipObjectType", clip.Types)
	g.ClipObjectPosition = newUniform(g, "uClipObjectPosition", clip.Positions)
	g.ClipObjectRotation = newUniform(g, "uClipObjectRotation", clip.Rotations)
	g.ClipObjectScale = newUniform(g, "uClipObjectScale", clip.Scales)

	g.RenderWboit = newUniform(g, "uRenderWboit", false)
	g.WboitPass = newUniform(g, "uWboitPass", gpu.WboitPassBoth)
	g.DepthTexture = newUniform[gpu.Texture](g, "tDepth", nil)
	return g
}

// SetCamera derives the camera and transform values for one frame.
func (g *GlobalUniforms) SetCamera(camera metadata.Camera, model mgl32.Mat4) {
	view := camera.View()
	projection := camera.Projection()
	modelView := view.Mul4(model)
	mvp := projection.Mul4(modelView)

	// Inverses are only recomputed when their source changed.
	g.Model.Set(model)
	if g.View.Set(view) {
		g.InvView.Set(view.Inv())
	}
	if g.ModelView.Set(modelView) {
		g.InvModelView.Set(modelView.Inv())
	}
	if g.Projection.Set(projection) {
		g.InvProjection.Set(projection.Inv())
	}
	if g.ModelViewProjection.Set(mvp) {
		g.InvModelViewProjection.Set(mvp.Inv())
	}

	position := camera.Position()
	g.CameraPosition.Set(position)
	if dir := camera.Target().Sub(position); dir.Len() > 0 {
		g.CameraDir.Set(dir.Normalize())
	}
	g.Near.Set(camera.Near())
	g.Far.Set(camera.Far())
	g.FogNear.Set(camera.FogNear())
	g.FogFar.Set(camera.FogFar())
	if camera.IsOrthographic() {
		g.IsOrtho.Set(1)
	} else {
		g.IsOrtho.Set(0)
	}
}

// SetProps copies the configuration derived values.
func (g *GlobalUniforms) SetProps(p metadata.Props, style metadata.StyleParams, clip *ClipState) {
	g.FogColor.Set(p.BackgroundColor)
	g.InteriorDarkening.Set(p.InteriorDarkening)
	g.InteriorColorFlag.Set(p.InteriorColorFlag)
	g.InteriorColor.Set(p.InteriorColor)
	g.HighlightColor.Set(p.HighlightColor)
	g.SelectColor.Set(p.SelectColor)
	g.PickingAlphaThreshold.Set(p.PickingAlphaThreshold)

	g.LightIntensity.Set(style.LightIntensity)
	g.AmbientIntensity.Set(style.AmbientIntensity)
	g.Metalness.Set(style.Metalness)
	g.Roughness.Set(style.Roughness)
	g.Reflectivity.Set(style.Reflectivity)

	g.ClipVariant.Set(int32(clip.Variant))
	g.ClipObjectCount.Set(int32(clip.Count))
	g.ClipObjectType.Set(clip.Types)
	g.ClipObjectPosition.Set(clip.Positions)
	g.ClipObjectRotation.Set(clip.Rotations)
	g.ClipObjectScale.Set(clip.Scales)
}

// SetViewport records the viewport rectangle and drawing buffer size.
func (g *GlobalUniforms) SetViewport(v Viewport, drawingWidth, drawingHeight int) {
	g.Viewport.Set(mgl32.Vec4{float32(v.X), float32(v.Y), float32(v.Width), float32(v.Height)})
	g.DrawingBufferSize.Set(mgl32.Vec2{float32(drawingWidth), float32(drawingHeight)})
}

// Apply uploads to the bound program p every value that changed since p was
// last updated. force uploads everything. Returns the number of uploads.
func (g *GlobalUniforms) Apply(ctx gpu.Context, p gpu.Program, force bool) int {
	last, seen := g.uploaded[p.ID()]
	if seen && !force && last == g.clock {
		return 0
	}
	n := 0
	for _, e := range g.entries {
		if force || !seen || e.uniformVersion() > last {
			ctx.Uniform(e.uniformName(), e.uniformValue())
			n++
		}
	}
	g.uploaded[p.ID()] = g.clock
	return n
}

// Forget drops the upload record of a deleted program.
func (g *GlobalUniforms) Forget(p gpu.Program) {
	delete(g.uploaded, p.ID())
}

// Version is the clock tick of the most recent change.
func (g *GlobalUniforms) Version() uint64 {
	return g.clock
}
