package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

func TestUniformSetBumpsVersionOnChange(t *testing.T) {
	g := NewGlobalUniforms()
	v := g.Version()

	assert.False(t, g.PixelRatio.Set(1), "unchanged value")
	assert.Equal(t, v, g.Version())

	assert.True(t, g.PixelRatio.Set(2))
	assert.Equal(t, v+1, g.Version())
	assert.Equal(t, float32(2), g.PixelRatio.Get())
}

func TestApplyUploadsOnlyChangedValues(t *testing.T) {
	ctx := software.New(4, 4)
	g := NewGlobalUniforms()
	p := ctx.CreateProgram(gpu.ProgramMeshColor)
	require.NoError(t, p.Err())
	ctx.UseProgram(p)
	sp := p.(*software.Program)

	all := g.Apply(ctx, p, false)
	assert.Equal(t, len(g.entries), all, "first upload sends everything")
	assert.Equal(t, all, sp.Uploads())

	assert.Zero(t, g.Apply(ctx, p, false), "nothing changed")

	g.Near.Set(0.25)
	g.FogColor.Set(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, 2, g.Apply(ctx, p, false))
	v, ok := sp.Value("uNear")
	require.True(t, ok)
	assert.Equal(t, float32(0.25), v)

	assert.Equal(t, all, g.Apply(ctx, p, true), "forced upload")
}

func TestApplyTracksProgramsIndependently(t *testing.T) {
	ctx := software.New(4, 4)
	g := NewGlobalUniforms()
	a := ctx.CreateProgram(gpu.ProgramMeshColor)
	b := ctx.CreateProgram(gpu.ProgramMeshPick)

	ctx.UseProgram(a)
	g.Apply(ctx, a, false)
	g.Far.Set(50)
	assert.Equal(t, 1, g.Apply(ctx, a, false))

	ctx.UseProgram(b)
	assert.Equal(t, len(g.entries), g.Apply(ctx, b, false), "b was never updated")

	g.Forget(b)
	assert.Equal(t, len(g.entries), g.Apply(ctx, b, false), "forgotten programs start over")
}

type fixedCamera struct {
	identityCamera
	position mgl32.Vec3
}

func (c fixedCamera) Position() mgl32.Vec3 { return c.position }

func TestSetCameraDerivesInverses(t *testing.T) {
	g := NewGlobalUniforms()
	cam := fixedCamera{position: mgl32.Vec3{0, 0, 5}}
	model := mgl32.Translate3D(1, 2, 3)

	g.SetCamera(cam, model)
	assert.Equal(t, model, g.Model.Get())
	assert.True(t, g.InvModelView.Get().ApproxEqualThreshold(model.Inv(), 1e-5))
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, g.CameraDir.Get())
	assert.Equal(t, float32(1), g.IsOrtho.Get())

	v := g.Version()
	g.SetCamera(cam, model)
	assert.Equal(t, v, g.Version(), "an unchanged camera changes nothing")
}

func TestSetViewportUniform(t *testing.T) {
	g := NewGlobalUniforms()
	g.SetViewport(Viewport{X: 1, Y: 2, Width: 30, Height: 40}, 64, 48)
	assert.Equal(t, mgl32.Vec4{1, 2, 30, 40}, g.Viewport.Get())
	assert.Equal(t, mgl32.Vec2{64, 48}, g.DrawingBufferSize.Get())
}
