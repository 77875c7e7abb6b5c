package software

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

func readAll(t *testing.T, c *Context, w, h int) []uint8 {
	t.Helper()
	px := make([]uint8, w*h*4)
	require.NoError(t, c.ReadPixels(0, 0, w, h, px))
	return px
}

func colorProgram(t *testing.T, c *Context, rgb mgl32.Vec3, alpha float32) gpu.Program {
	t.Helper()
	p := c.CreateProgram(gpu.ProgramMeshColor)
	require.NoError(t, p.Err())
	c.UseProgram(p)
	c.Uniform("uColor", rgb)
	c.Uniform("uAlpha", alpha)
	c.Uniform("uAmbientIntensity", float32(1))
	return p
}

func TestClearRespectsScissorAndColorMask(t *testing.T) {
	c := New(4, 4)
	c.ClearColor(1, 0, 0, 1)
	c.Clear(gpu.ClearColorBit)

	c.Enable(gpu.CapScissorTest)
	c.Scissor(0, 0, 2, 4)
	c.ColorMask(false, true, false, false)
	c.ClearColor(0, 1, 0, 0)
	c.Clear(gpu.ClearColorBit)

	px := readAll(t, c, 4, 4)
	assert.Equal(t, []uint8{255, 255, 0, 255}, px[0:4], "left half keeps red and gains green")
	assert.Equal(t, []uint8{255, 0, 0, 255}, px[3*4:4*4], "right half untouched")
}

func TestFullscreenTriangleCoverage(t *testing.T) {
	c := New(8, 8)
	colorProgram(t, c, mgl32.Vec3{0, 0, 1}, 1)
	require.NoError(t, c.Draw(NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0)))

	px := readAll(t, c, 8, 8)
	for i := 0; i < len(px); i += 4 {
		assert.Equal(t, []uint8{0, 0, 255, 255}, px[i:i+4], "pixel %d", i/4)
	}
	assert.Equal(t, 1, c.Draws())
}

func TestSharedEdgesAreRasterisedOnce(t *testing.T) {
	c := New(16, 16)
	colorProgram(t, c, mgl32.Vec3{0.25, 0.25, 0.25}, 1)
	c.Enable(gpu.CapBlend)
	c.BlendFunc(gpu.Blend(gpu.One, gpu.One))

	// Two triangles sharing a diagonal that passes through pixel centres.
	require.NoError(t, c.Draw(NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0)))

	px := readAll(t, c, 16, 16)
	for i := 0; i < len(px); i += 4 {
		require.Equal(t, uint8(64), px[i], "pixel %d blended more than once", i/4)
	}
}

func TestDepthTestKeepsNearest(t *testing.T) {
	c := New(4, 4)
	c.Enable(gpu.CapDepthTest)
	c.DepthFunc(gpu.DepthLess)
	c.DepthMask(true)
	c.Clear(gpu.ClearColorBit | gpu.ClearDepthBit)

	colorProgram(t, c, mgl32.Vec3{1, 0, 0}, 1)
	require.NoError(t, c.Draw(NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, -0.5)))
	colorProgram(t, c, mgl32.Vec3{0, 1, 0}, 1)
	require.NoError(t, c.Draw(NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0.5)))

	px := readAll(t, c, 4, 4)
	assert.Equal(t, []uint8{255, 0, 0, 255}, px[0:4])
}

func TestCullingAndWinding(t *testing.T) {
	quad := NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0)

	c := New(2, 2)
	colorProgram(t, c, mgl32.Vec3{1, 1, 1}, 1)
	c.Enable(gpu.CapCullFace)
	c.CullFace(gpu.FaceFront)
	require.NoError(t, c.Draw(quad))
	assert.Equal(t, []uint8{0, 0, 0, 0}, readAll(t, c, 2, 2)[0:4], "counter-clockwise quad is front facing")

	c.FrontFace(gpu.CW)
	require.NoError(t, c.Draw(quad))
	assert.Equal(t, []uint8{255, 255, 255, 255}, readAll(t, c, 2, 2)[0:4])
}

func TestBoxWindingFacesOutward(t *testing.T) {
	c := New(8, 8)
	colorProgram(t, c, mgl32.Vec3{1, 1, 1}, 1)
	c.Enable(gpu.CapCullFace)
	c.CullFace(gpu.FaceBack)
	c.Uniform("uProjection", mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 10))
	c.Uniform("uView", mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))

	require.NoError(t, c.Draw(NewBox(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5})))
	px := readAll(t, c, 8, 8)
	centre := (4*8 + 4) * 4
	assert.Equal(t, uint8(255), px[centre], "front face of the box survives back face culling")
}

func TestDrawErrors(t *testing.T) {
	c := New(2, 2)
	assert.ErrorIs(t, c.Draw(NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0)), core.ErrInvalidArgument)

	p := c.CreateProgram("no.such.program")
	assert.ErrorIs(t, p.Err(), core.ErrProgramNotLinked)
	c.UseProgram(p)
	assert.ErrorIs(t, c.Draw(NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0)), core.ErrProgramNotLinked)
}

func TestLinkFailure(t *testing.T) {
	c := New(2, 2, WithLinkFailure(gpu.ProgramMeshPick))
	assert.NoError(t, c.CreateProgram(gpu.ProgramMeshColor).Err())
	assert.ErrorIs(t, c.CreateProgram(gpu.ProgramMeshPick).Err(), core.ErrProgramNotLinked)
}

func TestTextureCapabilitiesAndMemoryLimit(t *testing.T) {
	c := New(2, 2, WithExtensions(gpu.Extensions{DrawBuffers: true}), WithMemoryLimit(64))

	_, err := c.CreateTexture("f", gpu.FormatRGBA32F, 2, 2)
	assert.ErrorIs(t, err, core.ErrCapabilityMissing)
	_, err = c.CreateTexture("d", gpu.FormatDepth, 2, 2)
	assert.ErrorIs(t, err, core.ErrCapabilityMissing)

	db, err := c.CreateTexture("db", gpu.FormatDepthBuffer, 2, 2)
	require.NoError(t, err, "depth buffers need no extension")
	assert.Equal(t, 16, c.MemoryUsed())

	_, err = c.CreateTexture("big", gpu.FormatRGBA8, 4, 4)
	assert.ErrorIs(t, err, core.ErrAllocationFailed)

	c.DeleteTexture(db)
	assert.Zero(t, c.MemoryUsed())
	assert.Zero(t, c.ResourceCounts().Textures)
}

func TestAttachmentRules(t *testing.T) {
	c := New(2, 2, WithExtensions(gpu.Extensions{}))
	fb, err := c.CreateFramebuffer("fb")
	require.NoError(t, err)
	color, err := c.CreateTexture("c", gpu.FormatRGBA8, 2, 2)
	require.NoError(t, err)
	depth, err := c.CreateTexture("d", gpu.FormatDepthBuffer, 2, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, c.AttachColor(fb, 1, color), core.ErrCapabilityMissing, "second attachment needs draw buffers")
	assert.ErrorIs(t, c.AttachColor(fb, 0, depth), core.ErrInvalidArgument)
	assert.ErrorIs(t, c.AttachDepth(fb, color), core.ErrInvalidArgument)
	assert.ErrorIs(t, c.AttachColor(nil, 0, color), core.ErrInvalidArgument)
	assert.NoError(t, c.AttachColor(fb, 0, color))
	assert.NoError(t, c.AttachDepth(fb, depth))
}

func TestDepthBufferIsNotSampleable(t *testing.T) {
	c := New(2, 2)
	p := c.CreateProgram(gpu.ProgramMeshColor).(*Program)
	db, err := c.CreateTexture("db", gpu.FormatDepthBuffer, 2, 2)
	require.NoError(t, err)
	dt, err := c.CreateTexture("dt", gpu.FormatDepth, 2, 2)
	require.NoError(t, err)

	c.UseProgram(p)
	c.Uniform("tDepth", db)
	assert.Nil(t, p.texture("tDepth"))
	c.Uniform("tDepth", dt)
	assert.NotNil(t, p.texture("tDepth"))
}

func TestReadPixelsBounds(t *testing.T) {
	c := New(2, 2)
	px := make([]uint8, 16)
	assert.ErrorIs(t, c.ReadPixels(1, 1, 2, 2, px), core.ErrInvalidArgument)
	assert.ErrorIs(t, c.ReadPixels(0, 0, 2, 2, px[:8]), core.ErrInvalidArgument)
	assert.NoError(t, c.ReadPixels(0, 0, 2, 2, px))
}

func TestResizeResetsViewport(t *testing.T) {
	c := New(2, 2)
	c.Viewport(0, 0, 1, 1)
	c.Resize(6, 3)
	w, h := c.DrawingBufferSize()
	assert.Equal(t, 6, w)
	assert.Equal(t, 3, h)
	assert.Equal(t, [4]int{0, 0, 6, 3}, c.viewport)
}

func TestBlendFactors(t *testing.T) {
	src := mgl32.Vec4{1, 0.5, 0, 0.25}
	dst := mgl32.Vec4{0, 0, 1, 1}

	over := blend(gpu.BlendSeparate(gpu.SrcAlpha, gpu.OneMinusSrcAlpha, gpu.One, gpu.OneMinusSrcAlpha), src, dst)
	assert.InDeltaSlice(t, []float32{0.25, 0.125, 0.75, 1}, over[:], 1e-6)

	accum := blend(gpu.BlendSeparate(gpu.One, gpu.One, gpu.Zero, gpu.OneMinusSrcAlpha), src, dst)
	assert.InDeltaSlice(t, []float32{1, 0.5, 1, 0.75}, accum[:], 1e-6)
}
