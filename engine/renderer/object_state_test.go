package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

func newDiffer(t *testing.T, ext gpu.Extensions) (*software.Context, *ObjectStateDiffer, gpu.Program) {
	t.Helper()
	ctx := software.New(4, 4, software.WithExtensions(ext))
	p := ctx.CreateProgram(gpu.ProgramMeshColor)
	require.NoError(t, p.Err())
	return ctx, NewObjectStateDiffer(gpu.NewStateCache(ctx), ext), p
}

func TestObjectStateFaces(t *testing.T) {
	tests := []struct {
		name     string
		drawable metadata.Drawable
		cull     bool
		face     gpu.Face
		front    gpu.Winding
	}{
		{"default", metadata.Drawable{}, true, gpu.FaceBack, gpu.CCW},
		{"double sided", metadata.Drawable{DoubleSided: true}, false, gpu.FaceBack, gpu.CCW},
		{"flip sided", metadata.Drawable{FlipSided: true}, true, gpu.FaceBack, gpu.CW},
		{"direct volume", metadata.Drawable{DirectVolume: true, DoubleSided: true}, true, gpu.FaceFront, gpu.CCW},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, d, p := newDiffer(t, gpu.AllExtensions())
			dr := tt.drawable
			d.Apply(&dr, p, passOpaque)

			assert.True(t, dr.State.Applied)
			assert.Equal(t, p.ID(), dr.State.ProgramID)
			assert.Equal(t, tt.cull, dr.State.CullEnabled)
			assert.Equal(t, tt.cull, ctx.Enabled(gpu.CapCullFace))
			if tt.cull {
				assert.Equal(t, tt.face, dr.State.CullFace)
			}
			assert.Equal(t, tt.front, dr.State.FrontFace)
		})
	}
}

func TestObjectStateBlending(t *testing.T) {
	tests := []struct {
		name      string
		mode      passMode
		drawable  metadata.Drawable
		blend     bool
		fn        gpu.BlendFunc
		depthTest bool
		depthMask bool
	}{
		{"opaque", passOpaque, metadata.Drawable{Opaque: true}, false, gpu.BlendFunc{}, true, true},
		{"blended", passBlended, metadata.Drawable{WriteDepth: true}, true, blendAlpha, true, true},
		{"additive", passAdditive, metadata.Drawable{}, true, blendAdditive, true, false},
		{"accumulation", passWboit, metadata.Drawable{WriteDepth: true}, true, blendAccumulate, false, false},
		{"pick and depth", passPickDepth, metadata.Drawable{}, false, gpu.BlendFunc{}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, d, p := newDiffer(t, gpu.AllExtensions())
			dr := tt.drawable
			d.Apply(&dr, p, tt.mode)

			assert.Equal(t, tt.blend, dr.State.BlendOn)
			assert.Equal(t, tt.blend, ctx.Enabled(gpu.CapBlend))
			if tt.blend {
				assert.Equal(t, tt.fn, dr.State.BlendFunc)
				assert.Equal(t, tt.fn, ctx.CurrentBlend())
			}
			assert.Equal(t, tt.depthTest, dr.State.DepthTest)
			assert.Equal(t, tt.depthTest, ctx.Enabled(gpu.CapDepthTest))
			assert.Equal(t, tt.depthMask, dr.State.DepthMask)
		})
	}
}

func TestObjectStateDirectVolumeDepth(t *testing.T) {
	_, d, p := newDiffer(t, gpu.AllExtensions())
	volume := metadata.Drawable{DirectVolume: true, RenderMode: metadata.RenderModeVolume}
	d.Apply(&volume, p, passBlended)
	assert.False(t, volume.State.DepthTest, "volumes test depth in the shader")

	iso := metadata.Drawable{DirectVolume: true, RenderMode: metadata.RenderModeIsosurface}
	d.Apply(&iso, p, passBlended)
	assert.True(t, iso.State.DepthTest)

	noFragDepth := gpu.AllExtensions()
	noFragDepth.FragDepth = false
	_, d, p = newDiffer(t, noFragDepth)
	iso = metadata.Drawable{DirectVolume: true, RenderMode: metadata.RenderModeIsosurface}
	d.Apply(&iso, p, passBlended)
	assert.False(t, iso.State.DepthTest, "no fragment depth")

	_, d, p = newDiffer(t, gpu.Extensions{FragDepth: true})
	iso = metadata.Drawable{DirectVolume: true, RenderMode: metadata.RenderModeIsosurface}
	d.Apply(&iso, p, passBlended)
	assert.True(t, iso.State.DepthTest, "depth textures are not needed for hardware depth")
}

func TestObjectStateRepeatedDrawablesAreSkipped(t *testing.T) {
	ctx := software.New(4, 4)
	state := gpu.NewStateCache(ctx)
	d := NewObjectStateDiffer(state, gpu.AllExtensions())
	p := ctx.CreateProgram(gpu.ProgramMeshColor)

	a := metadata.Drawable{Opaque: true}
	b := metadata.Drawable{Opaque: true}
	d.Apply(&a, p, passOpaque)
	calls := ctx.StateCalls()
	d.Apply(&b, p, passOpaque)
	assert.Equal(t, calls, ctx.StateCalls(), "identical state reaches the context once")
	assert.Equal(t, a.State, b.State)
}

func TestObjectStateKeepsFailedProgram(t *testing.T) {
	_, d, p := newDiffer(t, gpu.AllExtensions())
	dr := metadata.Drawable{}
	dr.State.FailedPrograms[metadata.VariantPick] = 9
	d.Apply(&dr, p, passOpaque)
	assert.Equal(t, uint32(9), dr.State.FailedPrograms[metadata.VariantPick])
}
