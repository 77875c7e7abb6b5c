package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

func newManager(opts ...software.Option) (*software.Context, *FramebufferManager) {
	ctx := software.New(16, 16, opts...)
	return ctx, NewFramebufferManager(ctx, gpu.NewStateCache(ctx), core.NewNopLogger())
}

func TestFramebufferManagerLayouts(t *testing.T) {
	split := gpu.AllExtensions()
	split.DrawBuffers = false
	tests := []struct {
		name         string
		ext          gpu.Extensions
		passes       int
		framebuffers int
	}{
		{"multiple attachments", gpu.AllExtensions(), 1, 1},
		{"split", split, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, m := newManager(software.WithExtensions(tt.ext))
			assert.False(t, m.Enabled(), "nothing allocated yet")
			require.NoError(t, m.Resize(16, 8))
			require.True(t, m.Enabled())

			target := m.Target()
			assert.Equal(t, tt.passes, target.Passes())
			a, b := target.Textures()
			assert.Equal(t, gpu.FormatRGBA32F, a.Format())
			assert.Equal(t, gpu.FormatRGBA32F, b.Format())
			assert.Equal(t, 16, a.Width())
			assert.Equal(t, 8, a.Height())

			rc := ctx.ResourceCounts()
			assert.Equal(t, 2, rc.Textures)
			assert.Equal(t, tt.framebuffers, rc.Framebuffers)

			m.Dispose()
			rc = ctx.ResourceCounts()
			assert.Zero(t, rc.Textures)
			assert.Zero(t, rc.Framebuffers)
			assert.False(t, m.Enabled())
		})
	}
}

func TestFramebufferManagerResize(t *testing.T) {
	ctx, m := newManager()
	require.NoError(t, m.Resize(16, 16))
	first := m.Target()

	require.NoError(t, m.Resize(16, 16))
	assert.Same(t, first, m.Target(), "same size is a no-op")

	require.NoError(t, m.Resize(8, 4))
	assert.NotSame(t, first, m.Target())
	w, h := m.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 4, h)
	assert.Equal(t, 2, ctx.ResourceCounts().Textures, "old textures were released")

	assert.ErrorIs(t, m.Resize(0, 4), core.ErrInvalidViewport)
	assert.True(t, m.Enabled(), "a bad size does not disable")
}

func TestFramebufferManagerUnsupported(t *testing.T) {
	ctx, m := newManager(software.WithExtensions(gpu.Extensions{DepthTexture: true, DrawBuffers: true}))
	require.NoError(t, m.Resize(16, 16))
	assert.False(t, m.Enabled())
	assert.Nil(t, m.Target())
	assert.Zero(t, ctx.ResourceCounts().Textures)
}

func TestFramebufferManagerAllocationFailure(t *testing.T) {
	// Enough for both textures at 4x4 but not at 16x16.
	ctx, m := newManager(software.WithMemoryLimit(2 * 4 * 4 * 16))
	require.NoError(t, m.Resize(4, 4))
	require.True(t, m.Enabled())

	err := m.Resize(16, 16)
	assert.ErrorIs(t, err, core.ErrAllocationFailed)
	assert.False(t, m.Enabled())
	assert.Zero(t, ctx.MemoryUsed(), "partial allocations are released")

	require.NoError(t, m.Resize(4, 4), "disabled managers ignore resizes")
	assert.False(t, m.Enabled())
	assert.Zero(t, ctx.ResourceCounts().Textures)
}

func TestWBOITCompositorWithoutTarget(t *testing.T) {
	ctx, m := newManager()
	c := NewWBOITCompositor(ctx, gpu.NewStateCache(ctx), NewGlobalUniforms(), m, core.NewNopLogger())

	called := false
	err := c.Accumulate(nil, func() { called = true })
	assert.ErrorIs(t, err, core.ErrCapabilityMissing)
	assert.False(t, called)
	assert.ErrorIs(t, c.Resolve(nil, Viewport{Width: 4, Height: 4}), core.ErrCapabilityMissing)
}

func TestWBOITCompositorPasses(t *testing.T) {
	split := gpu.AllExtensions()
	split.DrawBuffers = false
	for _, ext := range []gpu.Extensions{gpu.AllExtensions(), split} {
		ctx, m := newManager(software.WithExtensions(ext))
		require.NoError(t, m.Resize(4, 4))
		u := NewGlobalUniforms()
		c := NewWBOITCompositor(ctx, gpu.NewStateCache(ctx), u, m, core.NewNopLogger())

		var passes []int32
		require.NoError(t, c.Accumulate(nil, func() {
			assert.True(t, u.RenderWboit.Get())
			passes = append(passes, u.WboitPass.Get())
		}))
		if ext.DrawBuffers {
			assert.Equal(t, []int32{gpu.WboitPassBoth}, passes)
		} else {
			assert.Equal(t, []int32{gpu.WboitPassColor, gpu.WboitPassWeight}, passes)
		}
		assert.False(t, u.RenderWboit.Get(), "accumulation state is reset")
		assert.Nil(t, u.DepthTexture.Get())

		require.NoError(t, c.Resolve(nil, Viewport{Width: 4, Height: 4}))
		assert.Equal(t, 1, ctx.ResourceCounts().Programs, "resolve program created on demand")
		c.Dispose()
		assert.Zero(t, ctx.ResourceCounts().Programs)
	}
}
