package renderer

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

// WBOITCompositor implements weighted blended transparency: transparent
// fragments are summed into the accumulation target, then one full screen
// pass composites the weighted average over the target.
type WBOITCompositor struct {
	ctx      gpu.Context
	state    *gpu.StateCache
	uniforms *GlobalUniforms
	fbm      *FramebufferManager
	resolve  gpu.Program
	logger   core.Logger
}

func NewWBOITCompositor(ctx gpu.Context, state *gpu.StateCache, uniforms *GlobalUniforms, fbm *FramebufferManager, logger core.Logger) *WBOITCompositor {
	return &WBOITCompositor{
		ctx:      ctx,
		state:    state,
		uniforms: uniforms,
		fbm:      fbm,
		logger:   logger,
	}
}

func (c *WBOITCompositor) program() (gpu.Program, error) {
	if c.resolve == nil {
		c.resolve = c.ctx.CreateProgram(gpu.ProgramWboitResolve)
	}
	if err := c.resolve.Err(); err != nil {
		return nil, err
	}
	return c.resolve, nil
}

// Accumulate clears the accumulation textures and calls draw once per pass
// of the target layout, with the accumulation uniforms set. depth is the
// opaque depth transparent fragments are tested against.
func (c *WBOITCompositor) Accumulate(depth gpu.Texture, draw func()) error {
	target := c.fbm.Target()
	if target == nil {
		return fmt.Errorf("accumulate: %w", core.ErrCapabilityMissing)
	}
	width, height := c.fbm.Size()

	c.uniforms.RenderWboit.Set(true)
	c.uniforms.DepthTexture.Set(depth)
	defer func() {
		c.uniforms.RenderWboit.Set(false)
		c.uniforms.WboitPass.Set(gpu.WboitPassBoth)
		c.uniforms.DepthTexture.Set(nil)
	}()

	for i := 0; i < target.Passes(); i++ {
		pass := target.Bind(c.state, i)
		c.state.Viewport(0, 0, width, height)
		c.state.Scissor(0, 0, width, height)
		c.state.ColorMask(true, true, true, true)
		c.state.ClearColor(0, 0, 0, 1)
		c.ctx.Clear(gpu.ClearColorBit)

		c.uniforms.WboitPass.Set(pass)
		draw()
	}
	return nil
}

// Resolve composites the accumulated transparency over fb inside vp.
func (c *WBOITCompositor) Resolve(fb gpu.Framebuffer, vp Viewport) error {
	target := c.fbm.Target()
	if target == nil {
		return fmt.Errorf("resolve: %w", core.ErrCapabilityMissing)
	}
	p, err := c.program()
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	a, b := target.Textures()

	c.state.BindFramebuffer(fb)
	c.state.DrawBuffers(1)
	c.state.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
	c.state.Scissor(vp.X, vp.Y, vp.Width, vp.Height)
	c.state.Disable(gpu.CapCullFace)
	c.state.Disable(gpu.CapDepthTest)
	c.state.DepthMask(false)
	c.state.Enable(gpu.CapBlend)
	c.state.BlendFunc(blendResolve)

	c.state.UseProgram(p)
	c.uniforms.Apply(c.ctx, p, false)
	c.ctx.Uniform("tWboitA", a)
	c.ctx.Uniform("tWboitB", b)
	return c.ctx.Draw(c.ctx.FullscreenQuad())
}

// Dispose deletes the resolve program.
func (c *WBOITCompositor) Dispose() {
	if c.resolve != nil {
		c.state.Forget(c.resolve)
		c.uniforms.Forget(c.resolve)
		c.ctx.DeleteProgram(c.resolve)
		c.resolve = nil
	}
}
