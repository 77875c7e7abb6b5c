// Package software is a headless implementation of gpu.Context. It keeps
// every target in float memory and rasterises triangles on the CPU, which
// makes renderer output reproducible without a GPU or a window.
package software

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

type Option func(*Context)

// WithExtensions overrides the capability probe. Defaults to all extensions.
func WithExtensions(ext gpu.Extensions) Option {
	return func(c *Context) {
		c.ext = ext
	}
}

// WithMemoryLimit makes texture creation fail once the given number of
// bytes is in use. Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(c *Context) {
		c.memoryLimit = bytes
	}
}

// WithLinkFailure makes programs with the given names fail to link.
func WithLinkFailure(names ...string) Option {
	return func(c *Context) {
		for _, n := range names {
			c.failLink[n] = true
		}
	}
}

type Context struct {
	ext    gpu.Extensions
	screen *framebuffer
	bound  *framebuffer

	caps        [8]bool
	blend       gpu.BlendFunc
	depthMask   bool
	depthFunc   gpu.DepthFunc
	cull        gpu.Face
	front       gpu.Winding
	colorMask   [4]bool
	viewport    [4]int
	scissor     [4]int
	clearColor  [4]float32
	drawBuffers int
	program     *Program

	nextID       uint32
	programs     map[uint32]*Program
	textures     map[uint32]*texture
	framebuffers map[uint32]*framebuffer
	memoryLimit  int
	memoryUsed   int
	failLink     map[string]bool
	quad         *Mesh

	stateCalls int
	draws      int
	flushes    int
}

var _ gpu.Context = (*Context)(nil)

// New creates a context whose drawing buffer is width x height pixels.
func New(width, height int, opts ...Option) *Context {
	c := &Context{
		ext:          gpu.AllExtensions(),
		blend:        gpu.Blend(gpu.One, gpu.Zero),
		depthMask:    true,
		depthFunc:    gpu.DepthLess,
		cull:         gpu.FaceBack,
		front:        gpu.CCW,
		colorMask:    [4]bool{true, true, true, true},
		drawBuffers:  1,
		programs:     make(map[uint32]*Program),
		textures:     make(map[uint32]*texture),
		framebuffers: make(map[uint32]*framebuffer),
		failLink:     make(map[string]bool),
	}
	for _, o := range opts {
		o(c)
	}
	c.Resize(width, height)
	return c
}

// Resize reallocates the drawing buffer. Viewport and scissor are reset to
// cover it, as a browser does when a canvas changes size.
func (c *Context) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.screen = &framebuffer{label: "screen"}
	c.screen.color[0] = newTexture(0, "screen-color", gpu.FormatRGBA8, width, height)
	c.screen.depth = newTexture(0, "screen-depth", gpu.FormatDepth, width, height)
	c.bound = nil
	c.viewport = [4]int{0, 0, width, height}
	c.scissor = c.viewport
}

func (c *Context) Extensions() gpu.Extensions {
	return c.ext
}

func (c *Context) DrawingBufferSize() (int, int) {
	t := c.screen.color[0]
	return t.width, t.height
}

func (c *Context) target() *framebuffer {
	if c.bound == nil {
		return c.screen
	}
	return c.bound
}

// active returns the colour attachments fragment outputs are written to.
func (c *Context) active(fb *framebuffer) []*texture {
	n := 1
	if fb != c.screen && c.ext.DrawBuffers {
		n = c.drawBuffers
	}
	out := make([]*texture, 0, n)
	for i := 0; i < n && i < gpu.MaxDrawBuffers; i++ {
		if fb.color[i] != nil {
			out = append(out, fb.color[i])
		}
	}
	return out
}

func (c *Context) BindFramebuffer(fb gpu.Framebuffer) {
	c.stateCalls++
	if fb == nil {
		c.bound = nil
		return
	}
	c.bound = c.framebuffers[fb.ID()]
}

func (c *Context) DrawBuffers(n int) {
	c.stateCalls++
	if n < 1 {
		n = 1
	}
	c.drawBuffers = n
}

func (c *Context) Viewport(x, y, width, height int) {
	c.stateCalls++
	c.viewport = [4]int{x, y, width, height}
}

func (c *Context) Scissor(x, y, width, height int) {
	c.stateCalls++
	c.scissor = [4]int{x, y, width, height}
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.stateCalls++
	c.clearColor = [4]float32{r, g, b, a}
}

func (c *Context) Enable(cp gpu.Capability) {
	c.stateCalls++
	c.caps[cp] = true
}

func (c *Context) Disable(cp gpu.Capability) {
	c.stateCalls++
	c.caps[cp] = false
}

func (c *Context) BlendFunc(f gpu.BlendFunc) {
	c.stateCalls++
	c.blend = f
}

func (c *Context) DepthMask(enabled bool) {
	c.stateCalls++
	c.depthMask = enabled
}

func (c *Context) DepthFunc(f gpu.DepthFunc) {
	c.stateCalls++
	c.depthFunc = f
}

func (c *Context) CullFace(f gpu.Face) {
	c.stateCalls++
	c.cull = f
}

func (c *Context) FrontFace(w gpu.Winding) {
	c.stateCalls++
	c.front = w
}

func (c *Context) ColorMask(r, g, b, a bool) {
	c.stateCalls++
	c.colorMask = [4]bool{r, g, b, a}
}

func (c *Context) UseProgram(p gpu.Program) {
	c.stateCalls++
	if p == nil {
		c.program = nil
		return
	}
	c.program = c.programs[p.ID()]
}

func (c *Context) Uniform(name string, v gpu.Value) {
	if c.program == nil {
		return
	}
	c.program.uniforms[name] = v
	c.program.uploads++
}

// bounds is the pixel rectangle writes are limited to: the viewport for
// draws, intersected with the scissor box when scissoring is on.
func (c *Context) bounds(fb *framebuffer, useViewport bool) (x0, y0, x1, y1 int) {
	w, h := fb.size()
	x0, y0, x1, y1 = 0, 0, w, h
	if useViewport {
		x0, y0 = max(x0, c.viewport[0]), max(y0, c.viewport[1])
		x1, y1 = min(x1, c.viewport[0]+c.viewport[2]), min(y1, c.viewport[1]+c.viewport[3])
	}
	if c.caps[gpu.CapScissorTest] {
		x0, y0 = max(x0, c.scissor[0]), max(y0, c.scissor[1])
		x1, y1 = min(x1, c.scissor[0]+c.scissor[2]), min(y1, c.scissor[1]+c.scissor[3])
	}
	return x0, y0, x1, y1
}

func (c *Context) Clear(mask gpu.ClearMask) {
	fb := c.target()
	x0, y0, x1, y1 := c.bounds(fb, false)
	if mask&gpu.ClearColorBit != 0 {
		for _, t := range c.active(fb) {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					px := t.rgba(x, y)
					for i := 0; i < 4; i++ {
						if c.colorMask[i] {
							px[i] = t.store(c.clearColor[i])
						}
					}
				}
			}
		}
	}
	if mask&gpu.ClearDepthBit != 0 && fb.depth != nil && c.depthMask {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				fb.depth.setDepth(x, y, 1)
			}
		}
	}
}

func (c *Context) Flush() {
	c.flushes++
}

// ReadPixels copies RGBA8 pixels of the first colour attachment of the bound
// framebuffer. Rows start at the bottom, as in GL.
func (c *Context) ReadPixels(x, y, width, height int, dst []uint8) error {
	fb := c.target()
	t := fb.color[0]
	if t == nil {
		return fmt.Errorf("read pixels from %q: no colour attachment: %w", fb.label, core.ErrInvalidArgument)
	}
	if x < 0 || y < 0 || width < 0 || height < 0 || x+width > t.width || y+height > t.height {
		return fmt.Errorf("read pixels %dx%d at (%d,%d) outside %dx%d: %w", width, height, x, y, t.width, t.height, core.ErrInvalidArgument)
	}
	if len(dst) < width*height*4 {
		return fmt.Errorf("read pixels: buffer holds %d bytes, need %d: %w", len(dst), width*height*4, core.ErrInvalidArgument)
	}
	i := 0
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			px := t.rgba(col, row)
			for ch := 0; ch < 4; ch++ {
				v := px[ch]
				if v < 0 {
					v = 0
				} else if v > 1 {
					v = 1
				}
				dst[i] = uint8(math32.Round(v * 255))
				i++
			}
		}
	}
	return nil
}

// StateCalls is the number of state-setting calls received so far.
func (c *Context) StateCalls() int {
	return c.stateCalls
}

// Draws is the number of draw calls executed so far.
func (c *Context) Draws() int {
	return c.draws
}

// Flushes is the number of Flush calls received so far.
func (c *Context) Flushes() int {
	return c.flushes
}

// MemoryUsed is the number of bytes held by live textures.
func (c *Context) MemoryUsed() int {
	return c.memoryUsed
}

// Enabled reports whether a capability is currently on.
func (c *Context) Enabled(cp gpu.Capability) bool {
	return c.caps[cp]
}

// CurrentBlend returns the blend factors currently set.
func (c *Context) CurrentBlend() gpu.BlendFunc {
	return c.blend
}
