package software

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

type texture struct {
	id     uint32
	label  string
	format gpu.TextureFormat
	width  int
	height int
	pix    []float32
}

func newTexture(id uint32, label string, format gpu.TextureFormat, width, height int) *texture {
	t := &texture{id: id, label: label, format: format, width: width, height: height}
	if format.IsDepth() {
		t.pix = make([]float32, width*height)
		for i := range t.pix {
			t.pix[i] = 1
		}
	} else {
		t.pix = make([]float32, width*height*4)
	}
	return t
}

func (t *texture) ID() uint32                { return t.id }
func (t *texture) Label() string             { return t.label }
func (t *texture) Format() gpu.TextureFormat { return t.format }
func (t *texture) Width() int                { return t.width }
func (t *texture) Height() int               { return t.height }

func (t *texture) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.width && y < t.height
}

// rgba returns the four channels of a pixel as a writable slice.
func (t *texture) rgba(x, y int) []float32 {
	i := (y*t.width + x) * 4
	return t.pix[i : i+4 : i+4]
}

// store converts a value for storage: fixed point formats clamp to [0, 1].
func (t *texture) store(v float32) float32 {
	if t.format != gpu.FormatRGBA8 {
		return v
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sample fetches the nearest texel, clamping to the edge.
func (t *texture) sample(x, y int) mgl32.Vec4 {
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	if t.format.IsDepth() {
		d := t.pix[y*t.width+x]
		return mgl32.Vec4{d, d, d, 1}
	}
	px := t.rgba(x, y)
	return mgl32.Vec4{px[0], px[1], px[2], px[3]}
}

func (t *texture) depthAt(x, y int) float32 {
	return t.pix[y*t.width+x]
}

func (t *texture) setDepth(x, y int, d float32) {
	t.pix[y*t.width+x] = d
}

func (t *texture) bytes() int {
	return t.width * t.height * t.format.BytesPerPixel()
}

type framebuffer struct {
	id    uint32
	label string
	color [gpu.MaxDrawBuffers]*texture
	depth *texture
}

func (fb *framebuffer) ID() uint32    { return fb.id }
func (fb *framebuffer) Label() string { return fb.label }

func (fb *framebuffer) size() (int, int) {
	for _, t := range fb.color {
		if t != nil {
			return t.width, t.height
		}
	}
	if fb.depth != nil {
		return fb.depth.width, fb.depth.height
	}
	return 0, 0
}

func (c *Context) newID() uint32 {
	c.nextID++
	return c.nextID
}

func (c *Context) CreateTexture(label string, format gpu.TextureFormat, width, height int) (gpu.Texture, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("texture %q %dx%d: %w", label, width, height, core.ErrInvalidArgument)
	}
	switch format {
	case gpu.FormatRGBA32F:
		if !c.ext.TextureFloat || !c.ext.ColorBufferFloat {
			return nil, fmt.Errorf("texture %q: float format: %w", label, core.ErrCapabilityMissing)
		}
	case gpu.FormatDepth:
		if !c.ext.DepthTexture {
			return nil, fmt.Errorf("texture %q: depth format: %w", label, core.ErrCapabilityMissing)
		}
	}
	size := width * height * format.BytesPerPixel()
	if c.memoryLimit > 0 && c.memoryUsed+size > c.memoryLimit {
		return nil, fmt.Errorf("texture %q needs %d bytes, %d of %d in use: %w", label, size, c.memoryUsed, c.memoryLimit, core.ErrAllocationFailed)
	}
	t := newTexture(c.newID(), label, format, width, height)
	c.textures[t.id] = t
	c.memoryUsed += size
	return t, nil
}

func (c *Context) DeleteTexture(t gpu.Texture) {
	if t == nil {
		return
	}
	st, ok := c.textures[t.ID()]
	if !ok {
		return
	}
	delete(c.textures, st.id)
	c.memoryUsed -= st.bytes()
	for _, fb := range c.framebuffers {
		for i := range fb.color {
			if fb.color[i] == st {
				fb.color[i] = nil
			}
		}
		if fb.depth == st {
			fb.depth = nil
		}
	}
}

func (c *Context) CreateFramebuffer(label string) (gpu.Framebuffer, error) {
	fb := &framebuffer{id: c.newID(), label: label}
	c.framebuffers[fb.id] = fb
	return fb, nil
}

func (c *Context) DeleteFramebuffer(fb gpu.Framebuffer) {
	if fb == nil {
		return
	}
	sfb, ok := c.framebuffers[fb.ID()]
	if !ok {
		return
	}
	delete(c.framebuffers, sfb.id)
	if c.bound == sfb {
		c.bound = nil
	}
}

func (c *Context) lookup(fb gpu.Framebuffer, t gpu.Texture) (*framebuffer, *texture, error) {
	if fb == nil {
		return nil, nil, fmt.Errorf("attach to default framebuffer: %w", core.ErrInvalidArgument)
	}
	sfb, ok := c.framebuffers[fb.ID()]
	if !ok {
		return nil, nil, fmt.Errorf("framebuffer %q not found: %w", fb.Label(), core.ErrInvalidArgument)
	}
	if t == nil {
		return sfb, nil, nil
	}
	st, ok := c.textures[t.ID()]
	if !ok {
		return nil, nil, fmt.Errorf("texture %q not found: %w", t.Label(), core.ErrInvalidArgument)
	}
	return sfb, st, nil
}

func (c *Context) AttachColor(fb gpu.Framebuffer, index int, t gpu.Texture) error {
	if index < 0 || index >= gpu.MaxDrawBuffers || (index > 0 && !c.ext.DrawBuffers) {
		return fmt.Errorf("colour attachment %d: %w", index, core.ErrCapabilityMissing)
	}
	sfb, st, err := c.lookup(fb, t)
	if err != nil {
		return err
	}
	if st != nil && st.format.IsDepth() {
		return fmt.Errorf("texture %q is not colour renderable: %w", st.label, core.ErrInvalidArgument)
	}
	sfb.color[index] = st
	return nil
}

func (c *Context) AttachDepth(fb gpu.Framebuffer, t gpu.Texture) error {
	sfb, st, err := c.lookup(fb, t)
	if err != nil {
		return err
	}
	if st != nil && !st.format.IsDepth() {
		return fmt.Errorf("texture %q is not depth renderable: %w", st.label, core.ErrInvalidArgument)
	}
	sfb.depth = st
	return nil
}

// CreateProgram links one of the built-in programs. The returned program
// reports a link error for unknown names or names configured to fail.
func (c *Context) CreateProgram(name string) gpu.Program {
	p := &Program{
		id:       c.newID(),
		name:     name,
		uniforms: make(map[string]gpu.Value),
	}
	def, ok := builtins[name]
	switch {
	case !ok:
		p.err = fmt.Errorf("program %q: no such shader: %w", name, core.ErrProgramNotLinked)
	case c.failLink[name]:
		p.err = fmt.Errorf("program %q: link failed: %w", name, core.ErrProgramNotLinked)
	default:
		p.def = def
	}
	c.programs[p.id] = p
	return p
}

func (c *Context) DeleteProgram(p gpu.Program) {
	if p == nil {
		return
	}
	delete(c.programs, p.ID())
	if c.program != nil && c.program.id == p.ID() {
		c.program = nil
	}
}

func (c *Context) FullscreenQuad() gpu.Geometry {
	if c.quad == nil {
		c.quad = NewQuad(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, 0)
	}
	return c.quad
}

func (c *Context) ResourceCounts() gpu.ResourceCounts {
	return gpu.ResourceCounts{
		Programs:     len(c.programs),
		Shaders:      2 * len(c.programs),
		Textures:     len(c.textures),
		Framebuffers: len(c.framebuffers),
	}
}
