package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Viewport is a pixel rectangle of the drawing buffer, origin bottom left.
type Viewport struct {
	X, Y          int
	Width, Height int
}

type Option func(*Renderer)

// WithLogger sets the sink for non-fatal diagnostics. Defaults to the
// process-wide logger.
func WithLogger(l core.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// WithProps applies initial properties on top of the defaults.
func WithProps(pp metadata.PartialProps) Option {
	return func(r *Renderer) {
		r.props.Apply(pp)
	}
}

// Renderer draws scenes into a graphics context. It owns its accumulation
// targets, render targets and uniform state. A Renderer must be driven from
// a single goroutine.
type Renderer struct {
	ctx    gpu.Context
	state  *gpu.StateCache
	logger core.Logger
	ext    gpu.Extensions

	props    metadata.Props
	style    metadata.StyleParams
	clip     *ClipState
	uniforms *GlobalUniforms

	fbm    *FramebufferManager
	wboit  *WBOITCompositor
	differ *ObjectStateDiffer

	viewport Viewport
	targets  map[string]*metadata.RenderTarget

	clock   *core.Clock
	metrics *core.Metrics
	frame   metadata.Stats
	frames  uint64

	disposed bool
}

// New creates a renderer for ctx. Capabilities are probed once here; when
// weighted blended transparency is supported its targets are allocated at
// the drawing buffer size.
func New(ctx gpu.Context, opts ...Option) *Renderer {
	width, height := ctx.DrawingBufferSize()
	r := &Renderer{
		ctx:      ctx,
		state:    gpu.NewStateCache(ctx),
		logger:   core.DefaultLogger(),
		ext:      ctx.Extensions(),
		props:    metadata.DefaultProps(),
		clip:     NewClipState(),
		uniforms: NewGlobalUniforms(),
		viewport: Viewport{Width: width, Height: height},
		targets:  make(map[string]*metadata.RenderTarget),
		clock:    core.NewClock(),
		metrics:  core.NewMetrics(),
	}
	for _, o := range opts {
		o(r)
	}
	r.logger.Debugf("renderer capabilities: %+v", r.ext)

	r.differ = NewObjectStateDiffer(r.state, r.ext)
	r.fbm = NewFramebufferManager(ctx, r.state, r.logger)
	r.wboit = NewWBOITCompositor(ctx, r.state, r.uniforms, r.fbm, r.logger)
	// A failed allocation already disabled the manager.
	_ = r.fbm.Resize(width, height)

	r.updateProps()
	r.uniforms.SetViewport(r.viewport, width, height)
	return r
}

// SetProps applies every set field of pp.
func (r *Renderer) SetProps(pp metadata.PartialProps) {
	r.props.Apply(pp)
	r.updateProps()
}

func (r *Renderer) updateProps() {
	r.props.PickingAlphaThreshold = lmath.Saturate(r.props.PickingAlphaThreshold)
	r.props.InteriorDarkening = lmath.Saturate(r.props.InteriorDarkening)
	r.style = ResolveStyle(r.props.Style)
	r.clip.Update(r.props.Clip)
	r.uniforms.SetProps(r.props, r.style, r.clip)
}

// Props returns a copy of the current properties.
func (r *Renderer) Props() metadata.Props {
	return r.props.Clone()
}

// Viewport returns the current viewport rectangle.
func (r *Renderer) Viewport() Viewport {
	return r.viewport
}

// SetViewport changes the rectangle frames are drawn to. Rectangles with no
// area are rejected and leave the renderer unchanged. Accumulation targets
// are only reallocated when the size changes.
func (r *Renderer) SetViewport(x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		r.logger.Debugf("viewport %dx%d at (%d,%d) ignored", width, height, x, y)
		return fmt.Errorf("viewport %dx%d: %w", width, height, core.ErrInvalidViewport)
	}
	resized := width != r.viewport.Width || height != r.viewport.Height
	r.viewport = Viewport{X: x, Y: y, Width: width, Height: height}
	// The drawing buffer may have been resized behind the cache's back.
	r.state.Invalidate()

	dw, dh := r.ctx.DrawingBufferSize()
	r.uniforms.SetViewport(r.viewport, dw, dh)
	if resized {
		if err := r.fbm.Resize(width, height); err != nil {
			r.logger.Debugf("viewport resize: %v", err)
		}
	}
	return nil
}

func (r *Renderer) bind(fb gpu.Framebuffer) {
	v := r.viewport
	r.state.BindFramebuffer(fb)
	r.state.DrawBuffers(1)
	r.state.Viewport(v.X, v.Y, v.Width, v.Height)
	r.state.Scissor(v.X, v.Y, v.Width, v.Height)
	r.state.Enable(gpu.CapScissorTest)
	r.state.DepthFunc(gpu.DepthLess)
}

func (r *Renderer) clearBound(red, green, blue, alpha float32) {
	r.state.ColorMask(true, true, true, true)
	r.state.DepthMask(true)
	r.state.ClearColor(red, green, blue, alpha)
	r.ctx.Clear(gpu.ClearColorBit | gpu.ClearDepthBit)
}

func (r *Renderer) clearBackground(transparentBackground bool) {
	bg := r.props.BackgroundColor
	alpha := float32(1)
	if transparentBackground {
		alpha = 0
	}
	r.clearBound(bg.X(), bg.Y(), bg.Z(), alpha)
}

// Clear clears the default framebuffer to the background colour, with alpha
// 0 when transparentBackground is set and 1 otherwise.
func (r *Renderer) Clear(transparentBackground bool) error {
	if r.disposed {
		return core.ErrDisposed
	}
	r.bind(nil)
	r.clearBackground(transparentBackground)
	return nil
}

// Stats returns resource counts and the counters of the last frame.
func (r *Renderer) Stats() metadata.Stats {
	s := r.frame
	rc := r.ctx.ResourceCounts()
	s.ProgramCount = rc.Programs
	s.ShaderCount = rc.Shaders
	s.TextureCount = rc.Textures
	s.FramebufferCount = rc.Framebuffers
	s.FrameCount = r.frames
	s.FrameTimeMS = r.metrics.FrameTime()
	return s
}

// CreateRenderTarget allocates an off-screen colour and depth target. Its
// depth texture, when supported, can be passed back to Render as the
// depth transparent fragments are tested against.
func (r *Renderer) CreateRenderTarget(width, height int) (*metadata.RenderTarget, error) {
	if r.disposed {
		return nil, core.ErrDisposed
	}
	label := "target-" + uuid.NewString()
	t := &metadata.RenderTarget{Label: label, Width: width, Height: height}

	var err error
	if t.Color, err = r.ctx.CreateTexture(label+"-color", gpu.FormatRGBA8, width, height); err != nil {
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	if r.ext.DepthTexture {
		t.Depth, err = r.ctx.CreateTexture(label+"-depth", gpu.FormatDepth, width, height)
	} else {
		t.DepthBuffer, err = r.ctx.CreateTexture(label+"-depth", gpu.FormatDepthBuffer, width, height)
	}
	if err != nil {
		r.releaseTarget(t)
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	if t.Framebuffer, err = r.ctx.CreateFramebuffer(label); err != nil {
		r.releaseTarget(t)
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	if err = r.ctx.AttachColor(t.Framebuffer, 0, t.Color); err == nil {
		depth := t.Depth
		if depth == nil {
			depth = t.DepthBuffer
		}
		err = r.ctx.AttachDepth(t.Framebuffer, depth)
	}
	if err != nil {
		r.releaseTarget(t)
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	r.targets[label] = t
	return t, nil
}

// DestroyRenderTarget releases a target created by CreateRenderTarget.
func (r *Renderer) DestroyRenderTarget(t *metadata.RenderTarget) {
	if t == nil {
		return
	}
	if _, ok := r.targets[t.Label]; !ok {
		return
	}
	delete(r.targets, t.Label)
	r.releaseTarget(t)
}

func (r *Renderer) releaseTarget(t *metadata.RenderTarget) {
	if t.Framebuffer != nil {
		r.state.Forget(t.Framebuffer)
		r.ctx.DeleteFramebuffer(t.Framebuffer)
	}
	r.ctx.DeleteTexture(t.Color)
	r.ctx.DeleteTexture(t.Depth)
	r.ctx.DeleteTexture(t.DepthBuffer)
}

// ReadPixels reads RGBA8 pixels from target, or from the default framebuffer
// when target is nil. Rows start at the bottom.
func (r *Renderer) ReadPixels(target *metadata.RenderTarget, x, y, width, height int, dst []uint8) error {
	if r.disposed {
		return core.ErrDisposed
	}
	var fb gpu.Framebuffer
	if target != nil {
		fb = target.Framebuffer
	}
	r.state.BindFramebuffer(fb)
	return r.ctx.ReadPixels(x, y, width, height, dst)
}

// Dispose releases every resource the renderer owns. Programs bound to
// drawables belong to the scene and are left alone.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	for label, t := range r.targets {
		delete(r.targets, label)
		r.releaseTarget(t)
	}
	r.wboit.Dispose()
	r.fbm.Dispose()
	r.state.Invalidate()
	r.disposed = true
}
