package renderer

import (
	"fmt"
	"math"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// noProgramID marks a drawable whose variant has no program at all.
const noProgramID = math.MaxUint32

// RenderOptions selects what one Render call produces.
type RenderOptions struct {
	// Target is drawn to; nil selects the default framebuffer.
	Target  *metadata.RenderTarget
	Variant metadata.RenderVariant
	// Clear clears colour and depth before drawing.
	Clear                 bool
	TransparentBackground bool
	// BufferScale is the ratio of drawing buffer to layout pixels. Zero means 1.
	BufferScale float32
	// DepthTexture is the opaque depth transparent fragments are tested
	// against. Defaults to the depth texture of Target.
	DepthTexture gpu.Texture
	// TransparentSubPass requests weighted blended transparency. Pick and
	// depth variants draw nothing in a transparent sub pass.
	TransparentSubPass bool
}

type drawFilter func(d *metadata.Drawable) bool

func opaque(d *metadata.Drawable) bool { return d.Opaque }

func blended(d *metadata.Drawable) bool { return !d.Opaque && d.WriteDepth }

func additive(d *metadata.Drawable) bool { return !d.Opaque && !d.WriteDepth }

func transparent(d *metadata.Drawable) bool { return !d.Opaque }

// Render draws scene as seen by camera. Degradations such as missing
// capabilities or broken programs are logged and never fail the frame; the
// only errors are calling after Dispose and a nil scene or camera.
func (r *Renderer) Render(scene *metadata.Scene, camera metadata.Camera, opts RenderOptions) error {
	if r.disposed {
		return core.ErrDisposed
	}
	if scene == nil || camera == nil {
		return fmt.Errorf("render without scene or camera: %w", core.ErrInvalidArgument)
	}
	r.clock.Start()
	issued, skipped := r.state.Issued(), r.state.Skipped()
	r.frame = metadata.Stats{}

	scale := opts.BufferScale
	if scale <= 0 {
		scale = 1
	}
	dw, dh := r.ctx.DrawingBufferSize()
	r.uniforms.SetCamera(camera, scene.Model)
	r.uniforms.SetViewport(r.viewport, dw, dh)
	r.uniforms.PixelRatio.Set(scale)
	r.uniforms.TransparentBackground.Set(opts.TransparentBackground)

	var fb gpu.Framebuffer
	if opts.Target != nil {
		fb = opts.Target.Framebuffer
	}
	r.bind(fb)

	switch opts.Variant {
	case metadata.VariantColor:
		if opts.Clear {
			r.clearBackground(opts.TransparentBackground)
		}
		r.renderColor(scene, fb, opts)
	case metadata.VariantPick, metadata.VariantDepth:
		if !opts.TransparentSubPass {
			if opts.Clear {
				// White decodes to the "nothing hit" identifier.
				r.clearBound(1, 1, 1, 1)
			}
			r.drawAll(scene, opts.Variant, passPickDepth, opaque)
			r.drawAll(scene, opts.Variant, passPickDepth, transparent)
		}
	default:
		r.logger.Warnf("unknown render variant %d", opts.Variant)
	}
	r.ctx.Flush()

	r.clock.Stop()
	r.metrics.Update(r.clock.Elapsed())
	r.frames++
	r.frame.StateChangeCount = r.state.Issued() - issued
	r.frame.StateSkipCount = r.state.Skipped() - skipped
	return nil
}

func (r *Renderer) renderColor(scene *metadata.Scene, fb gpu.Framebuffer, opts RenderOptions) {
	if r.useWboit(opts) {
		depth := opts.DepthTexture
		if depth == nil && opts.Target != nil {
			depth = opts.Target.Depth
		}
		if depth != nil {
			r.renderWboit(scene, fb, depth)
			return
		}
		r.logger.Debugf("no depth texture for transparent sub pass, using ordered blending")
	}
	r.drawAll(scene, metadata.VariantColor, passOpaque, opaque)
	r.drawAll(scene, metadata.VariantColor, passBlended, blended)
	r.drawAll(scene, metadata.VariantColor, passAdditive, additive)
}

func (r *Renderer) useWboit(opts RenderOptions) bool {
	return opts.TransparentSubPass &&
		r.props.Transparency == metadata.TransparencyMulti &&
		r.fbm.Enabled()
}

// renderWboit draws the opaque drawables into fb, accumulates every
// transparent drawable in one pass and composites the result over fb.
func (r *Renderer) renderWboit(scene *metadata.Scene, fb gpu.Framebuffer, depth gpu.Texture) {
	r.drawAll(scene, metadata.VariantColor, passOpaque, opaque)
	if !r.any(scene, metadata.VariantColor, transparent) {
		return
	}
	err := r.wboit.Accumulate(depth, func() {
		r.drawAll(scene, metadata.VariantColor, passWboit, blended)
		r.drawAll(scene, metadata.VariantColor, passWboit, additive)
	})
	if err == nil {
		r.bind(fb)
		err = r.wboit.Resolve(fb, r.viewport)
	}
	if err != nil {
		r.logger.Errorf("weighted blended transparency: %v", err)
	}
	r.bind(fb)
}

// eligible reports whether d takes part in variant at all.
func eligible(d *metadata.Drawable, variant metadata.RenderVariant) bool {
	if !d.Visible || d.Empty() {
		return false
	}
	switch variant {
	case metadata.VariantPick:
		return !d.ColorOnly && d.Pickable
	case metadata.VariantDepth:
		return !d.ColorOnly
	}
	return true
}

func (r *Renderer) any(scene *metadata.Scene, variant metadata.RenderVariant, filter drawFilter) bool {
	found := false
	scene.Each(func(d *metadata.Drawable) {
		if !found && eligible(d, variant) && filter(d) {
			found = true
		}
	})
	return found
}

func (r *Renderer) drawAll(scene *metadata.Scene, variant metadata.RenderVariant, mode passMode, filter drawFilter) {
	scene.Each(func(d *metadata.Drawable) {
		if eligible(d, variant) && filter(d) {
			r.draw(d, variant, mode)
		}
	})
}

func (r *Renderer) draw(d *metadata.Drawable, variant metadata.RenderVariant, mode passMode) {
	p := d.Program(variant)
	if p == nil || p.Err() != nil {
		r.reportProgram(d, p, variant)
		return
	}
	d.State.FailedPrograms[variant] = 0
	r.differ.Apply(d, p, mode)
	r.uniforms.Apply(r.ctx, p, false)
	for _, b := range d.Values {
		r.ctx.Uniform(b.Name, b.Value)
	}
	r.ctx.Uniform("uObjectId", int32(d.PickID))

	if err := r.ctx.Draw(d.Geometry); err != nil {
		r.logger.Errorf("drawable %d (%s): %v", d.ID, variant, err)
		return
	}
	instances := d.Geometry.InstanceCount()
	r.frame.DrawCount++
	r.frame.InstanceCount += instances
	if instances > 1 {
		r.frame.InstancedDrawCount++
	}
}

// reportProgram logs a missing or unlinked program once per drawable, variant
// and program; the drawable is skipped for this frame either way.
func (r *Renderer) reportProgram(d *metadata.Drawable, p gpu.Program, variant metadata.RenderVariant) {
	id := uint32(noProgramID)
	if p != nil {
		id = p.ID()
	}
	if d.State.FailedPrograms[variant] == id {
		return
	}
	d.State.FailedPrograms[variant] = id
	if p == nil {
		r.logger.Errorf("drawable %d has no %s program, skipping", d.ID, variant)
		return
	}
	r.logger.Errorf("drawable %d: %s program %q: %v, skipping", d.ID, variant, p.Name(), p.Err())
}
