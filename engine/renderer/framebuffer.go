package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

// AccumulationTarget is where weighted transparency is accumulated. Its
// passes together fill both accumulation textures.
type AccumulationTarget interface {
	// Passes is the number of accumulation passes the layout needs.
	Passes() int
	// Bind makes pass i current and returns the uWboitPass value the
	// programs must write for it.
	Bind(s *gpu.StateCache, i int) int32
	// Textures returns the accumulated colour and weight.
	Textures() (a, b gpu.Texture)
	Release(ctx gpu.Context)
}

// multiAttachmentTarget writes both textures from a single pass.
type multiAttachmentTarget struct {
	fb   gpu.Framebuffer
	a, b gpu.Texture
}

func (t *multiAttachmentTarget) Passes() int { return 1 }

func (t *multiAttachmentTarget) Bind(s *gpu.StateCache, _ int) int32 {
	s.BindFramebuffer(t.fb)
	s.DrawBuffers(2)
	return gpu.WboitPassBoth
}

func (t *multiAttachmentTarget) Textures() (gpu.Texture, gpu.Texture) { return t.a, t.b }

func (t *multiAttachmentTarget) Release(ctx gpu.Context) {
	ctx.DeleteFramebuffer(t.fb)
	ctx.DeleteTexture(t.a)
	ctx.DeleteTexture(t.b)
}

// splitTarget draws the scene twice, once per texture, for contexts that
// cannot write more than one colour attachment at a time.
type splitTarget struct {
	fbA, fbB gpu.Framebuffer
	a, b     gpu.Texture
}

func (t *splitTarget) Passes() int { return 2 }

func (t *splitTarget) Bind(s *gpu.StateCache, i int) int32 {
	s.DrawBuffers(1)
	if i == 0 {
		s.BindFramebuffer(t.fbA)
		return gpu.WboitPassColor
	}
	s.BindFramebuffer(t.fbB)
	return gpu.WboitPassWeight
}

func (t *splitTarget) Textures() (gpu.Texture, gpu.Texture) { return t.a, t.b }

func (t *splitTarget) Release(ctx gpu.Context) {
	ctx.DeleteFramebuffer(t.fbA)
	ctx.DeleteFramebuffer(t.fbB)
	ctx.DeleteTexture(t.a)
	ctx.DeleteTexture(t.b)
}

// FramebufferManager owns the accumulation textures and keeps them sized to
// the viewport. Once disabled it never allocates again.
type FramebufferManager struct {
	ctx    gpu.Context
	state  *gpu.StateCache
	logger core.Logger

	enabled bool
	multi   bool
	width   int
	height  int
	target  AccumulationTarget
}

func NewFramebufferManager(ctx gpu.Context, state *gpu.StateCache, logger core.Logger) *FramebufferManager {
	ext := ctx.Extensions()
	m := &FramebufferManager{
		ctx:     ctx,
		state:   state,
		logger:  logger,
		enabled: ext.SupportsWBOIT(),
		multi:   ext.DrawBuffers,
	}
	if !m.enabled {
		logger.Debugf("weighted blended transparency unavailable: texture float %t, colour buffer float %t, depth texture %t",
			ext.TextureFloat, ext.ColorBufferFloat, ext.DepthTexture)
	}
	return m
}

// Enabled reports whether accumulation targets can be used.
func (m *FramebufferManager) Enabled() bool {
	return m.enabled && m.target != nil
}

// Target returns the current accumulation target, or nil when disabled.
func (m *FramebufferManager) Target() AccumulationTarget {
	if !m.enabled {
		return nil
	}
	return m.target
}

func (m *FramebufferManager) Size() (int, int) {
	return m.width, m.height
}

// Resize recreates the accumulation textures at width x height. Calling it
// with the current size does nothing. An allocation failure releases
// everything and disables the manager for good.
func (m *FramebufferManager) Resize(width, height int) error {
	if !m.enabled {
		return nil
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("accumulation targets %dx%d: %w", width, height, core.ErrInvalidViewport)
	}
	if m.target != nil && width == m.width && height == m.height {
		return nil
	}
	m.release()

	var (
		target AccumulationTarget
		err    error
	)
	if m.multi {
		target, err = m.allocMulti(width, height)
	} else {
		target, err = m.allocSplit(width, height)
	}
	if err != nil {
		m.enabled = false
		m.logger.Warnf("disabling weighted blended transparency: %v", err)
		return err
	}
	m.target = target
	m.width, m.height = width, height
	return nil
}

func (m *FramebufferManager) textures(width, height int) (gpu.Texture, gpu.Texture, error) {
	id := uuid.NewString()
	a, err := m.ctx.CreateTexture("wboit-a-"+id, gpu.FormatRGBA32F, width, height)
	if err != nil {
		return nil, nil, fmt.Errorf("create accumulation texture: %w", err)
	}
	b, err := m.ctx.CreateTexture("wboit-b-"+id, gpu.FormatRGBA32F, width, height)
	if err != nil {
		m.ctx.DeleteTexture(a)
		return nil, nil, fmt.Errorf("create weight texture: %w", err)
	}
	return a, b, nil
}

func (m *FramebufferManager) framebuffer(label string, attachments ...gpu.Texture) (gpu.Framebuffer, error) {
	fb, err := m.ctx.CreateFramebuffer(label)
	if err != nil {
		return nil, fmt.Errorf("create framebuffer %q: %w", label, err)
	}
	for i, t := range attachments {
		if err := m.ctx.AttachColor(fb, i, t); err != nil {
			m.ctx.DeleteFramebuffer(fb)
			return nil, fmt.Errorf("attach %q to %q: %w", t.Label(), label, err)
		}
	}
	return fb, nil
}

func (m *FramebufferManager) allocMulti(width, height int) (AccumulationTarget, error) {
	a, b, err := m.textures(width, height)
	if err != nil {
		return nil, err
	}
	fb, err := m.framebuffer("wboit", a, b)
	if err != nil {
		m.ctx.DeleteTexture(a)
		m.ctx.DeleteTexture(b)
		return nil, err
	}
	return &multiAttachmentTarget{fb: fb, a: a, b: b}, nil
}

func (m *FramebufferManager) allocSplit(width, height int) (AccumulationTarget, error) {
	a, b, err := m.textures(width, height)
	if err != nil {
		return nil, err
	}
	fbA, err := m.framebuffer("wboit-a", a)
	if err != nil {
		m.ctx.DeleteTexture(a)
		m.ctx.DeleteTexture(b)
		return nil, err
	}
	fbB, err := m.framebuffer("wboit-b", b)
	if err != nil {
		m.ctx.DeleteFramebuffer(fbA)
		m.ctx.DeleteTexture(a)
		m.ctx.DeleteTexture(b)
		return nil, err
	}
	return &splitTarget{fbA: fbA, fbB: fbB, a: a, b: b}, nil
}

func (m *FramebufferManager) release() {
	if m.target == nil {
		return
	}
	switch t := m.target.(type) {
	case *multiAttachmentTarget:
		m.state.Forget(t.fb)
	case *splitTarget:
		m.state.Forget(t.fbA)
		m.state.Forget(t.fbB)
	}
	m.target.Release(m.ctx)
	m.target = nil
}

// Dispose releases the accumulation targets.
func (m *FramebufferManager) Dispose() {
	m.release()
	m.enabled = false
}
