package gpu

// StateCache sits in front of a Context and drops calls that would set a
// piece of global state to the value it already holds. Every value starts
// unknown, so the first call after creation or Invalidate always goes through.
type StateCache struct {
	ctx Context

	known   uint32
	caps    [capabilityCount]bool
	fb      Framebuffer
	program Program
	blend   BlendFunc
	depthFn DepthFunc
	mask    bool
	cull    Face
	front   Winding
	colors  [4]bool
	view    [4]int
	scissor [4]int
	clear   [4]float32
	buffers int

	issued  int
	skipped int
}

const (
	knownFramebuffer uint32 = 1 << (iota + capabilityCount)
	knownProgram
	knownBlend
	knownDepthFunc
	knownDepthMask
	knownCullFace
	knownFrontFace
	knownColorMask
	knownViewport
	knownScissor
	knownClearColor
	knownDrawBuffers
)

func NewStateCache(ctx Context) *StateCache {
	return &StateCache{ctx: ctx}
}

func (s *StateCache) Context() Context {
	return s.ctx
}

// Invalidate forgets everything; used when something outside the cache may
// have touched the context.
func (s *StateCache) Invalidate() {
	s.known = 0
	s.fb = nil
	s.program = nil
}

// Issued is the number of calls that reached the context.
func (s *StateCache) Issued() int {
	return s.issued
}

// Skipped is the number of redundant calls that were dropped.
func (s *StateCache) Skipped() int {
	return s.skipped
}

func (s *StateCache) has(bit uint32) bool {
	if s.known&bit != 0 {
		s.skipped++
		return true
	}
	return false
}

func (s *StateCache) mark(bit uint32) {
	s.known |= bit
	s.issued++
}

func (s *StateCache) Set(c Capability, enabled bool) {
	bit := uint32(1) << c
	if s.caps[c] == enabled && s.has(bit) {
		return
	}
	if enabled {
		s.ctx.Enable(c)
	} else {
		s.ctx.Disable(c)
	}
	s.caps[c] = enabled
	s.mark(bit)
}

func (s *StateCache) Enable(c Capability) {
	s.Set(c, true)
}

func (s *StateCache) Disable(c Capability) {
	s.Set(c, false)
}

func (s *StateCache) BindFramebuffer(fb Framebuffer) {
	if s.fb == fb && s.has(knownFramebuffer) {
		return
	}
	s.ctx.BindFramebuffer(fb)
	s.fb = fb
	s.mark(knownFramebuffer)
}

// UseProgram binds p and reports whether the binding changed.
func (s *StateCache) UseProgram(p Program) bool {
	if s.program == p && s.has(knownProgram) {
		return false
	}
	s.ctx.UseProgram(p)
	s.program = p
	s.mark(knownProgram)
	return true
}

func (s *StateCache) BlendFunc(f BlendFunc) {
	if s.blend == f && s.has(knownBlend) {
		return
	}
	s.ctx.BlendFunc(f)
	s.blend = f
	s.mark(knownBlend)
}

func (s *StateCache) DepthFunc(f DepthFunc) {
	if s.depthFn == f && s.has(knownDepthFunc) {
		return
	}
	s.ctx.DepthFunc(f)
	s.depthFn = f
	s.mark(knownDepthFunc)
}

func (s *StateCache) DepthMask(enabled bool) {
	if s.mask == enabled && s.has(knownDepthMask) {
		return
	}
	s.ctx.DepthMask(enabled)
	s.mask = enabled
	s.mark(knownDepthMask)
}

func (s *StateCache) CullFace(f Face) {
	if s.cull == f && s.has(knownCullFace) {
		return
	}
	s.ctx.CullFace(f)
	s.cull = f
	s.mark(knownCullFace)
}

func (s *StateCache) FrontFace(w Winding) {
	if s.front == w && s.has(knownFrontFace) {
		return
	}
	s.ctx.FrontFace(w)
	s.front = w
	s.mark(knownFrontFace)
}

func (s *StateCache) ColorMask(r, g, b, a bool) {
	m := [4]bool{r, g, b, a}
	if s.colors == m && s.has(knownColorMask) {
		return
	}
	s.ctx.ColorMask(r, g, b, a)
	s.colors = m
	s.mark(knownColorMask)
}

func (s *StateCache) Viewport(x, y, width, height int) {
	v := [4]int{x, y, width, height}
	if s.view == v && s.has(knownViewport) {
		return
	}
	s.ctx.Viewport(x, y, width, height)
	s.view = v
	s.mark(knownViewport)
}

func (s *StateCache) Scissor(x, y, width, height int) {
	v := [4]int{x, y, width, height}
	if s.scissor == v && s.has(knownScissor) {
		return
	}
	s.ctx.Scissor(x, y, width, height)
	s.scissor = v
	s.mark(knownScissor)
}

func (s *StateCache) ClearColor(r, g, b, a float32) {
	c := [4]float32{r, g, b, a}
	if s.clear == c && s.has(knownClearColor) {
		return
	}
	s.ctx.ClearColor(r, g, b, a)
	s.clear = c
	s.mark(knownClearColor)
}

func (s *StateCache) DrawBuffers(n int) {
	if s.buffers == n && s.has(knownDrawBuffers) {
		return
	}
	s.ctx.DrawBuffers(n)
	s.buffers = n
	s.mark(knownDrawBuffers)
}

// Forget drops cached bindings that refer to a deleted object.
func (s *StateCache) Forget(obj interface{}) {
	if fb, ok := obj.(Framebuffer); ok && s.fb == fb {
		s.known &^= knownFramebuffer
		s.fb = nil
	}
	if p, ok := obj.(Program); ok && s.program == p {
		s.known &^= knownProgram
		s.program = nil
	}
}
