package renderer

import (
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// passMode is the blending regime a drawable is drawn under.
type passMode uint8

const (
	passOpaque passMode = iota
	// transparent drawables that write depth
	passBlended
	// transparent drawables that do not write depth
	passAdditive
	passWboit
	passPickDepth
)

var (
	blendAlpha      = gpu.BlendSeparate(gpu.SrcAlpha, gpu.OneMinusSrcAlpha, gpu.One, gpu.OneMinusSrcAlpha)
	blendAdditive   = gpu.Blend(gpu.One, gpu.One)
	blendAccumulate = gpu.BlendSeparate(gpu.One, gpu.One, gpu.Zero, gpu.OneMinusSrcAlpha)
	blendResolve    = gpu.BlendSeparate(gpu.OneMinusSrcAlpha, gpu.SrcAlpha, gpu.Zero, gpu.One)
)

// ObjectStateDiffer sets up the context for one drawable. It derives the
// state the drawable needs, records it on the drawable and forwards it through
// the state cache, which drops whatever already matches the context.
type ObjectStateDiffer struct {
	state *gpu.StateCache
	ext   gpu.Extensions
}

func NewObjectStateDiffer(state *gpu.StateCache, ext gpu.Extensions) *ObjectStateDiffer {
	return &ObjectStateDiffer{state: state, ext: ext}
}

func (d *ObjectStateDiffer) desired(dr *metadata.Drawable, program gpu.Program, mode passMode) metadata.DrawableState {
	s := metadata.DrawableState{
		Applied:         true,
		ProgramID:       program.ID(),
		CullEnabled:     true,
		CullFace:        gpu.FaceBack,
		FrontFace:       gpu.CCW,
		DepthTest:       true,
		FailedPrograms:  dr.State.FailedPrograms,
	}
	switch {
	case dr.DirectVolume:
		s.CullFace = gpu.FaceFront
	case dr.DoubleSided:
		s.CullEnabled = false
	}
	if dr.FlipSided {
		s.FrontFace = gpu.CW
	}
	// Direct volumes compare against the depth texture themselves.
	if dr.DirectVolume && (dr.RenderMode == metadata.RenderModeVolume || !d.ext.FragDepth) {
		s.DepthTest = false
	}

	switch mode {
	case passOpaque, passPickDepth:
		s.DepthMask = true
	case passBlended:
		s.DepthMask = dr.WriteDepth
		s.BlendOn = true
		s.BlendFunc = blendAlpha
	case passAdditive:
		s.BlendOn = true
		s.BlendFunc = blendAdditive
	case passWboit:
		s.DepthTest = false
		s.BlendOn = true
		s.BlendFunc = blendAccumulate
	}
	return s
}

// Apply binds program and the drawable's state.
func (d *ObjectStateDiffer) Apply(dr *metadata.Drawable, program gpu.Program, mode passMode) {
	s := d.desired(dr, program, mode)

	d.state.UseProgram(program)
	d.state.Set(gpu.CapCullFace, s.CullEnabled)
	if s.CullEnabled {
		d.state.CullFace(s.CullFace)
	}
	d.state.FrontFace(s.FrontFace)
	d.state.Set(gpu.CapDepthTest, s.DepthTest)
	d.state.DepthMask(s.DepthMask)
	d.state.Set(gpu.CapBlend, s.BlendOn)
	if s.BlendOn {
		d.state.BlendFunc(s.BlendFunc)
	}

	dr.State = s
}
