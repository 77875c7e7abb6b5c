package metadata

import (
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

/** @brief Selects the program variant and the output a frame is rendered for. */
type RenderVariant uint8

const (
	/** @brief Final shaded colour. */
	VariantColor RenderVariant = iota
	/** @brief Object identifiers packed into RGB for hit testing. */
	VariantPick
	/** @brief Window depth packed into RGB. */
	VariantDepth
	RenderVariantCount
)

func (v RenderVariant) String() string {
	switch v {
	case VariantColor:
		return "color"
	case VariantPick:
		return "pick"
	case VariantDepth:
		return "depth"
	}
	return "unknown"
}

/** @brief How a drawable produces its fragments. */
type RenderMode uint8

const (
	RenderModeMesh RenderMode = iota
	/** @brief Ray-marched volume; does its own depth comparison in the shader. */
	RenderModeVolume
	/** @brief Ray-marched isosurface; writes regular depth. */
	RenderModeIsosurface
)

/** @brief A named uniform or texture value owned by a drawable. */
type Binding struct {
	Name  string
	Value gpu.Value
}

/**
 * @brief The GPU state last applied for a drawable. Written by the renderer
 * only; the scene graph must not touch it.
 */
type DrawableState struct {
	/** @brief False until the drawable has been drawn once. */
	Applied     bool
	ProgramID   uint32
	CullEnabled bool
	CullFace    gpu.Face
	FrontFace   gpu.Winding
	DepthTest   bool
	DepthMask   bool
	BlendFunc   gpu.BlendFunc
	BlendOn     bool
	/**
	 * @brief Per variant, the ID of the program whose failure was already
	 * reported. Zero once the variant draws again.
	 */
	FailedPrograms [RenderVariantCount]uint32
}

/**
 * @brief One draw call unit: geometry, one program per render variant and the
 * values bound while drawing it.
 */
type Drawable struct {
	/** @brief Arena slot in the owning scene. Assigned by Scene.Add. */
	ID uint32
	/** @brief Identifier written by the pick variant. */
	PickID uint32

	Visible    bool
	Pickable   bool
	Opaque     bool
	WriteDepth bool
	/** @brief Skipped by the pick and depth variants. */
	ColorOnly bool

	DoubleSided bool
	FlipSided   bool
	/** @brief Direct volume rendering: front faces are culled, depth may be tested in the shader. */
	DirectVolume bool
	RenderMode   RenderMode

	Programs [RenderVariantCount]gpu.Program
	Geometry gpu.Geometry
	Values   []Binding

	State DrawableState
}

// Program returns the program bound for the given variant.
func (d *Drawable) Program(v RenderVariant) gpu.Program {
	if v >= RenderVariantCount {
		return nil
	}
	return d.Programs[v]
}

// Empty reports whether drawing would produce no triangles.
func (d *Drawable) Empty() bool {
	return d.Geometry == nil || d.Geometry.DrawCount() < 3 || d.Geometry.InstanceCount() < 1
}
