package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
)

/** @brief Transparency technique selection. */
type TransparencyVariant uint8

const (
	/** @brief Ordered alpha blending in a single pass. */
	TransparencySingle TransparencyVariant = iota
	/** @brief Weighted blended OIT when the context supports it. */
	TransparencyMulti
)

func (t TransparencyVariant) String() string {
	if t == TransparencyMulti {
		return "multi"
	}
	return "single"
}

/** @brief A named lighting style. */
type StyleName string

const (
	StyleMatte    StyleName = "matte"
	StyleGlossy   StyleName = "glossy"
	StyleMetallic StyleName = "metallic"
	StylePlastic  StyleName = "plastic"
	StyleFlat     StyleName = "flat"
	/** @brief Escape hatch: Params are used as given. */
	StyleCustom StyleName = "custom"
)

/** @brief Lighting coefficients uploaded to every program. */
type StyleParams struct {
	LightIntensity   float32
	AmbientIntensity float32
	Metalness        float32
	Roughness        float32
	Reflectivity     float32
}

type StyleProps struct {
	Name StyleName
	/** @brief Only read when Name is StyleCustom. */
	Params StyleParams
}

/** @brief Clip volume shapes, numbered as the shaders expect them. */
type ClipType int32

const (
	ClipNone ClipType = iota
	ClipPlane
	ClipSphere
	ClipCube
	ClipCylinder
	ClipInfiniteCone
)

/** @brief Where clipping is evaluated. */
type ClipVariant int32

const (
	ClipVariantInstance ClipVariant = iota
	ClipVariantPixel
)

/** @brief A user configured clip volume. */
type ClipObject struct {
	Type     ClipType
	Position mgl32.Vec3
	/** @brief Rotation axis; a zero axis means no rotation. */
	Axis mgl32.Vec3
	/** @brief Rotation angle in degrees. */
	Angle float32
	Scale mgl32.Vec3
}

type ClipProps struct {
	Variant ClipVariant
	/** @brief At most five objects are used; the rest are ignored. */
	Objects []ClipObject
}

/** @brief Complete renderer configuration. */
type Props struct {
	BackgroundColor       mgl32.Vec3
	PickingAlphaThreshold float32
	Transparency          TransparencyVariant
	InteriorDarkening     float32
	InteriorColorFlag     bool
	InteriorColor         mgl32.Vec3
	HighlightColor        mgl32.Vec3
	SelectColor           mgl32.Vec3
	Style                 StyleProps
	Clip                  ClipProps
}

func DefaultProps() Props {
	return Props{
		BackgroundColor:       mgl32.Vec3{0, 0, 0},
		PickingAlphaThreshold: 0.5,
		Transparency:          TransparencyMulti,
		InteriorDarkening:     0.5,
		InteriorColorFlag:     true,
		InteriorColor:         mgl32.Vec3{0.3, 0.3, 0.3},
		HighlightColor:        mgl32.Vec3{1.0, 0.4, 0.6},
		SelectColor:           mgl32.Vec3{0.2, 1.0, 0.1},
		Style:                 StyleProps{Name: StyleMatte},
		Clip:                  ClipProps{Variant: ClipVariantInstance},
	}
}

/** @brief A partial configuration; nil fields are left unchanged. */
type PartialProps struct {
	BackgroundColor       *mgl32.Vec3
	PickingAlphaThreshold *float32
	Transparency          *TransparencyVariant
	InteriorDarkening     *float32
	InteriorColorFlag     *bool
	InteriorColor         *mgl32.Vec3
	HighlightColor        *mgl32.Vec3
	SelectColor           *mgl32.Vec3
	Style                 *StyleProps
	Clip                  *ClipProps
}

// Apply copies every set field of pp into p.
func (p *Props) Apply(pp PartialProps) {
	if pp.BackgroundColor != nil {
		p.BackgroundColor = *pp.BackgroundColor
	}
	if pp.PickingAlphaThreshold != nil {
		p.PickingAlphaThreshold = *pp.PickingAlphaThreshold
	}
	if pp.Transparency != nil {
		p.Transparency = *pp.Transparency
	}
	if pp.InteriorDarkening != nil {
		p.InteriorDarkening = *pp.InteriorDarkening
	}
	if pp.InteriorColorFlag != nil {
		p.InteriorColorFlag = *pp.InteriorColorFlag
	}
	if pp.InteriorColor != nil {
		p.InteriorColor = *pp.InteriorColor
	}
	if pp.HighlightColor != nil {
		p.HighlightColor = *pp.HighlightColor
	}
	if pp.SelectColor != nil {
		p.SelectColor = *pp.SelectColor
	}
	if pp.Style != nil {
		p.Style = *pp.Style
	}
	if pp.Clip != nil {
		p.Clip = ClipProps{
			Variant: pp.Clip.Variant,
			Objects: append([]ClipObject(nil), pp.Clip.Objects...),
		}
	}
}

// Clone returns a deep copy.
func (p Props) Clone() Props {
	p.Clip.Objects = append([]ClipObject(nil), p.Clip.Objects...)
	return p
}
