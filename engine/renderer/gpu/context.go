package gpu

import "fmt"

// MaxDrawBuffers is the number of colour outputs a program can write at once.
const MaxDrawBuffers = 2

type Capability uint8

const (
	CapBlend Capability = iota
	CapDepthTest
	CapCullFace
	CapScissorTest
	capabilityCount
)

func (c Capability) String() string {
	switch c {
	case CapBlend:
		return "blend"
	case CapDepthTest:
		return "depth-test"
	case CapCullFace:
		return "cull-face"
	case CapScissorTest:
		return "scissor-test"
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

type BlendFactor uint8

const (
	Zero BlendFactor = iota
	One
	SrcColor
	OneMinusSrcColor
	SrcAlpha
	OneMinusSrcAlpha
	DstAlpha
	OneMinusDstAlpha
)

// BlendFunc is the separate colour/alpha blend factor set applied with an
// additive blend equation.
type BlendFunc struct {
	SrcRGB   BlendFactor
	DstRGB   BlendFactor
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
}

func Blend(src, dst BlendFactor) BlendFunc {
	return BlendFunc{SrcRGB: src, DstRGB: dst, SrcAlpha: src, DstAlpha: dst}
}

func BlendSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor) BlendFunc {
	return BlendFunc{SrcRGB: srcRGB, DstRGB: dstRGB, SrcAlpha: srcAlpha, DstAlpha: dstAlpha}
}

type Face uint8

const (
	FaceBack Face = iota
	FaceFront
	FaceFrontAndBack
)

type Winding uint8

const (
	CCW Winding = iota
	CW
)

type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

type ClearMask uint8

const (
	ClearColorBit ClearMask = 1 << iota
	ClearDepthBit
)

type TextureFormat uint8

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA32F
	// FormatDepth is a sampleable depth texture.
	FormatDepth
	// FormatDepthBuffer can only be attached, never sampled. Always available.
	FormatDepthBuffer
)

// IsDepth reports whether the format is a depth attachment format.
func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth || f == FormatDepthBuffer
}

// BytesPerPixel is used for memory accounting of allocations.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA32F:
		return 16
	default:
		return 4
	}
}

// Value is anything a program accepts as a uniform: float32, int32, bool,
// mathgl vectors and matrices, fixed arrays of those, or a Texture (sampler).
type Value interface{}

type Texture interface {
	ID() uint32
	Label() string
	Format() TextureFormat
	Width() int
	Height() int
}

type Framebuffer interface {
	ID() uint32
	Label() string
}

// Program is a linked shader program. Err is non-nil when compilation or
// linking failed; such a program must never be bound.
type Program interface {
	ID() uint32
	Name() string
	Err() error
}

// Geometry is a drawable vertex/instance set owned by the scene graph.
type Geometry interface {
	DrawCount() int
	InstanceCount() int
}

// ResourceCounts are the live GPU objects owned by a context.
type ResourceCounts struct {
	Programs     int
	Shaders      int
	Textures     int
	Framebuffers int
}

// Context is the graphics context every renderer call goes through. A nil
// Framebuffer always denotes the default (drawing buffer) framebuffer.
type Context interface {
	Extensions() Extensions
	DrawingBufferSize() (width, height int)

	CreateProgram(name string) Program
	DeleteProgram(p Program)
	CreateTexture(label string, format TextureFormat, width, height int) (Texture, error)
	DeleteTexture(t Texture)
	CreateFramebuffer(label string) (Framebuffer, error)
	DeleteFramebuffer(fb Framebuffer)
	AttachColor(fb Framebuffer, index int, t Texture) error
	AttachDepth(fb Framebuffer, t Texture) error
	FullscreenQuad() Geometry

	BindFramebuffer(fb Framebuffer)
	DrawBuffers(n int)
	Viewport(x, y, width, height int)
	Scissor(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Enable(c Capability)
	Disable(c Capability)
	BlendFunc(f BlendFunc)
	DepthMask(enabled bool)
	DepthFunc(f DepthFunc)
	CullFace(f Face)
	FrontFace(w Winding)
	ColorMask(r, g, b, a bool)
	UseProgram(p Program)
	Uniform(name string, v Value)

	Draw(g Geometry) error
	Flush()
	ReadPixels(x, y, width, height int, dst []uint8) error
	ResourceCounts() ResourceCounts
}
