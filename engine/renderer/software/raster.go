package software

import (
	"fmt"
	mt "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

// Window coordinates are snapped to 1/256 of a pixel so edge functions are
// exact integers and shared edges are rasterised exactly once.
const (
	subpixelBits = 8
	subpixel     = 1 << subpixelBits
)

var (
	ErrNoProgram           = fmt.Errorf("draw without a bound program: %w", core.ErrInvalidArgument)
	ErrUnsupportedGeometry = fmt.Errorf("geometry is not a software mesh: %w", core.ErrInvalidArgument)
)

type vertexOut struct {
	clip  mgl32.Vec4
	world mgl32.Vec3
	viewZ float32
}

type windowVertex struct {
	x, y  int64
	z     float32
	world mgl32.Vec3
	viewZ float32
}

// FragmentInput is what a fragment function sees for one covered pixel.
type FragmentInput struct {
	X, Y        int
	FragCoord   mgl32.Vec3
	FrontFacing bool
	World       mgl32.Vec3
	ViewZ       float32
}

func (c *Context) Draw(g gpu.Geometry) error {
	p := c.program
	if p == nil {
		return ErrNoProgram
	}
	if p.err != nil {
		return p.err
	}
	m, ok := g.(*Mesh)
	if !ok {
		return ErrUnsupportedGeometry
	}
	fb := c.target()
	targets := c.active(fb)

	instances := m.Instances
	if len(instances) == 0 {
		instances = []mgl32.Mat4{mgl32.Ident4()}
	}
	outs := make([]vertexOut, len(m.Positions))
	for _, inst := range instances {
		for i, pos := range m.Positions {
			outs[i] = p.def.vertex(p, inst, pos)
		}
		n := m.DrawCount()
		for t := 0; t+2 < n; t += 3 {
			c.triangle(p, fb, targets, outs[m.index(t)], outs[m.index(t+1)], outs[m.index(t+2)])
		}
	}
	c.draws++
	return nil
}

func (c *Context) toWindow(o vertexOut) (windowVertex, bool) {
	w := float64(o.clip.W())
	if w <= 0 {
		return windowVertex{}, false
	}
	nx := float64(o.clip.X()) / w
	ny := float64(o.clip.Y()) / w
	nz := float64(o.clip.Z()) / w
	vx, vy := float64(c.viewport[0]), float64(c.viewport[1])
	vw, vh := float64(c.viewport[2]), float64(c.viewport[3])
	return windowVertex{
		x:     int64(mt.Round((vx + (nx+1)*0.5*vw) * subpixel)),
		y:     int64(mt.Round((vy + (ny+1)*0.5*vh) * subpixel)),
		z:     float32((nz + 1) * 0.5),
		world: o.world,
		viewZ: o.viewZ,
	}, true
}

func edge(a, b windowVertex, px, py int64) int64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// owns decides ties for pixels centred exactly on the edge a->b. The same
// edge walked the other way by a neighbouring triangle gets the opposite
// answer.
func owns(a, b windowVertex) bool {
	dy := b.y - a.y
	return dy < 0 || (dy == 0 && b.x < a.x)
}

func covered(e int64, a, b windowVertex) bool {
	return e > 0 || (e == 0 && owns(a, b))
}

func (c *Context) triangle(p *Program, fb *framebuffer, targets []*texture, o0, o1, o2 vertexOut) {
	v0, ok0 := c.toWindow(o0)
	v1, ok1 := c.toWindow(o1)
	v2, ok2 := c.toWindow(o2)
	if !ok0 || !ok1 || !ok2 {
		return
	}
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	front := (area > 0) == (c.front == gpu.CCW)
	if c.caps[gpu.CapCullFace] {
		switch c.cull {
		case gpu.FaceBack:
			if !front {
				return
			}
		case gpu.FaceFront:
			if front {
				return
			}
		case gpu.FaceFrontAndBack:
			return
		}
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	x0, y0, x1, y1 := c.bounds(fb, true)
	minX := int(min(v0.x, v1.x, v2.x) >> subpixelBits)
	minY := int(min(v0.y, v1.y, v2.y) >> subpixelBits)
	maxX := int(max(v0.x, v1.x, v2.x)>>subpixelBits) + 1
	maxY := int(max(v0.y, v1.y, v2.y)>>subpixelBits) + 1
	x0, y0 = max(x0, minX), max(y0, minY)
	x1, y1 = min(x1, maxX), min(y1, maxY)

	depthTest := c.caps[gpu.CapDepthTest] && fb.depth != nil
	fa := float64(area)
	var out [gpu.MaxDrawBuffers]mgl32.Vec4
	for y := y0; y < y1; y++ {
		py := int64(y)<<subpixelBits + subpixel/2
		for x := x0; x < x1; x++ {
			px := int64(x)<<subpixelBits + subpixel/2
			w0 := edge(v1, v2, px, py)
			w1 := edge(v2, v0, px, py)
			w2 := edge(v0, v1, px, py)
			if !covered(w0, v1, v2) || !covered(w1, v2, v0) || !covered(w2, v0, v1) {
				continue
			}
			b0, b1, b2 := float32(float64(w0)/fa), float32(float64(w1)/fa), float32(float64(w2)/fa)
			z := b0*v0.z + b1*v1.z + b2*v2.z
			if z < 0 || z > 1 {
				continue
			}
			if depthTest && fb.depth.inside(x, y) && !c.depthPasses(z, fb.depth.depthAt(x, y)) {
				continue
			}
			in := FragmentInput{
				X:           x,
				Y:           y,
				FragCoord:   mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, z},
				FrontFacing: front,
				World:       v0.world.Mul(b0).Add(v1.world.Mul(b1)).Add(v2.world.Mul(b2)),
				ViewZ:       b0*v0.viewZ + b1*v1.viewZ + b2*v2.viewZ,
			}
			out = [gpu.MaxDrawBuffers]mgl32.Vec4{}
			if !p.def.fragment(p, &in, &out) {
				continue
			}
			for i, t := range targets {
				if t.inside(x, y) {
					c.write(t, x, y, out[i])
				}
			}
			if depthTest && c.depthMask && fb.depth.inside(x, y) {
				fb.depth.setDepth(x, y, z)
			}
		}
	}
}

func (c *Context) depthPasses(z, stored float32) bool {
	switch c.depthFunc {
	case gpu.DepthLess:
		return z < stored
	case gpu.DepthLessEqual:
		return z <= stored
	default:
		return true
	}
}

func (c *Context) write(t *texture, x, y int, src mgl32.Vec4) {
	px := t.rgba(x, y)
	dst := mgl32.Vec4{px[0], px[1], px[2], px[3]}
	res := src
	if c.caps[gpu.CapBlend] {
		res = blend(c.blend, src, dst)
	}
	for i := 0; i < 4; i++ {
		if c.colorMask[i] {
			px[i] = t.store(res[i])
		}
	}
}

func blend(f gpu.BlendFunc, src, dst mgl32.Vec4) mgl32.Vec4 {
	var out mgl32.Vec4
	for i := 0; i < 3; i++ {
		out[i] = src[i]*factor(f.SrcRGB, i, src, dst) + dst[i]*factor(f.DstRGB, i, src, dst)
	}
	out[3] = src[3]*factor(f.SrcAlpha, 3, src, dst) + dst[3]*factor(f.DstAlpha, 3, src, dst)
	return out
}

func factor(f gpu.BlendFactor, ch int, src, dst mgl32.Vec4) float32 {
	switch f {
	case gpu.Zero:
		return 0
	case gpu.One:
		return 1
	case gpu.SrcColor:
		return src[ch]
	case gpu.OneMinusSrcColor:
		return 1 - src[ch]
	case gpu.SrcAlpha:
		return src[3]
	case gpu.OneMinusSrcAlpha:
		return 1 - src[3]
	case gpu.DstAlpha:
		return dst[3]
	case gpu.OneMinusDstAlpha:
		return 1 - dst[3]
	}
	return 0
}
