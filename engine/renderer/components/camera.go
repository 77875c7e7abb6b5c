package components

import (
	"github.com/go-gl/mathgl/mgl32"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

var _ metadata.Camera = (*Camera)(nil)

/**
 * @brief A look-at camera with a perspective or orthographic projection.
 * Matrices are rebuilt lazily after a setter marked them dirty.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	/** @brief Vertical field of view in degrees. */
	fov    float32
	aspect float32
	near   float32
	far    float32
	/** @brief Fog range in view space units; disabled when fogFar <= fogNear. */
	fogNear float32
	fogFar  float32
	ortho   bool
	/** @brief Half height of the orthographic view volume. */
	orthoScale float32

	/** @brief Internal flag used to determine when the matrices need to be rebuilt. */
	isDirty    bool
	view       mgl32.Mat4
	projection mgl32.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.position = mgl32.Vec3{0, 0, 10}
	c.target = mgl32.Vec3{}
	c.up = mgl32.Vec3{0, 1, 0}
	c.fov = 45
	c.aspect = 1
	c.near = 0.1
	c.far = 100
	c.fogNear = 0
	c.fogFar = 0
	c.ortho = false
	c.orthoScale = 5
	c.isDirty = true
}

func (c *Camera) rebuild() {
	if !c.isDirty {
		return
	}
	c.view = mgl32.LookAtV(c.position, c.target, c.up)
	if c.ortho {
		h := c.orthoScale
		w := h * c.aspect
		c.projection = mgl32.Ortho(-w, w, -h, h, c.near, c.far)
	} else {
		c.projection = mgl32.Perspective(lmath.DegToRad(c.fov), c.aspect, c.near, c.far)
	}
	c.isDirty = false
}

func (c *Camera) View() mgl32.Mat4 {
	c.rebuild()
	return c.view
}

func (c *Camera) Projection() mgl32.Mat4 {
	c.rebuild()
	return c.projection
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) Target() mgl32.Vec3 {
	return c.target
}

func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.target = target
	c.isDirty = true
}

func (c *Camera) SetUp(up mgl32.Vec3) {
	c.up = up
	c.isDirty = true
}

func (c *Camera) Near() float32 { return c.near }
func (c *Camera) Far() float32  { return c.far }

// SetClipPlanes sets the near and far planes. Invalid ranges are ignored.
func (c *Camera) SetClipPlanes(near, far float32) {
	if near <= 0 || far <= near {
		return
	}
	c.near, c.far = near, far
	c.isDirty = true
}

func (c *Camera) FogNear() float32 { return c.fogNear }
func (c *Camera) FogFar() float32  { return c.fogFar }

func (c *Camera) SetFog(near, far float32) {
	c.fogNear, c.fogFar = near, far
}

func (c *Camera) IsOrthographic() bool {
	return c.ortho
}

// SetPerspective switches to a perspective projection with a vertical field
// of view in degrees.
func (c *Camera) SetPerspective(fovDegrees float32) {
	c.ortho = false
	c.fov = fovDegrees
	c.isDirty = true
}

// SetOrthographic switches to an orthographic projection halfHeight units
// above and below the view axis.
func (c *Camera) SetOrthographic(halfHeight float32) {
	c.ortho = true
	c.orthoScale = halfHeight
	c.isDirty = true
}

func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.isDirty = true
}

func (c *Camera) Forward() mgl32.Vec3 {
	d := c.target.Sub(c.position)
	if d.Len() < lmath.K_FLOAT_EPSILON {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Orbit rotates the position around the target by yaw degrees about the up
// axis.
func (c *Camera) Orbit(yawDegrees float32) {
	q := mgl32.QuatRotate(lmath.DegToRad(yawDegrees), c.up.Normalize())
	c.position = c.target.Add(q.Rotate(c.position.Sub(c.target)))
	c.isDirty = true
}
