package metadata

import "github.com/go-gl/mathgl/mgl32"

/** @brief What the renderer reads from a camera each frame. */
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
	Near() float32
	Far() float32
	FogNear() float32
	FogFar() float32
	IsOrthographic() bool
	Position() mgl32.Vec3
	Target() mgl32.Vec3
}
