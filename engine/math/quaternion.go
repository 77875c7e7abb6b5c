package math

import "github.com/go-gl/mathgl/mgl32"

// QuatFromAxisAngle builds the rotation of angleDegrees around axis and
// returns it packed as (x, y, z, w). A zero axis yields the identity.
func QuatFromAxisAngle(axis mgl32.Vec3, angleDegrees float32) mgl32.Vec4 {
	if axis.Len() < K_FLOAT_EPSILON {
		return IdentityQuat()
	}
	q := mgl32.QuatRotate(DegToRad(angleDegrees), axis.Normalize())
	return mgl32.Vec4{q.V.X(), q.V.Y(), q.V.Z(), q.W}
}

// IdentityQuat is the packed identity rotation.
func IdentityQuat() mgl32.Vec4 {
	return mgl32.Vec4{0, 0, 0, 1}
}

// UnpackQuat turns a packed (x, y, z, w) rotation back into a quaternion.
func UnpackQuat(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v.W(), V: v.Vec3()}
}
