package types

import "github.com/go-gl/mathgl/mgl32"

// A rotation quaternion.
type Quat mgl32.Quat

// Create a quaternion rotating by angle radians around axis. The axis does
// not need to be normalized.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	return Quat(mgl32.QuatRotate(angle, mgl32.Vec3(axis.Normalize())))
}

// Rotate a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	return Vec3(mgl32.Quat(q).Rotate(mgl32.Vec3(v)))
}

// Combine two rotations; q.Mul(q2) applies q2 first.
func (q Quat) Mul(q2 Quat) Quat {
	return Quat(mgl32.Quat(q).Mul(mgl32.Quat(q2)))
}

func (q Quat) Normalize() Quat {
	return Quat(mgl32.Quat(q).Normalize())
}
