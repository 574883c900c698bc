package types

import "github.com/go-gl/mathgl/mgl32"

// Values closer than this are treated as equal.
const floatCmpEpsilon float32 = 1e-6

// A column-major 4x4 matrix.
type Mat4 mgl32.Mat4

// Create a 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a right-handed perspective projection matrix. The fov is specified
// in radians.
func Perspective4(fovy, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(fovy, aspect, near, far))
}

// Create a right-handed view matrix for an eye located at eye looking at center.
func LookAtV(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply matrix with a column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Calculate the matrix inverse. Singular matrices yield the zero matrix.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Get a copy of the matrix with the translation component set to zero.
func (m Mat4) WithoutTranslation() Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}

// Check whether two matrices are equal within floatCmpEpsilon.
func (m Mat4) ApproxEqual(m2 Mat4) bool {
	return mgl32.Mat4(m).ApproxEqualThreshold(mgl32.Mat4(m2), floatCmpEpsilon)
}
