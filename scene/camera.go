package scene

import (
	"fmt"
	"math"

	"github.com/janlaff/voxel-engine/tracer"
	"github.com/janlaff/voxel-engine/types"
)

const (
	// Default camera settings.
	DefaultFOV  float32 = 45.0
	DefaultNear float32 = 0.1
	DefaultFar  float32 = 100.0

	// Orbit never tilts the view direction closer than this to the up axis
	// (cosine of the angle between them).
	maxOrbitCos float32 = 0.9
)

// InverseCamera holds the inverted camera matrices used to generate primary
// rays. The centered view matrix is the inverse view with its translation
// removed, so that it only rotates directions.
//
// InverseCamera values are immutable; camera or viewport changes produce a
// new value.
type InverseCamera struct {
	InverseView         types.Mat4
	InverseCenteredView types.Mat4
	InverseProjection   types.Mat4
}

// Build an InverseCamera from a view and a projection matrix.
func NewInverseCamera(view, projection types.Mat4) InverseCamera {
	invView := view.Inv()
	return InverseCamera{
		InverseView:         invView,
		InverseCenteredView: invView.WithoutTranslation(),
		InverseProjection:   projection.Inv(),
	}
}

// Generate the ray through a screen position. Screen coordinates are
// normalized to [-1, 1] on both axes. The returned direction is not
// normalized but all of its components have a magnitude of at least 2^-23.
func (c InverseCamera) Ray(screen types.Vec2) tracer.Ray {
	origin := c.InverseView.Mul4x1(types.XYZW(0, 0, 0, 1)).Vec3()
	dir := c.InverseCenteredView.Mul4(c.InverseProjection).Mul4x1(screen.Vec4(0, 1)).Vec3()

	return tracer.Ray{
		Origin:    origin,
		Direction: tracer.ClampDirection(dir),
	}
}

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	Target   types.Vec3
	Up       types.Vec3

	View       types.Mat4
	Projection types.Mat4

	// Vertical field of view in degrees.
	FOV float32

	Near, Far float32
}

// Create a camera looking from position at target. The up vector points
// towards -y which matches the row order of the rendered image.
func NewCamera(position, target types.Vec3, aspect float32) *Camera {
	c := &Camera{
		Position: position,
		Target:   target,
		Up:       types.XYZ(0, -1, 0),
		FOV:      DefaultFOV,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
	c.SetupProjection(aspect)
	c.updateView()
	return c
}

// Setup camera projection matrix.
func (c *Camera) SetupProjection(aspect float32) {
	c.Projection = types.Perspective4(degToRad(c.FOV), aspect, c.Near, c.Far)
}

// Rotate the camera around its target. Yaw rotates around the up axis and
// pitch around the camera's right axis; both angles are in radians. Pitch
// changes that would move the view direction too close to the up axis are
// ignored.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.Target)
	up := c.Up.Normalize()
	right := offset.Mul(-1).Normalize().Cross(up).Normalize()

	yawRot := types.QuatFromAxisAngle(up, yaw)
	rotated := types.QuatFromAxisAngle(right, pitch).Mul(yawRot).Normalize().Rotate(offset)

	cosAngle := rotated.Mul(-1).Normalize().Dot(up)
	if cosAngle > maxOrbitCos || cosAngle < -maxOrbitCos {
		rotated = yawRot.Rotate(offset)
	}

	c.Position = c.Target.Add(rotated)
	c.updateView()
}

// Get the inverted camera matrices.
func (c *Camera) Inverse() InverseCamera {
	return NewInverseCamera(c.View, c.Projection)
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"camera{pos: (%3.3f, %3.3f, %3.3f), target: (%3.3f, %3.3f, %3.3f), fov: %3.1f}",
		c.Position[0], c.Position[1], c.Position[2],
		c.Target[0], c.Target[1], c.Target[2],
		c.FOV,
	)
}

func (c *Camera) updateView() {
	c.View = types.LookAtV(c.Position, c.Target, c.Up)
}

func degToRad(deg float32) float32 {
	return deg * math.Pi / 180
}
