package scene

import (
	"math"
	"testing"

	"github.com/janlaff/voxel-engine/types"
)

func approxEqual(v1, v2 types.Vec3, threshold float32) bool {
	for i := 0; i < 3; i++ {
		if float32(math.Abs(float64(v1[i]-v2[i]))) > threshold {
			return false
		}
	}
	return true
}

func angleBetween(v1, v2 types.Vec3) float64 {
	cos := float64(v1.Normalize().Dot(v2.Normalize()))
	return math.Acos(math.Max(-1, math.Min(1, cos))) * 180 / math.Pi
}

func TestNewCamera(t *testing.T) {
	cam := NewCamera(types.Splat3(-3), types.Vec3{}, 1)

	if cam.FOV != DefaultFOV || cam.Near != DefaultNear || cam.Far != DefaultFar {
		t.Fatalf("expected default fov/near/far; got %f/%f/%f", cam.FOV, cam.Near, cam.Far)
	}
	if cam.Up != types.XYZ(0, -1, 0) {
		t.Fatalf("expected up vector (0, -1, 0); got %v", cam.Up)
	}

	expView := types.LookAtV(types.Splat3(-3), types.Vec3{}, types.XYZ(0, -1, 0))
	if !cam.View.ApproxEqual(expView) {
		t.Fatalf("expected view matrix %v; got %v", expView, cam.View)
	}
}

func TestInverseCameraRay(t *testing.T) {
	eye := types.Splat3(-3)
	cam := NewCamera(eye, types.Vec3{}, 1)
	inv := cam.Inverse()
	forward := types.Splat3(1).Normalize()

	ray := inv.Ray(types.XY(0, 0))
	if !approxEqual(ray.Origin, eye, 1e-4) {
		t.Fatalf("expected ray origin %v; got %v", eye, ray.Origin)
	}
	if dir := ray.Direction.Normalize(); !approxEqual(dir, forward, 1e-4) {
		t.Fatalf("expected center ray direction %v; got %v", forward, dir)
	}

	// Edge rays deviate from the view direction by half the field of view.
	type spec struct {
		screen   types.Vec2
		expAngle float64
	}
	halfFOV := float64(DefaultFOV) / 2
	diagonal := math.Atan(math.Sqrt2*math.Tan(halfFOV*math.Pi/180)) * 180 / math.Pi
	specs := []spec{
		{types.XY(0, 1), halfFOV},
		{types.XY(0, -1), halfFOV},
		{types.XY(1, 0), halfFOV},
		{types.XY(-1, 0), halfFOV},
		{types.XY(1, 1), diagonal},
		{types.XY(-1, 1), diagonal},
	}
	for index, s := range specs {
		ray := inv.Ray(s.screen)
		if !approxEqual(ray.Origin, eye, 1e-4) {
			t.Fatalf("[spec %d] expected ray origin %v; got %v", index, eye, ray.Origin)
		}
		if angle := angleBetween(ray.Direction, forward); math.Abs(angle-s.expAngle) > 1e-2 {
			t.Fatalf("[spec %d] expected angle %f; got %f", index, s.expAngle, angle)
		}
	}
}

func TestInverseCameraDirectionClamp(t *testing.T) {
	// Looking straight down the z axis leaves x and y at zero for the
	// center pixel.
	cam := NewCamera(types.XYZ(0, 0, -3), types.Vec3{}, 1)
	ray := cam.Inverse().Ray(types.XY(0, 0))

	for i := 0; i < 3; i++ {
		if ray.Direction[i] == 0 {
			t.Fatalf("expected direction component %d to be clamped; got %v", i, ray.Direction)
		}
	}
	if ray.Direction[2] <= 0 {
		t.Fatalf("expected ray to point towards +z; got %v", ray.Direction)
	}
}

func TestInverseCameraAspect(t *testing.T) {
	wide := NewCamera(types.Splat3(-3), types.Vec3{}, 2).Inverse()
	square := NewCamera(types.Splat3(-3), types.Vec3{}, 1).Inverse()
	forward := types.Splat3(1)

	// Horizontal field of view widens with the aspect ratio while the
	// vertical one stays fixed.
	if angleBetween(wide.Ray(types.XY(1, 0)).Direction, forward) <= angleBetween(square.Ray(types.XY(1, 0)).Direction, forward) {
		t.Fatal("expected a wider horizontal field of view")
	}
	if a, b := angleBetween(wide.Ray(types.XY(0, 1)).Direction, forward), angleBetween(square.Ray(types.XY(0, 1)).Direction, forward); math.Abs(a-b) > 1e-3 {
		t.Fatalf("expected identical vertical field of view; got %f and %f", a, b)
	}
}

func TestCameraOrbit(t *testing.T) {
	cam := NewCamera(types.XYZ(-3, -1, -3), types.Vec3{}, 1)
	dist := cam.Position.Len()

	// Yaw rotates around the up axis.
	cam.Orbit(0.5, 0)
	if math.Abs(float64(cam.Position.Len()-dist)) > 1e-4 {
		t.Fatalf("expected orbit to preserve the distance to the target; got %f, expected %f", cam.Position.Len(), dist)
	}
	if math.Abs(float64(cam.Position[1]+1)) > 1e-4 {
		t.Fatalf("expected yaw to preserve the height; got %f", cam.Position[1])
	}

	// Large pitch steps never line the view direction up with the up axis.
	for i := 0; i < 50; i++ {
		cam.Orbit(0, 0.2)
		cos := cam.Target.Sub(cam.Position).Normalize().Dot(cam.Up)
		if cos > maxOrbitCos+1e-4 || cos < -maxOrbitCos-1e-4 {
			t.Fatalf("[step %d] expected pitch to be clamped; got cos %f", i, cos)
		}
		if math.Abs(float64(cam.Position.Len()-dist)) > 1e-3 {
			t.Fatalf("[step %d] expected orbit to preserve the distance to the target; got %f", i, cam.Position.Len())
		}
	}

	expView := types.LookAtV(cam.Position, cam.Target, cam.Up)
	if !cam.View.ApproxEqual(expView) {
		t.Fatal("expected orbit to update the view matrix")
	}
}
