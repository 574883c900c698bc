package scene

import (
	"fmt"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/types"
)

// Scene pairs a published octree with the camera used to view it.
type Scene struct {
	Octree *octree.Store
	Camera *Camera
}

// Create a scene. If camera is nil the default camera is attached.
func NewScene(store *octree.Store, camera *Camera) *Scene {
	if camera == nil {
		camera = DefaultCamera(1)
	}
	return &Scene{
		Octree: store,
		Camera: camera,
	}
}

// Create the default camera which looks at the center of the octree from the
// (-3, -3, -3) corner.
func DefaultCamera(aspect float32) *Camera {
	return NewCamera(types.Splat3(-3), types.Vec3{}, aspect)
}

// Get a printable summary of the scene.
func (s *Scene) Stats() string {
	return fmt.Sprintf("%s\n%s", s.Octree.Stats(), s.Camera)
}
