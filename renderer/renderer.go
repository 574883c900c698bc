package renderer

import (
	"context"
	"image"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/scene"
)

type Renderer interface {
	// Render frame.
	Render(context.Context) (*image.RGBA, error)

	// Replace the camera used for subsequent frames.
	UpdateCamera(scene.InverseCamera)

	// Replace the octree used for subsequent frames. The store must be valid.
	UpdateOctree(*octree.Store) error

	// Get render statistics for the last frame.
	Stats() FrameStats
}
