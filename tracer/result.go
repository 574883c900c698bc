package tracer

import (
	"fmt"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/types"
)

// Result describes the outcome of a traversal. When Hit is false the
// remaining fields other than Iterations are undefined.
type Result struct {
	Hit bool

	// Index of the node whose child is the hit voxel and the child octant.
	Node   uint32
	Octant uint8

	// Parametric distance to the voxel entry point (clamped to 0 for rays
	// starting inside the voxel).
	T float32

	// The voxel's min corner and edge length in the [-1, 1] frame.
	Position types.Vec3
	Size     float32

	// Number of loop iterations spent by the tracer.
	Iterations int
}

// Get the store slot of the hit voxel.
func (r Result) Voxel(store *octree.Store) uint32 {
	return store.ChildIndex(store.Node(r.Node), int(r.Octant))
}

func (r Result) String() string {
	if !r.Hit {
		return fmt.Sprintf("miss (iterations: %d)", r.Iterations)
	}
	return fmt.Sprintf(
		"hit node %d octant %d at t=%f; voxel min (%f, %f, %f) size %f (iterations: %d)",
		r.Node, r.Octant, r.T, r.Position[0], r.Position[1], r.Position[2], r.Size, r.Iterations,
	)
}
