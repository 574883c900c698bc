package tracer

import (
	"math"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/types"
)

const (
	// The maximum scale, equal to the number of float32 mantissa bits. The
	// root cube sits at MaxScale and its children at MaxScale-1.
	MaxScale = octree.MaxDepth

	// Hard limit for the number of loop iterations of a single traversal.
	// Rays that exceed it are reported as misses.
	MaxIterations = 1 << 16
)

// The smallest magnitude allowed for a ray direction component (2^-23).
var directionEpsilon = math.Float32frombits(uint32(127-MaxScale) << 23)

// A Ray in the octree frame where the root cube spans [-1, 1] on every axis.
// The direction does not need to be normalized; its length only scales the
// parametric distance reported for hits.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// Get the point at parametric distance t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Replace direction components whose magnitude is smaller than 2^-23 with
// 2^-23, keeping their sign. This keeps every reciprocal finite.
func ClampDirection(dir types.Vec3) types.Vec3 {
	for i := 0; i < 3; i++ {
		if abs(dir[i]) < directionEpsilon {
			dir[i] = float32(math.Copysign(float64(directionEpsilon), float64(dir[i])))
		}
	}
	return dir
}

func abs(v float32) float32 {
	return math.Float32frombits(math.Float32bits(v) &^ (1 << 31))
}
