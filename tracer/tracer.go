package tracer

import (
	"math"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/types"
)

// A parent voxel saved when descending. Frames are indexed by the scale of
// the parent's children.
type frame struct {
	parent uint32
	tMax   float32
}

// Trace walks ray through the octree and returns the first leaf voxel that it
// enters.
//
// The tracer maps the root cube onto [1, 2] on every axis, which makes the
// float32 exponent of every coordinate equal and lets the mantissa bits of a
// voxel position double as its path through the tree. The ray is mirrored so
// that it travels towards -inf on every axis; octantMask records which axes
// were mirrored and is XOR-ed with the child index to recover real octants.
//
// Trace never allocates and only reads from store, so it can be called
// concurrently. The store must be valid (see octree.Store.Validate).
func Trace(ray Ray, store *octree.Store) Result {
	dir := ClampDirection(ray.Direction).Mul(0.5)
	origin := ray.Origin.Mul(0.5).Add(types.Splat3(1.5))

	// Products are wrapped in explicit float32 conversions to prevent the
	// compiler from fusing them into FMA instructions; traversal decisions
	// must be reproducible bit for bit on every platform.
	var coef, bias [3]float32
	octantMask := 0
	for i := 0; i < 3; i++ {
		coef[i] = 1 / -abs(dir[i])
		bias[i] = float32(coef[i] * origin[i])
		if dir[i] > 0 {
			octantMask ^= 1 << uint(i)
			bias[i] = float32(3*coef[i]) - bias[i]
		}
	}

	// Active t-span for the root cube.
	tMin := max(2*coef[0]-bias[0], 2*coef[1]-bias[1], 2*coef[2]-bias[2], 0)
	tMax := min(coef[0]-bias[0], coef[1]-bias[1], coef[2]-bias[2])
	if tMin > tMax {
		return Result{}
	}

	var (
		stack     [MaxScale + 1]frame
		parent    uint32
		node      octree.Node
		cached    bool
		childIdx  int
		position  = types.Splat3(1)
		scale     = MaxScale - 1
		scaleExp2 = float32(0.5)
		corner    [3]float32
	)

	// Select the root child that the ray enters first.
	for i := 0; i < 3; i++ {
		if float32(1.5*coef[i])-bias[i] > tMin {
			childIdx ^= 1 << uint(i)
			position[i] = 1.5
		}
	}

	iterations := 0
	for scale < MaxScale {
		if iterations >= MaxIterations {
			return Result{Iterations: iterations}
		}
		iterations++

		if !cached {
			node = store.Node(parent)
			cached = true
		}

		// The t-value where the ray leaves the current child cube.
		for i := 0; i < 3; i++ {
			corner[i] = float32(position[i]*coef[i]) - bias[i]
		}
		tcMax := min(corner[0], corner[1], corner[2])

		octant := childIdx ^ octantMask
		if node.Valid(octant) && tMin <= tMax {
			tvMax := min(tMax, tcMax)
			half := scaleExp2 * 0.5

			if tMin <= tvMax {
				// Voxels at scale 0 cannot be subdivided any further.
				if node.Leaf(octant) || scale == 0 {
					return hit(parent, octant, tMin, position, scaleExp2, octantMask, iterations)
				}

				// DESCEND
				stack[scale] = frame{parent: parent, tMax: tMax}
				parent = store.ChildIndex(node, octant)
				cached = false

				childIdx = 0
				scale--
				scaleExp2 = half
				for i := 0; i < 3; i++ {
					if float32(half*coef[i])+corner[i] > tMin {
						childIdx ^= 1 << uint(i)
						position[i] += half
					}
				}

				tMax = tvMax
				continue
			}
		}

		// ADVANCE
		stepMask := 0
		for i := 0; i < 3; i++ {
			if corner[i] <= tcMax {
				stepMask ^= 1 << uint(i)
				position[i] -= scaleExp2
			}
		}
		tMin = tcMax
		childIdx ^= stepMask

		// A set bit after stepping means the ray left the parent cube.
		if childIdx&stepMask == 0 {
			continue
		}

		// POP
		// The highest bit that differs between the old and new positions
		// identifies the scale of the common ancestor.
		var differing uint32
		for i := 0; i < 3; i++ {
			if stepMask&(1<<uint(i)) != 0 {
				differing |= math.Float32bits(position[i]) ^ math.Float32bits(position[i]+scaleExp2)
			}
		}
		scale = int(math.Float32bits(float32(differing))>>23) - 127
		if scale >= MaxScale {
			break
		}
		scaleExp2 = math.Float32frombits(uint32(scale-MaxScale+127) << 23)

		parent = stack[scale].parent
		tMax = stack[scale].tMax

		// Snap the position to the voxel grid at the restored scale and read
		// the child index from the lowest remaining bits.
		childIdx = 0
		for i := 0; i < 3; i++ {
			shifted := math.Float32bits(position[i]) >> uint(scale)
			position[i] = math.Float32frombits(shifted << uint(scale))
			childIdx |= int(shifted&1) << uint(i)
		}
		cached = false
	}

	return Result{Iterations: iterations}
}

// Build a hit result, undoing the mirroring of the voxel position and mapping
// it back to the [-1, 1] frame.
func hit(parent uint32, octant int, tMin float32, position types.Vec3, scaleExp2 float32, octantMask int, iterations int) Result {
	for i := 0; i < 3; i++ {
		if octantMask&(1<<uint(i)) != 0 {
			position[i] = 3 - scaleExp2 - position[i]
		}
	}

	return Result{
		Hit:        true,
		Node:       parent,
		Octant:     uint8(octant),
		T:          tMin,
		Position:   position.Sub(types.Splat3(1.5)).Mul(2),
		Size:       scaleExp2 * 2,
		Iterations: iterations,
	}
}
