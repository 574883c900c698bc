package tracer

import (
	"math"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/types"
)

// Offsets from a parent center to each child center, in units of the child
// half-extent. Bit 0 of the octant selects +x, bit 1 +y and bit 2 +z.
var octantOffsets = [8]types.Vec3{
	{-1, -1, -1},
	{+1, -1, -1},
	{-1, +1, -1},
	{+1, +1, -1},
	{-1, -1, +1},
	{+1, -1, +1},
	{-1, +1, +1},
	{+1, +1, +1},
}

// Each level can leave at most 7 unexpanded siblings on the stack.
const referenceStackSize = MaxScale * 8

type referenceEntry struct {
	index      uint32
	center     types.Vec3
	halfExtent float32
}

// TraceReference finds the closest leaf voxel hit by ray by testing every
// child box whose parent box is hit. It visits far more nodes than Trace and
// exists to cross-check it.
func TraceReference(ray Ray, store *octree.Store) Result {
	ray.Direction = ClampDirection(ray.Direction)
	invDir := types.Vec3{1 / ray.Direction[0], 1 / ray.Direction[1], 1 / ray.Direction[2]}

	var (
		stack [referenceStackSize]referenceEntry
		top   int
		best  = Result{T: float32(math.Inf(1))}
	)

	if _, ok := intersectBox(ray.Origin, invDir, types.Vec3{}, 1); !ok {
		return Result{}
	}

	stack[0] = referenceEntry{index: 0, halfExtent: 1}
	top = 1

	iterations := 0
	for top > 0 {
		iterations++
		top--
		entry := stack[top]
		node := store.Node(entry.index)
		childExtent := entry.halfExtent * 0.5

		for octant := 0; octant < 8; octant++ {
			if !node.Valid(octant) {
				continue
			}

			center := entry.center.Add(octantOffsets[octant].Mul(childExtent))
			t, ok := intersectBox(ray.Origin, invDir, center, childExtent)
			if !ok {
				continue
			}

			if node.Leaf(octant) {
				if t < best.T {
					best = Result{
						Hit:      true,
						Node:     entry.index,
						Octant:   uint8(octant),
						T:        t,
						Position: center.Sub(types.Splat3(childExtent)),
						Size:     childExtent * 2,
					}
				}
				continue
			}

			stack[top] = referenceEntry{
				index:      store.ChildIndex(node, octant),
				center:     center,
				halfExtent: childExtent,
			}
			top++
		}
	}

	best.Iterations = iterations
	if !best.Hit {
		return Result{Iterations: iterations}
	}
	return best
}

// Intersect a ray with an axis aligned cube and return the entry distance.
// Boxes that lie entirely behind the origin are not hit; for origins inside
// the box the entry distance is 0.
func intersectBox(origin, invDir, center types.Vec3, halfExtent float32) (float32, bool) {
	boxMin := center.Sub(types.Splat3(halfExtent))
	boxMax := center.Add(types.Splat3(halfExtent))

	t0 := boxMin.Sub(origin).MulVec(invDir)
	t1 := boxMax.Sub(origin).MulVec(invDir)

	tNear := types.MinVec3(t0, t1).MaxComponent()
	tFar := types.MaxVec3(t0, t1).MinComponent()

	if tNear > tFar || tFar < 0 {
		return 0, false
	}
	return max(tNear, 0), true
}
