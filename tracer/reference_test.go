package tracer

import (
	"testing"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/types"
)

func TestIntersectBox(t *testing.T) {
	type spec struct {
		origin types.Vec3
		dir    types.Vec3
		expHit bool
		expT   float32
	}
	specs := []spec{
		{types.XYZ(-3, 0, 0), types.XYZ(1, 0, 0), true, 2},
		{types.XYZ(-3, 0, 0), types.XYZ(-1, 0, 0), false, 0},
		{types.XYZ(0, 0, 0), types.XYZ(0, 1, 0), true, 0},
		{types.XYZ(-3, 2, 0), types.XYZ(1, 0, 0), false, 0},
		{types.XYZ(-3, -3, -3), types.XYZ(2, 2, 2), true, 1},
	}

	for index, s := range specs {
		dir := ClampDirection(s.dir)
		invDir := types.XYZ(1/dir[0], 1/dir[1], 1/dir[2])
		tNear, hit := intersectBox(s.origin, invDir, types.Vec3{}, 1)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, hit)
		}
		if hit && tNear != s.expT {
			t.Fatalf("[spec %d] expected t to be %f; got %f", index, s.expT, tNear)
		}
	}
}

func TestTraceReferenceClosestLeaf(t *testing.T) {
	// Two leaves along the x axis; the -x one must win for rays travelling
	// towards +x and the +x one for rays travelling towards -x.
	nodes := []octree.Node{
		octree.NewNode(1, false, 0x03, 0x03),
		octree.Node(10),
		octree.Node(20),
	}
	store := octree.NewStore(nodes)

	type spec struct {
		ray       Ray
		expOctant uint8
		expT      float32
	}
	specs := []spec{
		{Ray{types.XYZ(-3, -0.5, -0.5), types.XYZ(1, 0, 0)}, 0, 2},
		{Ray{types.XYZ(3, -0.5, -0.5), types.XYZ(-1, 0, 0)}, 1, 2},
		{Ray{types.XYZ(0.5, -3, -0.5), types.XYZ(0, 1, 0)}, 1, 2},
	}

	for index, s := range specs {
		res := TraceReference(s.ray, store)
		if !res.Hit || res.Octant != s.expOctant || res.T != s.expT {
			t.Fatalf("[spec %d] expected hit on octant %d at t=%f; got %s", index, s.expOctant, s.expT, res)
		}

		if got := Trace(s.ray, store); !got.Hit || got.Octant != res.Octant || got.T != res.T {
			t.Fatalf("[spec %d] expected tracer to agree with reference %s; got %s", index, res, got)
		}
	}

	// Rays through the empty +y half.
	res := TraceReference(Ray{types.XYZ(-3, 0.5, 0.5), types.XYZ(1, 0, 0)}, store)
	if res.Hit {
		t.Fatalf("expected a miss; got %s", res)
	}
}
