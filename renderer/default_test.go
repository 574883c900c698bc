package renderer

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/scene"
	"github.com/janlaff/voxel-engine/types"
)

func fullLeafStore() *octree.Store {
	nodes := make([]octree.Node, 9)
	nodes[0] = octree.NewNode(1, false, 0xFF, 0xFF)
	return octree.NewStore(nodes)
}

func emptyStore() *octree.Store {
	return octree.NewStore([]octree.Node{octree.NewNode(0, false, 0, 0)})
}

func TestNewDefaultErrors(t *testing.T) {
	camera := scene.DefaultCamera(1).Inverse()

	if _, err := NewDefault(nil, camera, nil, Options{FrameW: 4, FrameH: 4}); err != ErrOctreeNotDefined {
		t.Fatalf("expected to get %v; got %v", ErrOctreeNotDefined, err)
	}
	if _, err := NewDefault(emptyStore(), camera, nil, Options{FrameW: 4}); err != ErrInvalidFrameSize {
		t.Fatalf("expected to get %v; got %v", ErrInvalidFrameSize, err)
	}

	r, err := NewDefault(emptyStore(), camera, nil, Options{FrameW: 4, FrameH: 4})
	if err != nil {
		t.Fatal(err)
	}
	if err = r.UpdateOctree(nil); err != ErrOctreeNotDefined {
		t.Fatalf("expected to get %v; got %v", ErrOctreeNotDefined, err)
	}
}

func TestRenderPixelBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	store := fullLeafStore()
	camera := scene.DefaultCamera(1).Inverse()

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}} {
		if res := RenderPixel(img, store, camera, p.X, p.Y); res.Hit || res.Iterations != 0 {
			t.Fatalf("expected pixel %v to be ignored; got %s", p, res)
		}
	}
	for _, b := range img.Pix {
		if b != 0 {
			t.Fatal("expected out of bounds pixels not to modify the image")
		}
	}

	// The center pixel looks straight at the octree.
	if res := RenderPixel(img, store, camera, 2, 2); !res.Hit {
		t.Fatalf("expected center pixel to hit the octree; got %s", res)
	}
	if img.RGBAAt(2, 2).A != 255 {
		t.Fatal("expected center pixel to be written")
	}
}

func TestColors(t *testing.T) {
	type spec struct {
		octant uint8
		exp    color.RGBA
	}
	specs := []spec{
		{0, color.RGBA{0, 0, 0, 255}},
		{1, color.RGBA{255, 0, 0, 255}},
		{6, color.RGBA{0, 255, 255, 255}},
		{7, color.RGBA{255, 255, 255, 255}},
	}
	for index, s := range specs {
		if got := OctantColor(s.octant); got != s.exp {
			t.Fatalf("[spec %d] expected color %v; got %v", index, s.exp, got)
		}
	}

	if got := SkyColor(types.XYZ(0, -1, 0)); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected white sky; got %v", got)
	}
	if got := SkyColor(types.XYZ(0, 2, 0)); got.R < 127 || got.R > 128 || got.G < 178 || got.G > 179 || got.B != 255 {
		t.Fatalf("expected blue sky; got %v", got)
	}
}

func TestRender(t *testing.T) {
	camera := scene.DefaultCamera(1)
	r, err := NewDefault(emptyStore(), camera.Inverse(), NewPerfectScheduler(), Options{FrameW: 32, FrameH: 24, Workers: 3})
	if err != nil {
		t.Fatal(err)
	}

	img, err := r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 32, 24) {
		t.Fatalf("unexpected frame bounds %v", img.Bounds())
	}

	stats := r.Stats()
	if len(stats.Blocks) != 3 {
		t.Fatalf("expected 3 blocks; got %d", len(stats.Blocks))
	}
	var rows uint32
	var rays, hits uint64
	for _, block := range stats.Blocks {
		rows += block.BlockH
		rays += block.Rays
		hits += block.Hits
	}
	if rows != 24 || rays != 32*24 || hits != 0 {
		t.Fatalf("unexpected frame stats: rows %d, rays %d, hits %d", rows, rays, hits)
	}

	// Swap in a solid octree; the camera looks at its center.
	if err = r.UpdateOctree(fullLeafStore()); err != nil {
		t.Fatal(err)
	}
	img, err = r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if c := img.RGBAAt(16, 12); c != OctantColor(0) {
		t.Fatalf("expected center pixel to show octant 0; got %v", c)
	}
	hits = 0
	for _, block := range r.Stats().Blocks {
		hits += block.Hits
	}
	if hits == 0 {
		t.Fatal("expected rays to hit the octree")
	}

	// Turning the camera away from the octree leaves only sky.
	camera.Target = types.Splat3(-6)
	camera.Orbit(0, 0)
	r.UpdateCamera(camera.Inverse())
	img, err = r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			if c := img.RGBAAt(x, y); c.B != 255 {
				t.Fatalf("expected pixel (%d, %d) to show the sky; got %v", x, y, c)
			}
		}
	}
}

func TestRenderInterrupted(t *testing.T) {
	r, _ := NewDefault(fullLeafStore(), scene.DefaultCamera(1).Inverse(), nil, Options{FrameW: 8, FrameH: 8, Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected to get %v; got %v", ErrInterrupted, err)
	}
}
