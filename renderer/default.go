package renderer

import (
	"context"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/janlaff/voxel-engine/log"
	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/scene"
	"github.com/janlaff/voxel-engine/tracer"
	"github.com/janlaff/voxel-engine/types"
	"golang.org/x/sync/errgroup"
)

var (
	skyHorizon = types.XYZ(1, 1, 1)
	skyZenith  = types.XYZ(0.5, 0.7, 1.0)
)

// The octree and camera used to render a frame. Frame states are never
// modified once published.
type frameState struct {
	store  *octree.Store
	camera scene.InverseCamera
}

// The default renderer traces one primary ray per pixel on the CPU. The frame
// is split into row blocks that are rendered in parallel.
type defaultRenderer struct {
	logger    log.Logger
	options   Options
	scheduler BlockScheduler

	state atomic.Pointer[frameState]

	// Serializes frames; guards stats.
	sync.Mutex
	stats FrameStats
}

// Create a new default renderer using the specified block scheduler.
func NewDefault(store *octree.Store, camera scene.InverseCamera, scheduler BlockScheduler, opts Options) (Renderer, error) {
	if store == nil {
		return nil, ErrOctreeNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if scheduler == nil {
		scheduler = NewPerfectScheduler()
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		scheduler: scheduler,
	}
	r.state.Store(&frameState{store: store, camera: camera})
	return r, nil
}

func (r *defaultRenderer) UpdateCamera(camera scene.InverseCamera) {
	for {
		old := r.state.Load()
		if r.state.CompareAndSwap(old, &frameState{store: old.store, camera: camera}) {
			return
		}
	}
}

func (r *defaultRenderer) UpdateOctree(store *octree.Store) error {
	if store == nil {
		return ErrOctreeNotDefined
	}
	for {
		old := r.state.Load()
		if r.state.CompareAndSwap(old, &frameState{store: store, camera: old.camera}) {
			return nil
		}
	}
}

func (r *defaultRenderer) Stats() FrameStats {
	r.Lock()
	defer r.Unlock()
	return r.stats
}

// Render a frame. The frame uses the octree and camera that were current when
// the call started; concurrent updates only affect subsequent frames.
func (r *defaultRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	r.Lock()
	defer r.Unlock()

	state := r.state.Load()
	frameW, frameH := r.options.FrameW, r.options.FrameH
	img := image.NewRGBA(image.Rect(0, 0, int(frameW), int(frameH)))

	start := time.Now()
	blockAssignment := r.scheduler.Schedule(r.options.Workers, frameH, r.stats.Blocks)
	blocks := make([]BlockStat, len(blockAssignment))

	g, gctx := errgroup.WithContext(ctx)
	var blockY uint32
	for worker, blockH := range blockAssignment {
		blocks[worker] = BlockStat{
			Worker:       worker,
			BlockY:       blockY,
			BlockH:       blockH,
			FramePercent: 100 * float32(blockH) / float32(frameH),
		}
		block := &blocks[worker]
		blockY += blockH

		g.Go(func() error {
			blockStart := time.Now()
			for y := block.BlockY; y < block.BlockY+block.BlockH; y++ {
				if gctx.Err() != nil {
					return ErrInterrupted
				}
				for x := uint32(0); x < frameW; x++ {
					res := RenderPixel(img, state.store, state.camera, int(x), int(y))
					block.Rays++
					block.Iterations += uint64(res.Iterations)
					if res.Hit {
						block.Hits++
					}
				}
			}
			block.RenderTime = time.Since(blockStart)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.stats = FrameStats{
		Blocks:     blocks,
		RenderTime: time.Since(start),
	}
	r.logger.Debugf("rendered %dx%d frame in %d ms using %d workers", frameW, frameH, r.stats.RenderTime.Nanoseconds()/1e6, len(blocks))
	return img, nil
}

// Trace the primary ray through pixel (x, y) of img and store the shaded
// color. Pixels outside the image bounds are left untouched and yield an
// empty result.
func RenderPixel(img *image.RGBA, store *octree.Store, camera scene.InverseCamera, x, y int) tracer.Result {
	bounds := img.Bounds()
	if !image.Pt(x, y).In(bounds) {
		return tracer.Result{}
	}

	screen := types.XY(
		float32(x-bounds.Min.X)/float32(bounds.Dx())*2-1,
		float32(y-bounds.Min.Y)/float32(bounds.Dy())*2-1,
	)
	ray := camera.Ray(screen)
	res := tracer.Trace(ray, store)

	if res.Hit {
		img.SetRGBA(x, y, OctantColor(res.Octant))
	} else {
		img.SetRGBA(x, y, SkyColor(ray.Direction))
	}
	return res
}

// Get the debug color of an octant: the red, green and blue channels are set
// for octants in the positive x, y and z half respectively.
func OctantColor(octant uint8) color.RGBA {
	var c color.RGBA
	if octant&1 != 0 {
		c.R = 255
	}
	if octant&2 != 0 {
		c.G = 255
	}
	if octant&4 != 0 {
		c.B = 255
	}
	c.A = 255
	return c
}

// Get the background color for a ray direction; a vertical gradient from
// white to light blue.
func SkyColor(dir types.Vec3) color.RGBA {
	t := 0.5 * (dir.Normalize()[1] + 1)
	c := skyHorizon.Mul(1 - t).Add(skyZenith.Mul(t))
	return color.RGBA{
		R: toByte(c[0]),
		G: toByte(c[1]),
		B: toByte(c[2]),
		A: 255,
	}
}

func toByte(v float32) uint8 {
	return uint8(max(0, min(1, v))*255 + 0.5)
}
