package renderer

import "time"

type BlockStat struct {
	// The worker that rendered the block.
	Worker int

	// The block rows and the percentage of total frame area they represent.
	BlockY       uint32
	BlockH       uint32
	FramePercent float32

	// Traced rays, rays that hit a voxel and total traversal iterations.
	Rays       uint64
	Hits       uint64
	Iterations uint64

	// Render time for assigned block.
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual block stats.
	Blocks []BlockStat

	// Total render time for entire frame.
	RenderTime time.Duration
}
