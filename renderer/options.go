package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of goroutines that trace row blocks in parallel. If zero, one
	// worker per CPU is used.
	Workers int
}
