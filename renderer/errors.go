package renderer

import "errors"

var (
	ErrOctreeNotDefined = errors.New("renderer: no octree defined")
	ErrInvalidFrameSize = errors.New("renderer: frame dimensions must be non-zero")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
