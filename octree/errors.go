package octree

import "errors"

var (
	ErrEmptyStore      = errors.New("octree: store contains no nodes")
	ErrEmptyModel      = errors.New("octree: builder contains no voxels")
	ErrInvalidDepth    = errors.New("octree: builder depth must be in the range [1, 23]")
	ErrVoxelOutOfRange = errors.New("octree: voxel coordinates exceed builder resolution")
)
