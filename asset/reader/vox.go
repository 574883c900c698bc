package reader

import (
	"time"

	"github.com/janlaff/voxel-engine/asset"
	"github.com/janlaff/voxel-engine/asset/vox"
	"github.com/janlaff/voxel-engine/log"
	"github.com/janlaff/voxel-engine/scene"
)

type voxReader struct {
	logger log.Logger
}

func newVoxReader() *voxReader {
	return &voxReader{
		logger: log.New("vox reader"),
	}
}

// Parse a vox model and pack it into an octree viewed by the default camera.
func (r *voxReader) Read(res *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing vox model from "%s"`, res.Path())
	start := time.Now()

	model, err := vox.Parse(res)
	if err != nil {
		return nil, err
	}

	store, err := model.Octree()
	if err != nil {
		return nil, err
	}

	r.logger.Noticef(
		"built octree with %d voxels and %d slots in %d ms",
		len(model.Voxels), store.Len(), time.Since(start).Nanoseconds()/1e6,
	)
	return scene.NewScene(store, nil), nil
}
