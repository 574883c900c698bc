package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/janlaff/voxel-engine/asset"
	"github.com/janlaff/voxel-engine/log"
	"github.com/janlaff/voxel-engine/octree"
	"github.com/janlaff/voxel-engine/scene"
	"github.com/klauspost/compress/zstd"
)

const (
	nodesFile  = "nodes.bin"
	cameraFile = "camera.bin"
)

type zipReader struct {
	logger log.Logger
}

func newZipReader() *zipReader {
	return &zipReader{
		logger: log.New("zip reader"),
	}
}

// Read a compiled octree from a zip archive.
func (p *zipReader) Read(res *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`loading compiled octree from "%s"`, res.Path())
	start := time.Now()

	// zip needs an io.ReaderAt; remote resources can only be streamed so the
	// archive is buffered in memory.
	data, err := io.ReadAll(res)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	var (
		nodes  []octree.Node
		camera *scene.Camera
	)
	for _, f := range zr.File {
		var target interface{}
		switch f.Name {
		case nodesFile:
			target = &nodes
		case cameraFile:
			target = &camera
		default:
			p.logger.Warningf("unknown file %s in octree zip file; skipping", f.Name)
			continue
		}

		if err = decodeFile(f, target); err != nil {
			return nil, fmt.Errorf("zipReader: failed to load %s: %s", f.Name, err.Error())
		}
	}

	if nodes == nil {
		return nil, fmt.Errorf("zipReader: archive does not contain %s", nodesFile)
	}

	store := octree.NewStore(nodes)
	if err = store.Validate(); err != nil {
		return nil, err
	}

	p.logger.Noticef("loaded octree with %d slots in %d ms", store.Len(), time.Since(start).Nanoseconds()/1e6)
	return scene.NewScene(store, camera), nil
}

func decodeFile(f *zip.File, target interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	return gob.NewDecoder(rc).Decode(target)
}
