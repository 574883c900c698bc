package writer

import (
	"archive/zip"
	"encoding/gob"
	"io"
	"os"
	"time"

	"github.com/janlaff/voxel-engine/log"
	"github.com/janlaff/voxel-engine/scene"
	"github.com/klauspost/compress/zstd"
)

const (
	nodesFile  = "nodes.bin"
	cameraFile = "camera.bin"
)

var logger = log.New("zip writer")

// Write a scene to a compiled octree archive. The octree and the camera are
// stored as separate gob-encoded zip entries compressed with zstd.
func WriteScene(sc *scene.Scene, filename string) error {
	logger.Noticef("writing compiled octree to %s", filename)
	start := time.Now()

	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	err = Write(sc, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filename)
		return err
	}

	logger.Noticef("compressed octree in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Write a scene archive to w.
func Write(sc *scene.Scene, w io.Writer) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	if err := writeEntry(zw, nodesFile, sc.Octree.Nodes()); err != nil {
		return err
	}
	if sc.Camera != nil {
		if err := writeEntry(zw, cameraFile, sc.Camera); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, value interface{}) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zstd.ZipMethodWinZip,
	})
	if err != nil {
		return err
	}
	return gob.NewEncoder(w).Encode(value)
}
