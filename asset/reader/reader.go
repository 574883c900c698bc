package reader

import (
	"fmt"

	"github.com/janlaff/voxel-engine/asset"
	"github.com/janlaff/voxel-engine/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read a scene from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read a scene from a file or http(s) URL. Vox models are packed into an
// octree on the fly while compiled .svo files are loaded as-is. The octree
// of the returned scene is always validated.
func ReadScene(filename string) (*scene.Scene, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Read(res)
}

// Read a scene from a resource, selecting the reader by file extension.
func Read(res *asset.Resource) (*scene.Scene, error) {
	var reader Reader
	switch res.Ext() {
	case ".vox":
		reader = newVoxReader()
	case ".svo":
		reader = newZipReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", res.Ext())
	}
	return reader.Read(res)
}
