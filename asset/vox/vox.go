package vox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/janlaff/voxel-engine/log"
	"github.com/janlaff/voxel-engine/octree"
)

const (
	magic   = "VOX "
	version = 150

	chunkMain = "MAIN"
	chunkSize = "SIZE"
	chunkXYZI = "XYZI"

	sizeChunkBytes = 12

	// A voxel count followed by one 4-byte record per cell of a 256^3 model.
	maxXYZIBytes = 4 + 4*256*256*256
)

var (
	ErrInvalidMagic = errors.New("vox: invalid file signature")
	ErrNoMainChunk  = errors.New("vox: missing MAIN chunk")
	ErrNoModel      = errors.New("vox: file does not contain a SIZE and XYZI chunk")
)

var logger = log.New("vox parser")

// A single voxel. Coordinates follow the MagicaVoxel convention where z
// points up.
type Voxel struct {
	X, Y, Z uint8
	Color   uint8
}

// Model is the first model stored in a vox file.
type Model struct {
	// Model dimensions along each axis.
	Size [3]uint32

	Voxels []Voxel
}

type chunkHeader struct {
	ID            [4]byte
	ContentBytes  int32
	ChildrenBytes int32
}

// Parse a vox file. Only the first SIZE/XYZI chunk pair is loaded; all other
// chunks are skipped.
func Parse(r io.Reader) (*Model, error) {
	var header struct {
		Magic   [4]byte
		Version int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("vox: could not read header: %s", err.Error())
	}
	if string(header.Magic[:]) != magic {
		return nil, ErrInvalidMagic
	}
	if header.Version != version {
		return nil, fmt.Errorf("vox: unsupported version %d", header.Version)
	}

	mainChunk, err := readChunkHeader(r)
	if err != nil {
		return nil, err
	}
	if string(mainChunk.ID[:]) != chunkMain {
		return nil, ErrNoMainChunk
	}
	if _, err = io.CopyN(io.Discard, r, int64(mainChunk.ContentBytes)); err != nil {
		return nil, fmt.Errorf("vox: truncated MAIN chunk: %s", err.Error())
	}

	// The children of the MAIN chunk are walked as a flat list of siblings.
	model := &Model{}
	var haveSize, haveVoxels bool
	for !haveVoxels {
		chunk, err := readChunkHeader(r)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		switch string(chunk.ID[:]) {
		case chunkSize:
			if chunk.ContentBytes != sizeChunkBytes {
				return nil, fmt.Errorf("vox: SIZE chunk holds %d bytes; expected %d", chunk.ContentBytes, sizeChunkBytes)
			}
			content, err := readContent(r, chunk)
			if err != nil {
				return nil, err
			}
			if err = model.parseSize(content); err != nil {
				return nil, err
			}
			haveSize = true
		case chunkXYZI:
			if !haveSize {
				return nil, errors.New("vox: XYZI chunk without preceding SIZE chunk")
			}
			if chunk.ContentBytes > maxXYZIBytes {
				return nil, fmt.Errorf("vox: XYZI chunk holds %d bytes; at most %d are allowed", chunk.ContentBytes, maxXYZIBytes)
			}
			content, err := readContent(r, chunk)
			if err != nil {
				return nil, err
			}
			if err = model.parseVoxels(content); err != nil {
				return nil, err
			}
			haveVoxels = true
		default:
			logger.Debugf("skipping chunk %q (%d bytes)", chunk.ID[:], chunk.ContentBytes)
			if _, err = io.CopyN(io.Discard, r, int64(chunk.ContentBytes)); err != nil {
				return nil, fmt.Errorf("vox: truncated %s chunk: %s", chunk.ID[:], err.Error())
			}
		}
	}

	if !haveVoxels {
		return nil, ErrNoModel
	}
	return model, nil
}

// Read the content of a chunk. The buffer only grows as data arrives so a
// bogus size cannot trigger a large allocation.
func readContent(r io.Reader, chunk chunkHeader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, int64(chunk.ContentBytes)))
	if err == nil && len(content) != int(chunk.ContentBytes) {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, fmt.Errorf("vox: truncated %s chunk: %s", chunk.ID[:], err.Error())
	}
	return content, nil
}

func readChunkHeader(r io.Reader) (chunkHeader, error) {
	var header chunkHeader
	err := binary.Read(r, binary.LittleEndian, &header)
	switch {
	case err == io.EOF:
		return header, err
	case err != nil:
		return header, fmt.Errorf("vox: could not read chunk header: %s", err.Error())
	case header.ContentBytes < 0 || header.ChildrenBytes < 0:
		return header, fmt.Errorf("vox: chunk %q has a negative size", header.ID[:])
	}
	return header, nil
}

func (m *Model) parseSize(content []byte) error {
	var size [3]int32
	if err := binary.Read(bytes.NewReader(content), binary.LittleEndian, &size); err != nil {
		return fmt.Errorf("vox: invalid SIZE chunk: %s", err.Error())
	}
	for axis, dim := range size {
		if dim < 1 || dim > 256 {
			return fmt.Errorf("vox: invalid model size %v", size)
		}
		m.Size[axis] = uint32(dim)
	}
	return nil
}

func (m *Model) parseVoxels(content []byte) error {
	r := bytes.NewReader(content)

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("vox: invalid XYZI chunk: %s", err.Error())
	}
	if count < 0 || int(count) > r.Len()/4 {
		return fmt.Errorf("vox: XYZI chunk declares %d voxels but only holds %d bytes", count, r.Len())
	}

	m.Voxels = make([]Voxel, count)
	if err := binary.Read(r, binary.LittleEndian, m.Voxels); err != nil {
		return fmt.Errorf("vox: invalid XYZI chunk: %s", err.Error())
	}
	for _, v := range m.Voxels {
		if uint32(v.X) >= m.Size[0] || uint32(v.Y) >= m.Size[1] || uint32(v.Z) >= m.Size[2] {
			return fmt.Errorf("vox: voxel (%d, %d, %d) lies outside the model bounds %v", v.X, v.Y, v.Z, m.Size)
		}
	}
	return nil
}

// Get the depth of the smallest octree whose grid contains the model.
func (m *Model) Depth() int {
	dim := max(m.Size[0], m.Size[1], m.Size[2], 2)
	return bits.Len32(dim - 1)
}

// Pack the model into an octree. The model's z axis points up; since the
// engine treats -y as up, vox z is mapped to the flipped y axis of the grid.
func (m *Model) Octree() (*octree.Store, error) {
	b, err := octree.NewBuilder(m.Depth())
	if err != nil {
		return nil, err
	}

	top := b.Resolution() - 1
	for _, v := range m.Voxels {
		if err = b.Set(uint32(v.X), top-uint32(v.Z), uint32(v.Y), v.Color); err != nil {
			return nil, err
		}
	}

	return b.Build()
}
