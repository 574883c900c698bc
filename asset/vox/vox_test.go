package vox

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"strings"
	"testing"
)

type chunk struct {
	id      string
	content []byte
}

func le(values ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func sizeChunk(x, y, z int32) chunk {
	return chunk{chunkSize, le(x, y, z)}
}

func xyziChunk(voxels ...Voxel) chunk {
	return chunk{chunkXYZI, le(int32(len(voxels)), voxels)}
}

func encode(magic string, version int32, mainID string, chunks ...chunk) []byte {
	var children bytes.Buffer
	for _, c := range chunks {
		children.WriteString(c.id)
		children.Write(le(int32(len(c.content)), int32(0)))
		children.Write(c.content)
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.Write(le(version))
	buf.WriteString(mainID)
	buf.Write(le(int32(0), int32(children.Len())))
	buf.Write(children.Bytes())
	return buf.Bytes()
}

// Encode a file that ends with a chunk header declaring contentBytes but
// carrying no content.
func declaredChunk(id string, contentBytes int32, chunks ...chunk) []byte {
	data := encode(magic, version, chunkMain, chunks...)
	data = append(data, id...)
	return append(data, le(contentBytes, int32(0))...)
}

func TestParse(t *testing.T) {
	data := encode(magic, version, chunkMain,
		chunk{"PACK", le(int32(1))},
		sizeChunk(3, 2, 4),
		xyziChunk(Voxel{0, 0, 0, 1}, Voxel{2, 1, 3, 79}),
		chunk{"RGBA", make([]byte, 1024)},
	)

	model, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if model.Size != [3]uint32{3, 2, 4} {
		t.Fatalf("expected size [3 2 4]; got %v", model.Size)
	}
	if len(model.Voxels) != 2 {
		t.Fatalf("expected 2 voxels; got %d", len(model.Voxels))
	}
	if exp := (Voxel{2, 1, 3, 79}); model.Voxels[1] != exp {
		t.Fatalf("expected voxel %v; got %v", exp, model.Voxels[1])
	}
	if depth := model.Depth(); depth != 2 {
		t.Fatalf("expected depth 2; got %d", depth)
	}
}

func TestParseErrors(t *testing.T) {
	type spec struct {
		data   []byte
		expErr string
	}
	specs := []spec{
		{[]byte("VOX"), "could not read header"},
		{encode("VOXX", version, chunkMain), ErrInvalidMagic.Error()},
		{encode(magic, 200, chunkMain), "unsupported version 200"},
		{encode(magic, version, "MAIX"), ErrNoMainChunk.Error()},
		{encode(magic, version, chunkMain, sizeChunk(2, 2, 2)), ErrNoModel.Error()},
		{encode(magic, version, chunkMain, xyziChunk(Voxel{})), "without preceding SIZE"},
		{encode(magic, version, chunkMain, sizeChunk(0, 2, 2)), "invalid model size"},
		{encode(magic, version, chunkMain, sizeChunk(2, 2, 2), xyziChunk(Voxel{2, 0, 0, 1})), "outside the model bounds"},
		{encode(magic, version, chunkMain, sizeChunk(2, 2, 2), chunk{chunkXYZI, le(int32(10), int32(0))}), "declares 10 voxels"},
		{encode(magic, version, chunkMain, sizeChunk(2, 2, 2), chunk{"nTRN", nil})[:50], "could not read chunk header"},
		{encode(magic, version, chunkMain, chunk{chunkSize, le(int32(2), int32(2))}), "SIZE chunk holds 8 bytes"},
		{declaredChunk(chunkXYZI, maxXYZIBytes+4, sizeChunk(2, 2, 2)), "at most"},
		{declaredChunk("nTRN", 0x7fffffff), "truncated nTRN chunk"},
		{declaredChunk(chunkSize, 0x7fffffff), "SIZE chunk holds"},
	}

	for index, s := range specs {
		_, err := Parse(bytes.NewReader(s.data))
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestParseTruncatedChunk(t *testing.T) {
	data := encode(magic, version, chunkMain, sizeChunk(2, 2, 2), xyziChunk(Voxel{1, 1, 1, 1}))
	_, err := Parse(bytes.NewReader(data[:len(data)-2]))
	if err == nil || !strings.Contains(err.Error(), "truncated XYZI chunk") {
		t.Fatalf("expected truncated chunk error; got %v", err)
	}
}

func TestParseHugeChunkAllocation(t *testing.T) {
	data := append(declaredChunk(chunkXYZI, 1<<20, sizeChunk(2, 2, 2)), le(int32(1))...)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Parse(bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	if err == nil || !strings.Contains(err.Error(), "truncated XYZI chunk") {
		t.Fatalf("expected truncated chunk error; got %v", err)
	}
	if alloc := after.TotalAlloc - before.TotalAlloc; alloc > 256<<10 {
		t.Fatalf("expected declared chunk size not to be allocated up front; allocated %d bytes", alloc)
	}

	data = declaredChunk("nTRN", 0x7fffffff)
	runtime.ReadMemStats(&before)
	_, err = Parse(bytes.NewReader(data))
	runtime.ReadMemStats(&after)
	if err == nil {
		t.Fatal("expected an error")
	}
	if alloc := after.TotalAlloc - before.TotalAlloc; alloc > 256<<10 {
		t.Fatalf("expected skipped chunk not to be buffered; allocated %d bytes", alloc)
	}
}

func TestModelOctree(t *testing.T) {
	model := &Model{
		Size:   [3]uint32{4, 4, 4},
		Voxels: []Voxel{{0, 0, 0, 7}, {3, 2, 3, 9}},
	}

	store, err := model.Octree()
	if err != nil {
		t.Fatal(err)
	}

	// Vox z is stored on the flipped y axis and vox y on the z axis.
	type spec struct {
		x, y, z  uint32
		expColor uint8
	}
	for index, s := range []spec{{0, 3, 0, 7}, {3, 0, 2, 9}} {
		node := uint32(0)
		for level := 1; level >= 0; level-- {
			octant := int((s.x>>uint(level))&1 | ((s.y>>uint(level))&1)<<1 | ((s.z>>uint(level))&1)<<2)
			n := store.Node(node)
			if !n.Valid(octant) {
				t.Fatalf("[spec %d] expected octant %d of node %d to be valid", index, octant, node)
			}
			node = store.ChildIndex(n, octant)
		}
		if got := uint8(store.Node(node)); got != s.expColor {
			t.Fatalf("[spec %d] expected color %d; got %d", index, s.expColor, got)
		}
	}
}
