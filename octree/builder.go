package octree

import (
	"fmt"
	"time"

	"github.com/janlaff/voxel-engine/log"
)

// A voxel tree node used while building. Child pointers are only populated
// for octants that are valid but not leaves.
type buildNode struct {
	valid    uint8
	leaf     uint8
	children [8]*buildNode
	color    [8]uint8
}

// Builder packs a set of voxels on a regular grid into a Store.
//
// The grid has a resolution of 2^depth voxels per axis and is mapped onto the
// [-1, 1] root cube so that voxel (0, 0, 0) touches the (-1, -1, -1) corner.
// Every voxel becomes a leaf at the deepest level of the tree; the builder
// does not merge uniform regions.
//
// Leaf slots store the voxel color index as a raw word.
type Builder struct {
	logger log.Logger
	depth  int
	root   *buildNode
	voxels int
}

// Create a builder for a grid with 2^depth voxels per axis.
func NewBuilder(depth int) (*Builder, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, ErrInvalidDepth
	}

	return &Builder{
		logger: log.New("octree builder"),
		depth:  depth,
		root:   &buildNode{},
	}, nil
}

// Get the grid resolution along each axis.
func (b *Builder) Resolution() uint32 {
	return 1 << uint(b.depth)
}

// Get the number of voxels added to the builder.
func (b *Builder) Voxels() int {
	return b.voxels
}

// Add a voxel at the given grid coordinates. Adding the same voxel twice
// overwrites its color.
func (b *Builder) Set(x, y, z uint32, color uint8) error {
	res := b.Resolution()
	if x >= res || y >= res || z >= res {
		return ErrVoxelOutOfRange
	}

	node := b.root
	for level := b.depth - 1; level >= 0; level-- {
		octant := int((x>>uint(level))&1 | ((y>>uint(level))&1)<<1 | ((z>>uint(level))&1)<<2)
		bit := uint8(1) << uint(octant)

		if level == 0 {
			if node.valid&bit == 0 {
				b.voxels++
			}
			node.valid |= bit
			node.leaf |= bit
			node.color[octant] = color
			break
		}

		if node.children[octant] == nil {
			node.children[octant] = &buildNode{}
			node.valid |= bit
		}
		node = node.children[octant]
	}

	return nil
}

// Pack the voxel tree into a validated Store.
func (b *Builder) Build() (*Store, error) {
	if b.voxels == 0 {
		return nil, ErrEmptyModel
	}

	start := time.Now()

	// Far pointer words live in a reserved block right after the root so that
	// their own index always fits in a node descriptor. Grow the block until
	// it can hold every far pointer that the layout needs.
	reserved := 0
	var nodes []Node
	for {
		var farCount int
		nodes, farCount = b.layout(reserved)
		if farCount <= reserved {
			break
		}
		if farCount > MaxChildPtr {
			return nil, fmt.Errorf("octree: model requires %d far pointers; at most %d are supported", farCount, MaxChildPtr)
		}
		reserved = farCount
	}

	store := &Store{nodes: nodes}
	if err := store.Validate(); err != nil {
		return nil, err
	}

	b.logger.Debugf(
		"octree build time: %d ms, depth: %d, voxels: %d, slots: %d, far slots: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.depth, b.voxels, len(nodes), reserved,
	)
	return store, nil
}

// Lay out the tree in breadth-first order with reserved slots for far
// pointers. It returns the node list and the number of far pointers that the
// layout requires, which may exceed reserved.
func (b *Builder) layout(reserved int) ([]Node, int) {
	type entry struct {
		node  *buildNode
		index uint32
	}

	nodes := make([]Node, 1+reserved)
	queue := []entry{{b.root, 0}}
	farCount := 0

	for qi := 0; qi < len(queue); qi++ {
		e := queue[qi]
		first := uint32(len(nodes))

		for octant := 0; octant < 8; octant++ {
			bit := uint8(1) << uint(octant)
			switch {
			case e.node.valid&bit == 0:
				continue
			case e.node.leaf&bit != 0:
				nodes = append(nodes, Node(e.node.color[octant]))
			default:
				queue = append(queue, entry{e.node.children[octant], uint32(len(nodes))})
				nodes = append(nodes, 0)
			}
		}

		switch {
		case e.node.valid == 0:
			nodes[e.index] = NewNode(0, false, 0, 0)
		case first <= MaxChildPtr:
			nodes[e.index] = NewNode(uint16(first), false, e.node.valid, e.node.leaf)
		default:
			farCount++
			if farCount <= reserved {
				nodes[farCount] = Node(first)
				nodes[e.index] = NewNode(uint16(farCount), true, e.node.valid, e.node.leaf)
			}
		}
	}

	return nodes, farCount
}
