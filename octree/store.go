package octree

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/olekukonko/tablewriter"
)

// The maximum number of node levels a store may contain. Tracers address
// voxels through the mantissa of float32 coordinates, so a deeper tree cannot
// be represented.
const MaxDepth = 23

// Store is an immutable flat sequence of nodes with the root at index 0.
//
// A Store is never modified after construction and can be shared by any
// number of concurrent tracers. Callers are expected to run Validate (the
// Builder always does) before publishing a store built from untrusted data.
type Store struct {
	nodes []Node
}

// Create a store from a node list. The list is copied.
func NewStore(nodes []Node) *Store {
	list := make([]Node, len(nodes))
	copy(list, nodes)
	return &Store{nodes: list}
}

// Get the number of nodes in the store.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Get the node at index.
func (s *Store) Node(index uint32) Node {
	return s.nodes[index]
}

// Get a copy of the node list.
func (s *Store) Nodes() []Node {
	list := make([]Node, len(s.nodes))
	copy(list, s.nodes)
	return list
}

// Get the index of the first child slot of node n. For far nodes the child
// pointer addresses a slot whose raw value is the real index.
func (s *Store) FirstChild(n Node) uint32 {
	if n.Far() {
		return uint32(s.nodes[n.ChildPtr()])
	}
	return uint32(n.ChildPtr())
}

// Get the slot index of the child located at octant.
func (s *Store) ChildIndex(n Node, octant int) uint32 {
	return s.FirstChild(n) + n.ChildOffset(octant)
}

// Validate the store. It checks that every node reachable from the root has a
// leaf mask that is a subset of its valid mask, that every child slot is in
// range and that the tree is at most MaxDepth levels deep.
func (s *Store) Validate() error {
	if len(s.nodes) == 0 {
		return ErrEmptyStore
	}

	level := map[uint32]struct{}{0: {}}
	for depth := 0; len(level) != 0; depth++ {
		if depth >= MaxDepth {
			return fmt.Errorf("octree: tree exceeds max depth of %d levels", MaxDepth)
		}

		next := make(map[uint32]struct{})
		for index := range level {
			n := s.nodes[index]
			if n.LeafMask()&^n.ValidMask() != 0 {
				return fmt.Errorf("octree: node %d: leaf mask %08b is not a subset of valid mask %08b", index, n.LeafMask(), n.ValidMask())
			}
			if n.ValidMask() == 0 {
				continue
			}
			if n.Far() && int(n.ChildPtr()) >= len(s.nodes) {
				return fmt.Errorf("octree: node %d: far pointer %d out of range", index, n.ChildPtr())
			}
			first := uint64(s.FirstChild(n))
			if first+uint64(n.ChildCount()) > uint64(len(s.nodes)) {
				return fmt.Errorf("octree: node %d: child slots [%d, %d) out of range", index, first, first+uint64(n.ChildCount()))
			}

			inner := n.ValidMask() &^ n.LeafMask()
			for octant := 0; octant < 8; octant++ {
				if inner&(1<<uint(octant)) != 0 {
					next[s.ChildIndex(n, octant)] = struct{}{}
				}
			}
		}
		level = next
	}

	return nil
}

// Level statistics collected by Stats.
type LevelStats struct {
	Nodes  int
	Leaves int
	Far    int
}

// Walk the tree breadth first and collect per-level statistics. Nodes shared
// by several parents are counted once per level. The store must be valid.
func (s *Store) LevelStats() []LevelStats {
	var out []LevelStats
	if len(s.nodes) == 0 {
		return out
	}

	level := map[uint32]struct{}{0: {}}
	for len(level) != 0 && len(out) < MaxDepth {
		var stats LevelStats
		next := make(map[uint32]struct{})
		for index := range level {
			n := s.nodes[index]
			stats.Nodes++
			stats.Leaves += bits.OnesCount8(n.LeafMask())
			if n.Far() {
				stats.Far++
			}
			for octant := 0; octant < 8; octant++ {
				if n.Valid(octant) && !n.Leaf(octant) {
					next[s.ChildIndex(n, octant)] = struct{}{}
				}
			}
		}
		out = append(out, stats)
		level = next
	}
	return out
}

// Build a tabular representation of store statistics.
func (s *Store) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Level", "Nodes", "Leaf voxels", "Far pointers"})

	var totalNodes, totalLeaves, totalFar int
	for depth, stats := range s.LevelStats() {
		table.Append([]string{
			fmt.Sprintf("%d", depth),
			fmt.Sprintf("%d", stats.Nodes),
			fmt.Sprintf("%d", stats.Leaves),
			fmt.Sprintf("%d", stats.Far),
		})
		totalNodes += stats.Nodes
		totalLeaves += stats.Leaves
		totalFar += stats.Far
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d", totalNodes), fmt.Sprintf("%d", totalLeaves), fmt.Sprintf("%d", totalFar)})

	table.Render()
	fmt.Fprintf(&buf, "Store size: %s (%d slots)\n", fmtSize(len(s.nodes)*4), len(s.nodes))
	return buf.String()
}

// Format a byte count with the appropriate byte/kb/mb unit.
func fmtSize(totalBytes int) string {
	switch {
	case totalBytes < 1024:
		return fmt.Sprintf("%d bytes", totalBytes)
	case totalBytes < 1024*1024:
		return fmt.Sprintf("%3.1f kb", float32(totalBytes)/1024.0)
	default:
		return fmt.Sprintf("%3.1f mb", float32(totalBytes)/(1024.0*1024.0))
	}
}
