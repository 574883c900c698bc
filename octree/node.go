package octree

import (
	"fmt"
	"math/bits"
)

// A Node is a packed 32-bit octree node descriptor with the following layout:
//
//	bits 17-31 : child pointer (absolute index of the first child slot)
//	bit  16    : far flag (the child pointer addresses a slot holding the real index)
//	bits  8-15 : valid mask, one bit per octant
//	bits  0-7  : leaf mask, one bit per octant
//
// Octants are numbered so that bit 0 selects the +x half, bit 1 the +y half and
// bit 2 the +z half of the parent cube.
//
// The codec does not check that the leaf mask is a subset of the valid mask;
// that is enforced by Store.Validate.
type Node uint32

const (
	childPtrShift = 17
	farBit        = 1 << 16
	validShift    = 8

	// The largest child pointer that fits in a node descriptor.
	MaxChildPtr = 1<<15 - 1
)

// Pack a node descriptor. Bits of childPtr above bit 14 are discarded.
func NewNode(childPtr uint16, far bool, valid, leaf uint8) Node {
	n := Node(childPtr&MaxChildPtr)<<childPtrShift | Node(valid)<<validShift | Node(leaf)
	if far {
		n |= farBit
	}
	return n
}

// Get the child pointer.
func (n Node) ChildPtr() uint16 {
	return uint16(n >> childPtrShift)
}

// Check whether the child pointer must be resolved through an extra hop.
func (n Node) Far() bool {
	return n&farBit != 0
}

// Get the valid mask.
func (n Node) ValidMask() uint8 {
	return uint8(n >> validShift)
}

// Get the leaf mask.
func (n Node) LeafMask() uint8 {
	return uint8(n)
}

// Check whether the child at the given octant exists.
func (n Node) Valid(octant int) bool {
	return n&(1<<(uint(octant)+validShift)) != 0
}

// Check whether the child at the given octant is a terminal voxel.
func (n Node) Leaf(octant int) bool {
	return n&(1<<uint(octant)) != 0
}

// Get the slot offset of an octant relative to the first child slot. This is
// the number of valid siblings that precede it.
func (n Node) ChildOffset(octant int) uint32 {
	return uint32(bits.OnesCount8(n.ValidMask() & (1<<uint(octant) - 1)))
}

// Get the number of child slots used by this node.
func (n Node) ChildCount() int {
	return bits.OnesCount8(n.ValidMask())
}

func (n Node) String() string {
	return fmt.Sprintf("node{ptr: %d, far: %t, valid: %08b, leaf: %08b}", n.ChildPtr(), n.Far(), n.ValidMask(), n.LeafMask())
}
