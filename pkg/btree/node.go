package btree

import (
	"encoding/binary"

	"github.com/mnohosten/bufbtree/pkg/storage"
)

// Node capacities are derived from the physical page size the way
// spec.md §3 specifies, down to the same shape of formula — one page
// holds either an entire leaf or an entire internal node, never a
// fraction of one. Design note 9.2 ("Raw page-as-struct overlays") asks
// for a safe port: rather than reinterpreting page bytes as a Go
// struct via a pointer cast, leafNode/internalNode are typed views
// decoded from and encoded back into a *storage.Page explicitly.
const (
	keySize      = 4 // int32
	pageIDSize   = 4
	leafHeaderSize     = 8 // slotsUsed(int32) + rightSibling(PageId)
	internalHeaderSize = 8 // level+reserved(4 bytes) + slotsUsed(int32)
)

// DefaultLeafCap returns LEAF_CAP for storage.PageSize, per spec.md §3:
// LEAF_CAP = (PAGE_SIZE - sizeof(PageId)) / (sizeof(key) + sizeof(RecordId))
// adjusted for this project's 8-byte leaf header (slotsUsed +
// rightSibling) rather than the original's bare rightSibling field.
func DefaultLeafCap() int {
	return (storage.PageSize - leafHeaderSize) / (keySize + recordIDOnDiskSize)
}

// DefaultIntCap returns INT_CAP for storage.PageSize, per spec.md §3:
// INT_CAP = (PAGE_SIZE - sizeof(int) - sizeof(PageId)) / (sizeof(key) + sizeof(PageId))
// adjusted for this project's 8-byte internal header (level + reserved +
// slotsUsed) in place of the bare sizeof(int); the extra sizeof(PageId)
// is the one child pointer beyond INT_CAP. For PageSize 8192 this gives
// 1022, and 8 + 1022*4 + 1023*4 = 8188 bytes fit in one page.
func DefaultIntCap() int {
	return (storage.PageSize - internalHeaderSize - pageIDSize) / (keySize + pageIDSize)
}

// leafNode is the decoded view of a leaf page: slotsUsed ascending keys
// in keys[0:slotsUsed), their rids, and a right-sibling pointer.
type leafNode struct {
	cap          int
	slotsUsed    int32
	keys         []int32
	rids         []RID
	rightSibling storage.PageID
}

func newLeafNode(cap int) *leafNode {
	return &leafNode{
		cap:  cap,
		keys: make([]int32, cap),
		rids: make([]RID, cap),
	}
}

func decodeLeaf(page *storage.Page, cap int) *leafNode {
	n := newLeafNode(cap)
	d := page.Data[:]
	n.slotsUsed = int32(binary.LittleEndian.Uint32(d[0:4]))
	n.rightSibling = storage.PageID(binary.LittleEndian.Uint32(d[4:8]))

	off := leafHeaderSize
	for i := 0; i < cap; i++ {
		n.keys[i] = int32(binary.LittleEndian.Uint32(d[off : off+4]))
		off += keySize
	}
	for i := 0; i < cap; i++ {
		n.rids[i] = decodeRID(d[off : off+recordIDOnDiskSize])
		off += recordIDOnDiskSize
	}
	return n
}

func (n *leafNode) encode(page *storage.Page) {
	d := page.Data[:]
	binary.LittleEndian.PutUint32(d[0:4], uint32(n.slotsUsed))
	binary.LittleEndian.PutUint32(d[4:8], uint32(n.rightSibling))

	off := leafHeaderSize
	for i := 0; i < n.cap; i++ {
		binary.LittleEndian.PutUint32(d[off:off+4], uint32(n.keys[i]))
		off += keySize
	}
	for i := 0; i < n.cap; i++ {
		encodeRID(n.rids[i], d[off:off+recordIDOnDiskSize])
		off += recordIDOnDiskSize
	}
}

// internalNode is the decoded view of an internal page: level (1 =
// children are leaves), slotsUsed ascending separator keys, and
// slotsUsed+1 child page numbers.
type internalNode struct {
	cap       int
	level     uint8
	slotsUsed int32
	keys      []int32
	children  []storage.PageID
}

func newInternalNode(cap int) *internalNode {
	return &internalNode{
		cap:      cap,
		keys:     make([]int32, cap),
		children: make([]storage.PageID, cap+1),
	}
}

func decodeInternal(page *storage.Page, cap int) *internalNode {
	n := newInternalNode(cap)
	d := page.Data[:]
	n.level = d[0]
	n.slotsUsed = int32(binary.LittleEndian.Uint32(d[4:8]))

	off := internalHeaderSize
	for i := 0; i < cap; i++ {
		n.keys[i] = int32(binary.LittleEndian.Uint32(d[off : off+4]))
		off += keySize
	}
	for i := 0; i < cap+1; i++ {
		n.children[i] = storage.PageID(binary.LittleEndian.Uint32(d[off : off+4]))
		off += pageIDSize
	}
	return n
}

func (n *internalNode) encode(page *storage.Page) {
	d := page.Data[:]
	d[0] = n.level
	d[1], d[2], d[3] = 0, 0, 0
	binary.LittleEndian.PutUint32(d[4:8], uint32(n.slotsUsed))

	off := internalHeaderSize
	for i := 0; i < n.cap; i++ {
		binary.LittleEndian.PutUint32(d[off:off+4], uint32(n.keys[i]))
		off += keySize
	}
	for i := 0; i < n.cap+1; i++ {
		binary.LittleEndian.PutUint32(d[off:off+4], uint32(n.children[i]))
		off += pageIDSize
	}
}

// isLeafLevel reports whether children of an internal node at this
// level are leaves — spec.md §3's level==1 convention.
func (n *internalNode) isLeafLevel() bool {
	return n.level == 1
}

// findChildIndex returns the smallest i in [0,slotsUsed) with key <
// keys[i], or slotsUsed if none — spec.md §4.4's findLeafFor rule.
func (n *internalNode) findChildIndex(key int32) int {
	for i := 0; i < int(n.slotsUsed); i++ {
		if key < n.keys[i] {
			return i
		}
	}
	return int(n.slotsUsed)
}
