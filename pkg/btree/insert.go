package btree

import "github.com/mnohosten/bufbtree/pkg/storage"

// InsertEntry implements spec.md §4.4: descend to the target leaf
// (directly, if the root is itself a leaf; otherwise via findLeafFor,
// which also records the ancestor path), then insert, splitting and
// propagating upward as needed.
func (idx *Index) InsertEntry(key int32, rid RID) error {
	if idx.rootIsLeaf {
		return idx.insertIntoLeaf(idx.rootPageNo, key, rid, nil)
	}
	leafPageNo, path, err := idx.findLeafFor(key)
	if err != nil {
		return err
	}
	return idx.insertIntoLeaf(leafPageNo, key, rid, path)
}

// findLeafFor descends from the root, collecting the sequence of
// visited internal page numbers (the terminal leaf is not included),
// and returns the leaf that could contain key.
func (idx *Index) findLeafFor(key int32) (storage.PageID, []storage.PageID, error) {
	var path []storage.PageID
	cur := idx.rootPageNo

	for {
		page, err := idx.bm.ReadPage(idx.file, cur)
		if err != nil {
			return 0, nil, err
		}
		node := decodeInternal(page, idx.intCap)
		i := node.findChildIndex(key)
		child := node.children[i]
		reachedLeafLevel := node.isLeafLevel()

		if err := idx.bm.UnpinPage(idx.file, cur, false); err != nil {
			return 0, nil, err
		}
		path = append(path, cur)

		if reachedLeafLevel {
			return child, path, nil
		}
		cur = child
	}
}

func (idx *Index) insertIntoLeaf(pageNo storage.PageID, key int32, rid RID, path []storage.PageID) error {
	page, err := idx.bm.ReadPage(idx.file, pageNo)
	if err != nil {
		return err
	}
	leaf := decodeLeaf(page, idx.leafCap)

	if int(leaf.slotsUsed) < idx.leafCap {
		insertSortedLeaf(leaf, key, rid)
		leaf.encode(page)
		return idx.bm.UnpinPage(idx.file, pageNo, true)
	}

	newPageNo, newPage, err := idx.bm.AllocPage(idx.file)
	if err != nil {
		return err
	}
	newLeaf := newLeafNode(idx.leafCap)
	splitLeafNode(leaf, newLeaf, key, rid, idx.leafCap)

	newLeaf.rightSibling = leaf.rightSibling
	leaf.rightSibling = newPageNo

	leaf.encode(page)
	newLeaf.encode(newPage)

	if err := idx.bm.UnpinPage(idx.file, pageNo, true); err != nil {
		return err
	}
	if err := idx.bm.UnpinPage(idx.file, newPageNo, true); err != nil {
		return err
	}

	pushKey := newLeaf.keys[0]

	if len(path) == 0 {
		return idx.createNewRoot(pushKey, pageNo, newPageNo, 1)
	}
	parent := path[len(path)-1]
	return idx.insertIntoInternal(parent, pushKey, newPageNo, path[:len(path)-1])
}

// insertSortedLeaf inserts key/rid into leaf's sorted region, assuming
// leaf.slotsUsed < len(leaf.keys).
func insertSortedLeaf(leaf *leafNode, key int32, rid RID) {
	pos := int(leaf.slotsUsed)
	for i := 0; i < int(leaf.slotsUsed); i++ {
		if key < leaf.keys[i] {
			pos = i
			break
		}
	}
	for i := int(leaf.slotsUsed); i > pos; i-- {
		leaf.keys[i] = leaf.keys[i-1]
		leaf.rids[i] = leaf.rids[i-1]
	}
	leaf.keys[pos] = key
	leaf.rids[pos] = rid
	leaf.slotsUsed++
}

// splitLeafNode splits a full leaf L (cap entries) plus the incoming
// (key,rid) into L (kept in place, mutated) and a newly allocated R,
// per spec.md §4.4: threshold = ceil((LEAF_CAP+1)/2) entries stay in L,
// the remainder move to R — the concrete worked split in spec.md §8
// scenario 5 (LEAF_CAP=4: 10,20,30,40,25 -> L=[10,20,25] R=[30,40])
// only holds under this threshold, rather than a literal ceil(LEAF_CAP/2)
// applied before the new entry is accounted for.
func splitLeafNode(L, R *leafNode, key int32, rid RID, cap int) {
	keys := make([]int32, 0, cap+1)
	rids := make([]RID, 0, cap+1)
	inserted := false
	for i := 0; i < cap; i++ {
		if !inserted && key < L.keys[i] {
			keys = append(keys, key)
			rids = append(rids, rid)
			inserted = true
		}
		keys = append(keys, L.keys[i])
		rids = append(rids, L.rids[i])
	}
	if !inserted {
		keys = append(keys, key)
		rids = append(rids, rid)
	}

	threshold := ceilDiv(cap+1, 2)

	L.slotsUsed = int32(threshold)
	for i := 0; i < threshold; i++ {
		L.keys[i] = keys[i]
		L.rids[i] = rids[i]
	}

	rCount := len(keys) - threshold
	R.slotsUsed = int32(rCount)
	for i := 0; i < rCount; i++ {
		R.keys[i] = keys[threshold+i]
		R.rids[i] = rids[threshold+i]
	}
}

func (idx *Index) insertIntoInternal(pageNo storage.PageID, key int32, rightChild storage.PageID, path []storage.PageID) error {
	page, err := idx.bm.ReadPage(idx.file, pageNo)
	if err != nil {
		return err
	}
	node := decodeInternal(page, idx.intCap)

	if int(node.slotsUsed) < idx.intCap {
		insertSortedInternal(node, key, rightChild)
		node.encode(page)
		return idx.bm.UnpinPage(idx.file, pageNo, true)
	}

	newPageNo, newPage, err := idx.bm.AllocPage(idx.file)
	if err != nil {
		return err
	}
	newNode := newInternalNode(idx.intCap)
	newNode.level = node.level

	pushKey := splitInternalNode(node, newNode, key, rightChild, idx.intCap)

	node.encode(page)
	newNode.encode(newPage)

	if err := idx.bm.UnpinPage(idx.file, pageNo, true); err != nil {
		return err
	}
	if err := idx.bm.UnpinPage(idx.file, newPageNo, true); err != nil {
		return err
	}

	if len(path) == 0 {
		return idx.createNewRoot(pushKey, pageNo, newPageNo, 0)
	}
	parent := path[len(path)-1]
	return idx.insertIntoInternal(parent, pushKey, newPageNo, path[:len(path)-1])
}

// insertSortedInternal inserts key in sorted position among
// node.keys[0:slotsUsed) and rightChild immediately to the right of
// that key's slot, per spec.md §4.4.
func insertSortedInternal(node *internalNode, key int32, rightChild storage.PageID) {
	pos := int(node.slotsUsed)
	for i := 0; i < int(node.slotsUsed); i++ {
		if key < node.keys[i] {
			pos = i
			break
		}
	}
	for i := int(node.slotsUsed); i > pos; i-- {
		node.keys[i] = node.keys[i-1]
	}
	for i := int(node.slotsUsed) + 1; i > pos+1; i-- {
		node.children[i] = node.children[i-1]
	}
	node.keys[pos] = key
	node.children[pos+1] = rightChild
	node.slotsUsed++
}

// splitInternalNode splits a full internal L (cap keys, cap+1
// children) plus the incoming (key,rightChild) into L (mutated) and a
// newly allocated R, per spec.md §4.4: the key at the computed
// threshold position is moved up (not copied) as the push-up key.
func splitInternalNode(L, R *internalNode, key int32, rightChild storage.PageID, cap int) int32 {
	keys := make([]int32, 0, cap+1)
	children := make([]storage.PageID, 0, cap+2)
	children = append(children, L.children[0])

	inserted := false
	for i := 0; i < cap; i++ {
		if !inserted && key < L.keys[i] {
			keys = append(keys, key)
			children = append(children, rightChild)
			inserted = true
		}
		keys = append(keys, L.keys[i])
		children = append(children, L.children[i+1])
	}
	if !inserted {
		keys = append(keys, key)
		children = append(children, rightChild)
	}

	threshold := ceilDiv(cap, 2)

	L.slotsUsed = int32(threshold)
	for i := 0; i < threshold; i++ {
		L.keys[i] = keys[i]
	}
	for i := 0; i <= threshold; i++ {
		L.children[i] = children[i]
	}

	pushKey := keys[threshold]

	rCount := len(keys) - threshold - 1
	R.slotsUsed = int32(rCount)
	for i := 0; i < rCount; i++ {
		R.keys[i] = keys[threshold+1+i]
	}
	for i := 0; i <= rCount; i++ {
		R.children[i] = children[threshold+1+i]
	}

	return pushKey
}

// createNewRoot allocates a fresh internal page holding exactly one key
// and the two child pointers the split produced, and points the index's
// meta page at it.
func (idx *Index) createNewRoot(key int32, leftChild, rightChild storage.PageID, level uint8) error {
	newRootNo, newRootPage, err := idx.bm.AllocPage(idx.file)
	if err != nil {
		return err
	}
	root := newInternalNode(idx.intCap)
	root.level = level
	root.slotsUsed = 1
	root.keys[0] = key
	root.children[0] = leftChild
	root.children[1] = rightChild
	root.encode(newRootPage)

	if err := idx.bm.UnpinPage(idx.file, newRootNo, true); err != nil {
		return err
	}

	idx.rootPageNo = newRootNo
	idx.rootIsLeaf = false
	return idx.writeMeta()
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
