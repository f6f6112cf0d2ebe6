package storage

import "unsafe"

// lookupKey is the (file-handle identity, pageNo) pair the page-lookup
// index maps to a frame index. File identity is the interface's own
// pointer value, not the filename, so two distinct File handles over
// the same path are never confused with each other — matching
// spec.md §3's "file-handle identity" wording.
type lookupKey struct {
	file   File
	pageNo PageID
}

type hashEntry struct {
	key   lookupKey
	frame frameID
	next  *hashEntry
}

// pageLookupIndex is the buffer manager's page table: a fixed-size
// chained hash table from (file, pageNo) to frame index, grounded on
// the classic BufHashTbl design — open chaining, a table size fixed at
// construction to roughly 1.2x the frame count rounded to an odd
// number, and three operations (lookup/insert/remove) that communicate
// hit/miss via an internal control signal rather than a panic.
type pageLookupIndex struct {
	buckets []*hashEntry
	count   int
}

// newPageLookupIndex sizes the table per spec.md §4.2:
// ceil(1.2*numFrames) rounded up to the next odd number.
func newPageLookupIndex(numFrames int) *pageLookupIndex {
	size := (numFrames*12 + 9) / 10 // ceil(1.2*numFrames)
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	return &pageLookupIndex{buckets: make([]*hashEntry, size)}
}

func (h *pageLookupIndex) hash(key lookupKey) int {
	// Combine the file's interface pointer identity with the page
	// number. The exact mixing function is unimportant; only
	// distribution and determinism within a process matter.
	ptr := uintptr(0)
	if key.file != nil {
		ptr = filePointer(key.file)
	}
	mixed := uint64(ptr)*1000003 + uint64(key.pageNo)
	return int(mixed % uint64(len(h.buckets)))
}

func filePointer(f File) uintptr {
	// Two-word interface value: (type pointer, data pointer). The data
	// pointer is a stable per-handle identity for any pointer-backed
	// File implementation (DiskFile is one).
	type iface struct {
		typ  unsafe.Pointer
		data unsafe.Pointer
	}
	i := (*iface)(unsafe.Pointer(&f))
	return uintptr(i.data)
}

// lookup returns the frame bound to key, or errHashNotFound if absent.
func (h *pageLookupIndex) lookup(key lookupKey) (frameID, error) {
	idx := h.hash(key)
	for e := h.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			return e.frame, nil
		}
	}
	return 0, errHashNotFound
}

// insert binds key to frame, failing with errHashAlreadyPresent if key
// is already bound — the buffer manager must never create duplicate
// bindings (spec.md §3 invariant: at most one frame per (file,pageNo)).
func (h *pageLookupIndex) insert(key lookupKey, frame frameID) error {
	if _, err := h.lookup(key); err == nil {
		return errHashAlreadyPresent
	}
	idx := h.hash(key)
	h.buckets[idx] = &hashEntry{key: key, frame: frame, next: h.buckets[idx]}
	h.count++
	return nil
}

// remove unbinds key, failing with errHashNotFound if it was not bound.
func (h *pageLookupIndex) remove(key lookupKey) error {
	idx := h.hash(key)
	var prev *hashEntry
	for e := h.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			if prev == nil {
				h.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			h.count--
			return nil
		}
		prev = e
	}
	return errHashNotFound
}
