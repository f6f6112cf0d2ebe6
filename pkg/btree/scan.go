package btree

import (
	"errors"

	"github.com/mnohosten/bufbtree/pkg/storage"
)

// scanState holds the cursor of an in-progress bounded range scan:
// spec.md §3 allows at most one active scan per index, and the leaf it
// is currently positioned on stays pinned for the scan's whole
// lifetime (design note 9.3: the page reference is a scoped borrow,
// never outliving the pin that backs it).
type scanState struct {
	lowVal, highVal int32
	lowOp, highOp   Operator

	curLeafPageNo storage.PageID
	pinnedPage    *storage.Page
	nextEntry     int // -1 means exhausted
}

func satisfiesLow(key int32, lowVal int32, op Operator) bool {
	if op == GT {
		return key > lowVal
	}
	return key >= lowVal // GTE
}

func violatesHigh(key int32, highVal int32, op Operator) bool {
	if op == LT {
		return !(key < highVal)
	}
	return !(key <= highVal) // LTE
}

// StartScan begins a bounded range scan: spec.md §4.5. lowOp must be
// GT or GTE; highOp must be LT or LTE. If a scan is already active it
// is ended first. If no key in the index satisfies both bounds,
// ErrNoSuchKeyFound is returned and no page is left pinned.
func (idx *Index) StartScan(lowVal int32, lowOp Operator, highVal int32, highOp Operator) error {
	if lowOp != GT && lowOp != GTE {
		return ErrBadOpcodes
	}
	if highOp != LT && highOp != LTE {
		return ErrBadOpcodes
	}
	if idx.scan != nil {
		if err := idx.EndScan(); err != nil {
			return err
		}
	}
	if lowVal > highVal {
		return ErrBadScanrange
	}

	leafPageNo := idx.rootPageNo
	if !idx.rootIsLeaf {
		target, _, err := idx.findLeafFor(boundaryKeyForLow(lowVal, lowOp))
		if err != nil {
			return err
		}
		leafPageNo = target
	}

	page, err := idx.bm.ReadPage(idx.file, leafPageNo)
	if err != nil {
		return err
	}

	for {
		leaf := decodeLeaf(page, idx.leafCap)
		foundIdx := -1
		for i := 0; i < int(leaf.slotsUsed); i++ {
			if satisfiesLow(leaf.keys[i], lowVal, lowOp) {
				foundIdx = i
				break
			}
		}

		if foundIdx >= 0 {
			if violatesHigh(leaf.keys[foundIdx], highVal, highOp) {
				if err := idx.bm.UnpinPage(idx.file, leafPageNo, false); err != nil {
					return err
				}
				return ErrNoSuchKeyFound
			}
			idx.scan = &scanState{
				lowVal: lowVal, highVal: highVal, lowOp: lowOp, highOp: highOp,
				curLeafPageNo: leafPageNo, pinnedPage: page, nextEntry: foundIdx,
			}
			return nil
		}

		right := leaf.rightSibling
		if err := idx.bm.UnpinPage(idx.file, leafPageNo, false); err != nil {
			return err
		}
		if !right.Valid() {
			return ErrNoSuchKeyFound
		}
		leafPageNo = right
		page, err = idx.bm.ReadPage(idx.file, leafPageNo)
		if err != nil {
			return err
		}
	}
}

// boundaryKeyForLow is the key findLeafFor should target: the leaf
// that could contain lowVal is found by descending for lowVal itself,
// since findLeafFor's child-selection rule (key < keys[i]) already
// routes to the leaf holding the smallest key >= lowVal regardless of
// whether the low bound is inclusive or exclusive.
func boundaryKeyForLow(lowVal int32, _ Operator) int32 {
	return lowVal
}

// ScanNext returns the next matching RID, or ErrIndexScanCompleted once
// the active scan has emitted every entry satisfying its bounds.
func (idx *Index) ScanNext() (RID, error) {
	if idx.scan == nil {
		return RID{}, ErrScanNotInitialized
	}
	s := idx.scan
	if s.nextEntry < 0 {
		return RID{}, ErrIndexScanCompleted
	}

	leaf := decodeLeaf(s.pinnedPage, idx.leafCap)
	rid := leaf.rids[s.nextEntry]

	next := s.nextEntry + 1
	if next >= int(leaf.slotsUsed) {
		right := leaf.rightSibling
		if !right.Valid() {
			s.nextEntry = -1
			return rid, nil
		}
		if err := idx.bm.UnpinPage(idx.file, s.curLeafPageNo, false); err != nil {
			return RID{}, err
		}
		newPage, err := idx.bm.ReadPage(idx.file, right)
		if err != nil {
			return RID{}, err
		}
		newLeaf := decodeLeaf(newPage, idx.leafCap)
		s.curLeafPageNo = right
		s.pinnedPage = newPage
		if newLeaf.slotsUsed == 0 || violatesHigh(newLeaf.keys[0], s.highVal, s.highOp) {
			s.nextEntry = -1
		} else {
			s.nextEntry = 0
		}
		return rid, nil
	}

	if violatesHigh(leaf.keys[next], s.highVal, s.highOp) {
		s.nextEntry = -1
	} else {
		s.nextEntry = next
	}
	return rid, nil
}

// EndScan terminates the active scan, unpinning its current leaf
// (tolerating "not pinned", matching spec.md §4.5) and resetting scan
// state.
func (idx *Index) EndScan() error {
	if idx.scan == nil {
		return ErrScanNotInitialized
	}
	s := idx.scan
	idx.scan = nil
	if err := idx.bm.UnpinPage(idx.file, s.curLeafPageNo, false); err != nil && !errors.Is(err, storage.ErrPageNotPinned) {
		return err
	}
	return nil
}
