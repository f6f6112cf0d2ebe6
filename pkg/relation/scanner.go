package relation

import "github.com/mnohosten/bufbtree/pkg/storage"

// relationScanner is the sequential scanner the B+-tree constructor's
// bulk-build loop (pkg/btree) consumes: it walks every page of a
// BaseRelation from its first page onward, yielding one (RecordID,
// tuple) pair per populated slot.
type relationScanner struct {
	rel         *BaseRelation
	file        storage.File
	bm          *storage.BufferManager
	curPageNo   storage.PageID
	curSlot     uint16
	curSlotMax  uint16
	pinnedPage  *storage.Page
}

// NewScanner opens a fresh sequential scan over rel, starting at its
// first page.
func NewScanner(rel *BaseRelation) (Scanner, error) {
	s := &relationScanner{
		rel:       rel,
		file:      rel.file,
		bm:        rel.bm,
		curPageNo: rel.file.FirstPageNo(),
	}
	if s.curPageNo.Valid() {
		if err := s.pinCurrent(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *relationScanner) pinCurrent() error {
	page, err := s.bm.ReadPage(s.file, s.curPageNo)
	if err != nil {
		return err
	}
	s.pinnedPage = page
	s.curSlotMax = slottedSlotCount(page)
	s.curSlot = 0
	return nil
}

func (s *relationScanner) Next() (RecordID, []byte, bool, error) {
	for {
		if s.pinnedPage == nil {
			return RecordID{}, nil, false, nil
		}
		if s.curSlot >= s.curSlotMax {
			if err := s.bm.UnpinPage(s.file, s.curPageNo, false); err != nil {
				return RecordID{}, nil, false, err
			}
			s.pinnedPage = nil
			next := s.curPageNo + 1
			if !s.relationHasPage(next) {
				return RecordID{}, nil, false, nil
			}
			s.curPageNo = next
			if err := s.pinCurrent(); err != nil {
				return RecordID{}, nil, false, err
			}
			continue
		}

		raw, err := readSlottedEntry(s.pinnedPage, s.curSlot)
		if err != nil {
			return RecordID{}, nil, false, err
		}
		rid := RecordID{PageNo: s.curPageNo, Slot: s.curSlot}
		s.curSlot++

		if s.rel.compress {
			raw, err = s.rel.dec.DecodeAll(raw, nil)
			if err != nil {
				return RecordID{}, nil, false, err
			}
		}
		return rid, raw, true, nil
	}
}

func (s *relationScanner) relationHasPage(pageNo storage.PageID) bool {
	return pageNo <= s.rel.LastPageNo()
}

func (s *relationScanner) Close() error {
	if s.pinnedPage == nil {
		return nil
	}
	err := s.bm.UnpinPage(s.file, s.curPageNo, false)
	s.pinnedPage = nil
	return err
}
