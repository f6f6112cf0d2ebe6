package relation

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/mnohosten/bufbtree/pkg/storage"
)

// Slotted-page layout, grown from two ends of storage.PageSize:
//
//	[0:2)   slotCount   (uint16)
//	[2:4)   freeEnd     (uint16, byte offset where tuple data currently starts)
//	[4: ...)            slot directory, 4 bytes/slot: offset(uint16) length(uint16)
//	...                 free space
//	[freeEnd:PageSize)  tuple bytes, appended growing toward the header
const slottedHeaderSize = 4
const slotEntrySize = 4

// BaseRelation is a minimal append-only slotted-page relation: the
// concrete base-relation storage this project needs behind the record-
// iteration utility spec.md §6 only specifies as an interface. Tuples
// are opaque byte strings to the relation (the indexed int32 attribute
// sits at whatever offset the caller's schema uses), and whole tuples
// may optionally be stored zstd-compressed — a relation-level option
// with no bearing on the B+-tree's own fixed page layout.
type BaseRelation struct {
	file        storage.File
	bm          *storage.BufferManager
	compress    bool
	enc         *zstd.Encoder
	dec         *zstd.Decoder
	lastPageNo  storage.PageID
	recordCount int
}

// NewBaseRelation wraps file behind bm. If compress is true, each tuple
// is stored zstd-compressed as a whole (the indexed attribute's bytes
// included) and transparently decompressed on Fetch and on scan.
func NewBaseRelation(file storage.File, bm *storage.BufferManager, compress bool) (*BaseRelation, error) {
	r := &BaseRelation{file: file, bm: bm, compress: compress}
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("relation: init zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("relation: init zstd decoder: %w", err)
		}
		r.enc, r.dec = enc, dec
	}
	return r, nil
}

// Insert appends a tuple (already including the raw int32 key bytes at
// whatever offset the caller's schema uses) to the relation, allocating
// a new page when the current last page has no room.
func (r *BaseRelation) Insert(tuple []byte) (RecordID, error) {
	payload := tuple
	if r.compress {
		payload = r.enc.EncodeAll(tuple, nil)
	}

	if r.lastPageNo == storage.InvalidPageID {
		pageNo, page, err := r.bm.AllocPage(r.file)
		if err != nil {
			return RecordID{}, err
		}
		initSlottedPage(page)
		r.lastPageNo = pageNo
		if err := r.bm.UnpinPage(r.file, pageNo, true); err != nil {
			return RecordID{}, err
		}
	}

	page, err := r.bm.ReadPage(r.file, r.lastPageNo)
	if err != nil {
		return RecordID{}, err
	}

	slot, ok := insertIntoSlottedPage(page, payload)
	if !ok {
		if err := r.bm.UnpinPage(r.file, r.lastPageNo, false); err != nil {
			return RecordID{}, err
		}
		pageNo, newPage, err := r.bm.AllocPage(r.file)
		if err != nil {
			return RecordID{}, err
		}
		initSlottedPage(newPage)
		r.lastPageNo = pageNo

		slot, ok = insertIntoSlottedPage(newPage, payload)
		if !ok {
			_ = r.bm.UnpinPage(r.file, pageNo, true)
			return RecordID{}, fmt.Errorf("relation: tuple too large for an empty page")
		}
		if err := r.bm.UnpinPage(r.file, pageNo, true); err != nil {
			return RecordID{}, err
		}
		r.recordCount++
		return RecordID{PageNo: pageNo, Slot: slot}, nil
	}

	if err := r.bm.UnpinPage(r.file, r.lastPageNo, true); err != nil {
		return RecordID{}, err
	}
	r.recordCount++
	return RecordID{PageNo: r.lastPageNo, Slot: slot}, nil
}

// Fetch reads the tuple bytes at rid.
func (r *BaseRelation) Fetch(rid RecordID) ([]byte, error) {
	page, err := r.bm.ReadPage(r.file, rid.PageNo)
	if err != nil {
		return nil, err
	}
	raw, err := readSlottedEntry(page, rid.Slot)
	if uerr := r.bm.UnpinPage(r.file, rid.PageNo, false); uerr != nil {
		return nil, uerr
	}
	if err != nil {
		return nil, err
	}
	if r.compress {
		return r.dec.DecodeAll(raw, nil)
	}
	return raw, nil
}

// RecordCount returns the number of tuples inserted so far.
func (r *BaseRelation) RecordCount() int { return r.recordCount }

// LastPageNo returns the relation's current last page, or
// storage.InvalidPageID if the relation is empty.
func (r *BaseRelation) LastPageNo() storage.PageID { return r.lastPageNo }

func initSlottedPage(page *storage.Page) {
	binary.LittleEndian.PutUint16(page.Data[0:2], 0)
	binary.LittleEndian.PutUint16(page.Data[2:4], storage.PageSize)
}

func insertIntoSlottedPage(page *storage.Page, data []byte) (uint16, bool) {
	slotCount := binary.LittleEndian.Uint16(page.Data[0:2])
	freeEnd := binary.LittleEndian.Uint16(page.Data[2:4])

	dirEnd := slottedHeaderSize + int(slotCount)*slotEntrySize
	needed := len(data) + slotEntrySize
	if dirEnd+needed > int(freeEnd) {
		return 0, false
	}

	newFreeEnd := int(freeEnd) - len(data)
	copy(page.Data[newFreeEnd:freeEnd], data)

	entryOff := dirEnd
	binary.LittleEndian.PutUint16(page.Data[entryOff:entryOff+2], uint16(newFreeEnd))
	binary.LittleEndian.PutUint16(page.Data[entryOff+2:entryOff+4], uint16(len(data)))

	binary.LittleEndian.PutUint16(page.Data[0:2], slotCount+1)
	binary.LittleEndian.PutUint16(page.Data[2:4], uint16(newFreeEnd))

	return slotCount, true
}

func readSlottedEntry(page *storage.Page, slot uint16) ([]byte, error) {
	slotCount := binary.LittleEndian.Uint16(page.Data[0:2])
	if slot >= slotCount {
		return nil, fmt.Errorf("relation: slot %d out of range (count %d)", slot, slotCount)
	}
	entryOff := slottedHeaderSize + int(slot)*slotEntrySize
	off := binary.LittleEndian.Uint16(page.Data[entryOff : entryOff+2])
	length := binary.LittleEndian.Uint16(page.Data[entryOff+2 : entryOff+4])

	out := make([]byte, length)
	copy(out, page.Data[off:int(off)+int(length)])
	return out, nil
}

func slottedSlotCount(page *storage.Page) uint16 {
	return binary.LittleEndian.Uint16(page.Data[0:2])
}
