package btree

import (
	"encoding/binary"

	"github.com/mnohosten/bufbtree/pkg/relation"
	"github.com/mnohosten/bufbtree/pkg/storage"
)

// Operator is a scan-bound comparison, matching spec.md §4.5's
// lowOp ∈ {GT, GTE}, highOp ∈ {LT, LTE}.
type Operator int

const (
	GT Operator = iota
	GTE
	LT
	LTE
)

// AttrType is the data type tag stored in the meta page. Only Int32 is
// a tested path (spec.md §1 Non-goals); the others are declared so the
// meta page format has somewhere to record a mismatch, matching
// design note 9's "string/double support is sketched" framing.
type AttrType uint32

const (
	AttrInt32 AttrType = iota
	AttrFloat64
	AttrString
)

// RID is the (page, slot) pointer a leaf entry carries back to the base
// relation — spec.md's RecordId, reusing pkg/relation's own identifier
// type so a scan result can be handed straight to BaseRelation.Fetch.
type RID = relation.RecordID

const recordIDOnDiskSize = 8 // PageID(4) + Slot(4, zero-extended from uint16)

func encodeRID(rid RID, buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(rid.PageNo))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(rid.Slot))
}

func decodeRID(buf []byte) RID {
	return RID{
		PageNo: storage.PageID(binary.LittleEndian.Uint32(buf[0:4])),
		Slot:   uint16(binary.LittleEndian.Uint32(buf[4:8])),
	}
}
