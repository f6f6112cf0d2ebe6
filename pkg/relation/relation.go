// Package relation implements the record-iteration utility and base
// relation storage spec.md treats as an external collaborator (§1, §6):
// a sequential scanner over tuples, each identified by a (pageNo, slot)
// RecordID, used only to bulk-build a B+-tree index at open time.
package relation

import "github.com/mnohosten/bufbtree/pkg/storage"

// RecordID identifies a tuple within a base relation by the page that
// holds it and its slot within that page's slot directory.
type RecordID struct {
	PageNo storage.PageID
	Slot   uint16
}

// Scanner sequentially iterates the tuples of a relation. Next returns
// ok=false once the relation is exhausted — the Go-native counterpart
// of spec.md's internal EndOfFile control signal (§7): it is caught
// here, at the boundary where it is generated, and never surfaced as an
// error.
type Scanner interface {
	// Next returns the next (RecordID, tuple bytes) pair, or
	// ok=false when the relation has been fully scanned.
	Next() (rid RecordID, record []byte, ok bool, err error)

	// Close releases any pages the scanner still has pinned.
	Close() error
}
