package btree

import "errors"

var (
	// ErrBadIndexInfo is returned by OpenOrCreate when an existing index
	// file's meta page disagrees with the caller's relation name,
	// attribute offset, or attribute type.
	ErrBadIndexInfo = errors.New("btree: index file exists but describes a different relation/attribute")

	// ErrBadOpcodes is returned by StartScan when lowOp is not one of
	// GT/GTE, or highOp is not one of LT/LTE.
	ErrBadOpcodes = errors.New("btree: scan operators must be GT/GTE and LT/LTE")

	// ErrBadScanrange is returned by StartScan when lowVal > highVal.
	ErrBadScanrange = errors.New("btree: low bound exceeds high bound")

	// ErrNoSuchKeyFound is returned by StartScan when no key in the
	// index satisfies both bounds.
	ErrNoSuchKeyFound = errors.New("btree: no key satisfies the requested range")

	// ErrScanNotInitialized is returned by ScanNext/EndScan when no
	// scan is currently active.
	ErrScanNotInitialized = errors.New("btree: no scan is active")

	// ErrIndexScanCompleted is returned by ScanNext once the active
	// scan has emitted every matching entry.
	ErrIndexScanCompleted = errors.New("btree: scan has emitted all matching entries")
)
