package storage

import "errors"

var (
	// ErrBufferExceeded is returned by allocBuf when every frame in the
	// pool is pinned and no victim can be found after a full sweep.
	ErrBufferExceeded = errors.New("storage: buffer exceeded, no free frame available")

	// ErrPageNotPinned is returned by UnpinPage when the page's pin
	// count is already zero.
	ErrPageNotPinned = errors.New("storage: page not pinned")

	// ErrPagePinned is returned by FlushFile when a page belonging to
	// the file is still pinned.
	ErrPagePinned = errors.New("storage: page still pinned")

	// ErrBadBuffer signals an internal descriptor/lookup-index
	// inconsistency: a lookup entry exists for a frame the descriptor
	// table marks invalid.
	ErrBadBuffer = errors.New("storage: inconsistent buffer descriptor")
)

// errHashNotFound and errHashAlreadyPresent are internal control signals
// used by the page-lookup index. They never escape this package: the
// buffer manager consumes them to distinguish a hit from a miss and to
// guard against duplicate bindings, exactly the way spec.md §7 requires
// of HashNotFound/HashAlreadyPresent.
var (
	errHashNotFound      = errors.New("storage: lookup key not found")
	errHashAlreadyPresent = errors.New("storage: lookup key already present")
)
