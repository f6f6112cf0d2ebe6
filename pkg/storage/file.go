package storage

import "os"

// File is the paged-file abstraction the buffer manager consumes. It is
// the only interface spec.md §6 asks for; DiskFile below is the concrete
// implementation this project needs to actually run.
//
// Implementations are owned by the caller — the buffer manager never
// closes a File it is handed.
type File interface {
	// AllocatePage appends a fresh page to the file and returns its
	// page number. The returned page is zeroed.
	AllocatePage() (PageID, error)

	// ReadPage reads the page at pageNo into a freshly allocated Page.
	ReadPage(pageNo PageID) (*Page, error)

	// WritePage writes page back to its page number.
	WritePage(pageNo PageID, page *Page) error

	// DeletePage marks pageNo as deleted. The supported operation set
	// never actually calls this for B+-tree pages (spec.md §3: pages
	// are allocated lazily on splits, never freed); it exists because
	// disposePage (§4.1) must be able to delegate to it.
	DeletePage(pageNo PageID) error

	// FirstPageNo returns the page number of the first page in the
	// file (the meta page, for an index file), or InvalidPageID if the
	// file is empty.
	FirstPageNo() PageID

	// Filename returns the path this file was opened from. It is not
	// part of the page-lookup index's identity key, which uses the
	// File's own pointer identity and the page number only.
	Filename() string

	// Close releases OS resources. The buffer manager never calls
	// this; callers close files themselves once no buffer manager
	// still holds pinned pages against them.
	Close() error
}

// FileExists reports whether a data file already exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
