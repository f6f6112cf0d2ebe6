package storage

import (
	"errors"
	"testing"
)

// fakeFile is a minimal File implementation used only to exercise the
// page-lookup index's hashing by (file identity, pageNo); none of its
// methods are expected to be called.
type fakeFile struct{ name string }

func (f *fakeFile) AllocatePage() (PageID, error)         { return InvalidPageID, nil }
func (f *fakeFile) ReadPage(PageID) (*Page, error)        { return nil, nil }
func (f *fakeFile) WritePage(PageID, *Page) error         { return nil }
func (f *fakeFile) DeletePage(PageID) error               { return nil }
func (f *fakeFile) FirstPageNo() PageID                   { return InvalidPageID }
func (f *fakeFile) Filename() string                      { return f.name }
func (f *fakeFile) Close() error                          { return nil }

func TestPageLookupIndexSize(t *testing.T) {
	idx := newPageLookupIndex(10)
	if len(idx.buckets)%2 == 0 {
		t.Fatalf("expected odd table size, got %d", len(idx.buckets))
	}
	if len(idx.buckets) < 12 {
		t.Fatalf("expected ceil(1.2*10) rounded up to odd >= 12, got %d", len(idx.buckets))
	}
}

func TestPageLookupIndexInsertLookupRemove(t *testing.T) {
	idx := newPageLookupIndex(8)
	f1 := &fakeFile{name: "a"}
	f2 := &fakeFile{name: "b"}

	k1 := lookupKey{file: f1, pageNo: 1}
	k2 := lookupKey{file: f2, pageNo: 1}

	if err := idx.insert(k1, 0); err != nil {
		t.Fatalf("insert k1: %v", err)
	}
	if err := idx.insert(k2, 1); err != nil {
		t.Fatalf("insert k2: %v", err)
	}

	if fr, err := idx.lookup(k1); err != nil || fr != 0 {
		t.Fatalf("lookup k1: frame=%d err=%v", fr, err)
	}
	if fr, err := idx.lookup(k2); err != nil || fr != 1 {
		t.Fatalf("lookup k2: frame=%d err=%v", fr, err)
	}

	if err := idx.insert(k1, 2); !errors.Is(err, errHashAlreadyPresent) {
		t.Fatalf("expected errHashAlreadyPresent, got %v", err)
	}

	if err := idx.remove(k1); err != nil {
		t.Fatalf("remove k1: %v", err)
	}
	if _, err := idx.lookup(k1); !errors.Is(err, errHashNotFound) {
		t.Fatalf("expected errHashNotFound after remove, got %v", err)
	}
	if err := idx.remove(k1); !errors.Is(err, errHashNotFound) {
		t.Fatalf("expected errHashNotFound removing twice, got %v", err)
	}
}

func TestPageLookupIndexDistinguishesFileIdentity(t *testing.T) {
	idx := newPageLookupIndex(4)
	f1 := &fakeFile{name: "same-name"}
	f2 := &fakeFile{name: "same-name"}

	if err := idx.insert(lookupKey{file: f1, pageNo: 5}, 0); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := idx.lookup(lookupKey{file: f2, pageNo: 5}); !errors.Is(err, errHashNotFound) {
		t.Fatalf("expected distinct file handles to be distinct keys, got %v", err)
	}
}
