package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestDiskFile(t *testing.T) *DiskFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	f, err := CreateDiskFile(path)
	if err != nil {
		t.Fatalf("CreateDiskFile: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// TestClockEvictionPicksFirstUnreferencedFrame reproduces the pool-size-3
// eviction sequence: three pages are allocated and immediately unpinned,
// and a fourth allocation forces an eviction. The CLOCK hand sweeps every
// frame once clearing reference bits before it can evict any of them, so
// the victim is the first frame it bound (page 1's frame).
func TestClockEvictionPicksFirstUnreferencedFrame(t *testing.T) {
	f := newTestDiskFile(t)
	bm := NewBufferManager(3)

	p1, _, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage p1: %v", err)
	}
	if err := bm.UnpinPage(f, p1, false); err != nil {
		t.Fatalf("UnpinPage p1: %v", err)
	}

	p2, _, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage p2: %v", err)
	}
	if err := bm.UnpinPage(f, p2, false); err != nil {
		t.Fatalf("UnpinPage p2: %v", err)
	}

	p3, _, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage p3: %v", err)
	}
	if err := bm.UnpinPage(f, p3, false); err != nil {
		t.Fatalf("UnpinPage p3: %v", err)
	}

	if _, _, err := bm.AllocPage(f); err != nil {
		t.Fatalf("AllocPage p4: %v", err)
	}

	if _, err := bm.lookup.lookup(lookupKey{file: f, pageNo: p1}); !errors.Is(err, errHashNotFound) {
		t.Fatalf("expected page 1's frame to have been evicted, lookup err = %v", err)
	}
	if _, err := bm.lookup.lookup(lookupKey{file: f, pageNo: p2}); err != nil {
		t.Fatalf("expected page 2 to remain resident: %v", err)
	}
	if _, err := bm.lookup.lookup(lookupKey{file: f, pageNo: p3}); err != nil {
		t.Fatalf("expected page 3 to remain resident: %v", err)
	}
}

// TestClockEvictionWritesBackDirtyPage checks that a dirty victim is
// flushed to disk before its frame is reused.
func TestClockEvictionWritesBackDirtyPage(t *testing.T) {
	f := newTestDiskFile(t)
	bm := NewBufferManager(2)

	p1, page1, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage p1: %v", err)
	}
	copy(page1.Data[:5], []byte("hello"))
	if err := bm.UnpinPage(f, p1, true); err != nil {
		t.Fatalf("UnpinPage p1: %v", err)
	}

	p2, _, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage p2: %v", err)
	}
	if err := bm.UnpinPage(f, p2, false); err != nil {
		t.Fatalf("UnpinPage p2: %v", err)
	}

	p3, _, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage p3: %v", err)
	}
	if err := bm.UnpinPage(f, p3, false); err != nil {
		t.Fatalf("UnpinPage p3: %v", err)
	}

	onDisk, err := f.ReadPage(p1)
	if err != nil {
		t.Fatalf("ReadPage p1 from disk: %v", err)
	}
	if string(onDisk.Data[:5]) != "hello" {
		t.Fatalf("expected dirty page to be written back, got %q", onDisk.Data[:5])
	}
}

// TestBufferExceededWhenAllFramesPinned verifies ErrBufferExceeded is
// returned once a full CLOCK sweep finds no unpinned victim.
func TestBufferExceededWhenAllFramesPinned(t *testing.T) {
	f := newTestDiskFile(t)
	bm := NewBufferManager(2)

	if _, _, err := bm.AllocPage(f); err != nil {
		t.Fatalf("AllocPage 1: %v", err)
	}
	if _, _, err := bm.AllocPage(f); err != nil {
		t.Fatalf("AllocPage 2: %v", err)
	}

	if _, _, err := bm.AllocPage(f); !errors.Is(err, ErrBufferExceeded) {
		t.Fatalf("expected ErrBufferExceeded, got %v", err)
	}
}

func TestUnpinPageNotPinned(t *testing.T) {
	f := newTestDiskFile(t)
	bm := NewBufferManager(2)

	p1, _, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage: %v", err)
	}
	if err := bm.UnpinPage(f, p1, false); err != nil {
		t.Fatalf("first unpin: %v", err)
	}
	if err := bm.UnpinPage(f, p1, false); !errors.Is(err, ErrPageNotPinned) {
		t.Fatalf("expected ErrPageNotPinned, got %v", err)
	}
}

func TestFlushFileRejectsPinnedPages(t *testing.T) {
	f := newTestDiskFile(t)
	bm := NewBufferManager(2)

	if _, _, err := bm.AllocPage(f); err != nil {
		t.Fatalf("AllocPage: %v", err)
	}
	if err := bm.FlushFile(f); !errors.Is(err, ErrPagePinned) {
		t.Fatalf("expected ErrPagePinned, got %v", err)
	}
}

func TestReadPageHitsResidentCopy(t *testing.T) {
	f := newTestDiskFile(t)
	bm := NewBufferManager(4)

	pageNo, page, err := bm.AllocPage(f)
	if err != nil {
		t.Fatalf("AllocPage: %v", err)
	}
	copy(page.Data[:3], []byte("abc"))
	if err := bm.UnpinPage(f, pageNo, true); err != nil {
		t.Fatalf("UnpinPage: %v", err)
	}

	again, err := bm.ReadPage(f, pageNo)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if string(again.Data[:3]) != "abc" {
		t.Fatalf("expected resident copy to carry prior writes, got %q", again.Data[:3])
	}
	if err := bm.UnpinPage(f, pageNo, false); err != nil {
		t.Fatalf("UnpinPage: %v", err)
	}
}
