package relation

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mnohosten/bufbtree/pkg/storage"
)

func newTestRelation(t *testing.T, compress bool) (*BaseRelation, *storage.BufferManager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rel.db")
	f, err := storage.CreateDiskFile(path)
	if err != nil {
		t.Fatalf("CreateDiskFile: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	bm := storage.NewBufferManager(8)
	rel, err := NewBaseRelation(f, bm, compress)
	if err != nil {
		t.Fatalf("NewBaseRelation: %v", err)
	}
	return rel, bm
}

func TestBaseRelationInsertFetchRoundTrip(t *testing.T) {
	rel, _ := newTestRelation(t, false)

	rid, err := rel.Insert([]byte("first tuple"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := rel.Fetch(rid)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, []byte("first tuple")) {
		t.Fatalf("got %q", got)
	}
	if rel.RecordCount() != 1 {
		t.Fatalf("expected RecordCount 1, got %d", rel.RecordCount())
	}
}

func TestBaseRelationSpansMultiplePages(t *testing.T) {
	rel, _ := newTestRelation(t, false)

	// Large tuples to force overflow onto a second page well before
	// storage.PageSize tuples worth of small ones would be needed.
	payload := bytes.Repeat([]byte("x"), 512)
	var rids []RecordID
	for i := 0; i < 32; i++ {
		rid, err := rel.Insert(payload)
		if err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
		rids = append(rids, rid)
	}

	if rel.LastPageNo() == rids[0].PageNo {
		t.Fatal("expected the relation to have spanned onto a later page")
	}

	for i, rid := range rids {
		got, err := rel.Fetch(rid)
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("Fetch %d: content mismatch", i)
		}
	}
}

func TestBaseRelationCompression(t *testing.T) {
	rel, _ := newTestRelation(t, true)

	payload := bytes.Repeat([]byte("compressible-payload-"), 50)
	rid, err := rel.Insert(payload)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := rel.Fetch(rid)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("decompressed payload did not round-trip")
	}
}

func TestBaseRelationManyTuples(t *testing.T) {
	rel, _ := newTestRelation(t, false)

	const n = 200
	for i := 0; i < n; i++ {
		if _, err := rel.Insert([]byte(fmt.Sprintf("tuple-%03d", i))); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}
	if rel.RecordCount() != n {
		t.Fatalf("expected %d records, got %d", n, rel.RecordCount())
	}
}
