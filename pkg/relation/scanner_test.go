package relation

import (
	"bytes"
	"fmt"
	"testing"
)

func TestScannerVisitsEveryTupleInOrder(t *testing.T) {
	rel, _ := newTestRelation(t, false)

	const n = 50
	var want [][]byte
	for i := 0; i < n; i++ {
		tuple := []byte(fmt.Sprintf("tuple-%04d", i))
		if _, err := rel.Insert(tuple); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
		want = append(want, tuple)
	}

	sc, err := NewScanner(rel)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	defer sc.Close()

	var got [][]byte
	for {
		_, record, ok, err := sc.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, append([]byte(nil), record...))
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d tuples, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("tuple %d mismatch: got %q want %q", i, got[i], want[i])
		}
	}

	if err := sc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestScannerOverEmptyRelation(t *testing.T) {
	rel, _ := newTestRelation(t, false)

	sc, err := NewScanner(rel)
	if err != nil {
		t.Fatalf("NewScanner: %v", err)
	}
	_, _, ok, err := sc.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ok {
		t.Fatal("expected an empty relation to yield no tuples")
	}
	if err := sc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
