// Package btree implements the disk-resident B+-tree index of spec.md
// §4.3-4.5: construction (including bulk build from a base relation),
// point insert with leaf/internal split and push-up, and bounded range
// scan. It reaches persistent pages only through pkg/storage's
// BufferManager — never through a file directly.
package btree

import (
	"encoding/binary"
	"fmt"

	"github.com/mnohosten/bufbtree/pkg/relation"
	"github.com/mnohosten/bufbtree/pkg/storage"
)

const (
	metaRelationNameSize = 20
	metaPageSize         = metaRelationNameSize + 4 + 4 + 4 + 1 // + rootIsLeaf
)

// meta is the decoded view of an index file's first page. spec.md §6
// fixes relation name / attrByteOffset / attrType / rootPageNo; this
// project adds one trailing byte recording whether the root is
// currently a leaf, since nothing else in the on-disk format lets a
// reopened index tell a leaf root from an internal one (design note
// 9's "no magic number distinguishes the two on disk" is only safe
// when the root's kind is remembered somewhere — here, persisted).
type meta struct {
	relationName   string
	attrByteOffset int32
	attrType       AttrType
	rootPageNo     storage.PageID
	rootIsLeaf     bool
}

func decodeMeta(page *storage.Page) meta {
	d := page.Data[:]
	nameBytes := d[0:metaRelationNameSize]
	n := 0
	for n < len(nameBytes) && nameBytes[n] != 0 {
		n++
	}
	return meta{
		relationName:   string(nameBytes[:n]),
		attrByteOffset: int32(binary.LittleEndian.Uint32(d[20:24])),
		attrType:       AttrType(binary.LittleEndian.Uint32(d[24:28])),
		rootPageNo:     storage.PageID(binary.LittleEndian.Uint32(d[28:32])),
		rootIsLeaf:     d[32] != 0,
	}
}

func (m meta) encode(page *storage.Page) {
	d := page.Data[:]
	for i := range d[:metaRelationNameSize] {
		d[i] = 0
	}
	copy(d[0:metaRelationNameSize], m.relationName)
	binary.LittleEndian.PutUint32(d[20:24], uint32(m.attrByteOffset))
	binary.LittleEndian.PutUint32(d[24:28], uint32(m.attrType))
	binary.LittleEndian.PutUint32(d[28:32], uint32(m.rootPageNo))
	if m.rootIsLeaf {
		d[32] = 1
	} else {
		d[32] = 0
	}
}

// Index is a disk-resident B+-tree over a single 32-bit integer
// attribute of one base relation. It owns one index file, accessed
// exclusively through a shared *storage.BufferManager.
type Index struct {
	bm   *storage.BufferManager
	file storage.File

	relationName   string
	attrByteOffset int32
	attrType       AttrType

	headerPageNo storage.PageID
	rootPageNo   storage.PageID
	rootIsLeaf   bool

	leafCap int
	intCap  int

	scan *scanState
}

// Options configures capacities the tests exercise directly (spec.md
// §8 scenario 5 builds a tree with LEAF_CAP=4 to force a deterministic
// split). Production callers should leave these at zero to get
// DefaultLeafCap()/DefaultIntCap().
type Options struct {
	LeafCap int
	IntCap  int
}

// IndexName is the file name spec.md §4.3 derives from the relation
// name and the indexed attribute's byte offset.
func IndexName(relationName string, attrByteOffset int32) string {
	return fmt.Sprintf("%s.%d", relationName, attrByteOffset)
}

// OpenOrCreate implements the constructor of spec.md §4.3: if an index
// file matching IndexName already exists it is opened and validated
// against relationName/attrByteOffset/attrType; otherwise a fresh file
// is created, an empty leaf root is allocated, and scanner is consumed
// to bulk-build the tree entry by entry.
//
// scanner may be nil when opening an existing index file (bulk build
// only ever runs once, at creation time).
func OpenOrCreate(
	relationName string,
	attrByteOffset int32,
	attrType AttrType,
	bm *storage.BufferManager,
	openFile func(name string) (storage.File, bool, error),
	scanner func() (relation.Scanner, error),
	opts Options,
) (*Index, string, error) {
	indexName := IndexName(relationName, attrByteOffset)

	file, existed, err := openFile(indexName)
	if err != nil {
		return nil, "", err
	}

	idx := &Index{
		bm:             bm,
		file:           file,
		relationName:   relationName,
		attrByteOffset: attrByteOffset,
		attrType:       attrType,
		leafCap:        opts.LeafCap,
		intCap:         opts.IntCap,
	}
	if idx.leafCap == 0 {
		idx.leafCap = DefaultLeafCap()
	}
	if idx.intCap == 0 {
		idx.intCap = DefaultIntCap()
	}

	if existed {
		if err := idx.openExisting(); err != nil {
			return nil, "", err
		}
		return idx, indexName, nil
	}

	if err := idx.createFresh(); err != nil {
		return nil, "", err
	}

	if scanner != nil {
		sc, err := scanner()
		if err != nil {
			return nil, "", err
		}
		if err := idx.bulkBuild(sc); err != nil {
			sc.Close()
			return nil, "", err
		}
		if err := sc.Close(); err != nil {
			return nil, "", err
		}
	}

	return idx, indexName, nil
}

func (idx *Index) openExisting() error {
	idx.headerPageNo = idx.file.FirstPageNo()
	page, err := idx.bm.ReadPage(idx.file, idx.headerPageNo)
	if err != nil {
		return err
	}
	m := decodeMeta(page)
	if err := idx.bm.UnpinPage(idx.file, idx.headerPageNo, false); err != nil {
		return err
	}

	if m.relationName != idx.relationName || m.attrByteOffset != idx.attrByteOffset || m.attrType != idx.attrType {
		return ErrBadIndexInfo
	}
	idx.rootPageNo = m.rootPageNo
	idx.rootIsLeaf = m.rootIsLeaf
	return nil
}

func (idx *Index) createFresh() error {
	metaPageNo, metaPage, err := idx.bm.AllocPage(idx.file)
	if err != nil {
		return err
	}
	idx.headerPageNo = metaPageNo

	rootPageNo, rootPage, err := idx.bm.AllocPage(idx.file)
	if err != nil {
		return err
	}
	root := newLeafNode(idx.leafCap)
	root.rightSibling = storage.InvalidPageID
	root.encode(rootPage)
	if err := idx.bm.UnpinPage(idx.file, rootPageNo, true); err != nil {
		return err
	}

	idx.rootPageNo = rootPageNo
	idx.rootIsLeaf = true

	m := meta{
		relationName:   idx.relationName,
		attrByteOffset: idx.attrByteOffset,
		attrType:       idx.attrType,
		rootPageNo:     rootPageNo,
		rootIsLeaf:     true,
	}
	m.encode(metaPage)
	return idx.bm.UnpinPage(idx.file, metaPageNo, true)
}

func (idx *Index) bulkBuild(sc relation.Scanner) error {
	for {
		rid, record, ok, err := sc.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		off := idx.attrByteOffset
		key := int32(binary.LittleEndian.Uint32(record[off : off+4]))
		if err := idx.InsertEntry(key, rid); err != nil {
			return err
		}
	}
}

// Close ends any in-progress scan and flushes the index file, matching
// spec.md §4.3's destructor. It does not delete or close the file.
func (idx *Index) Close() error {
	if idx.scan != nil {
		_ = idx.EndScan()
	}
	return idx.bm.FlushFile(idx.file)
}

func (idx *Index) writeMeta() error {
	page, err := idx.bm.ReadPage(idx.file, idx.headerPageNo)
	if err != nil {
		return err
	}
	m := meta{
		relationName:   idx.relationName,
		attrByteOffset: idx.attrByteOffset,
		attrType:       idx.attrType,
		rootPageNo:     idx.rootPageNo,
		rootIsLeaf:     idx.rootIsLeaf,
	}
	m.encode(page)
	return idx.bm.UnpinPage(idx.file, idx.headerPageNo, true)
}

// Stats reports shape information useful for the admin diagnostic
// surface and for the shape-invariant tests of spec.md §8.
type Stats struct {
	RootPageNo storage.PageID
	RootIsLeaf bool
	LeafCap    int
	IntCap     int
}

func (idx *Index) Stats() Stats {
	return Stats{RootPageNo: idx.rootPageNo, RootIsLeaf: idx.rootIsLeaf, LeafCap: idx.leafCap, IntCap: idx.intCap}
}
