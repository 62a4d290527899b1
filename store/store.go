// Package store keeps indexed records in an in-memory database.
//
// Every record is a Doc addressed by its ID and by its sequence number,
// which is also the parent document's number in the postings. Nested child
// documents get numbers of their own; the store maps them back to the
// parent.
package store

import (
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/ridge/must/v2"
)

const (
	tableDocs   = "docs"
	tableNested = "nested"

	indexID         = "id" // the primary index name expected by memdb
	indexSeq        = "seq"
	indexFieldNames = "field_names"
	indexParent     = "parent"
)

// Doc is a stored record. All fields are read-only once stored.
type Doc struct {
	ID     string
	Seq    uint
	Nested []uint // numbers of nested child documents
	Source map[string]any

	// FieldNames holds the existence entries of the record when the
	// existence field is stored
	FieldNames []string
}

// Docs returns the numbers of all physical documents of the record
func (d Doc) Docs() []uint32 {
	res := make([]uint32, 0, len(d.Nested)+1)
	res = append(res, uint32(d.Seq))
	for _, n := range d.Nested {
		res = append(res, uint32(n))
	}
	return res
}

type nestedDoc struct {
	Num    uint
	Parent uint
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{Tables: map[string]*memdb.TableSchema{
		tableDocs: {
			Name: tableDocs,
			Indexes: map[string]*memdb.IndexSchema{
				indexID: {
					Name:    indexID,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				indexSeq: {
					Name:    indexSeq,
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "Seq"},
				},
				indexFieldNames: {
					Name:         indexFieldNames,
					AllowMissing: true,
					Indexer:      &memdb.StringSliceFieldIndex{Field: "FieldNames"},
				},
			},
		},
		tableNested: {
			Name: tableNested,
			Indexes: map[string]*memdb.IndexSchema{
				indexID: {
					Name:    indexID,
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "Num"},
				},
				indexParent: {
					Name:    indexParent,
					Indexer: &memdb.UintFieldIndex{Field: "Parent"},
				},
			},
		},
	}}
}

// Store is an in-memory record store.
// Safe for concurrent use; writers are serialized.
type Store struct {
	db *memdb.MemDB
}

// New creates an empty store
func New() *Store {
	return &Store{db: must.OK1(memdb.NewMemDB(schema()))}
}

// Snapshot returns a read-only view of the store at this moment
func (s *Store) Snapshot() Snapshot {
	return Snapshot{txn: s.db.Txn(false)}
}

// Update runs fn in a write transaction. The transaction is committed if fn
// returns nil, and aborted otherwise.
func (s *Store) Update(fn func(txn Txn) error) error {
	w := s.db.Txn(true)
	defer w.Abort() // no-op after commit
	if err := fn(Txn{Snapshot: Snapshot{txn: w}}); err != nil {
		return err
	}
	w.Commit()
	return nil
}

// Txn is a write transaction. Do not use concurrently or after Update
// returns.
type Txn struct {
	Snapshot
}

// Put stores the record, replacing the record with the same ID if any.
// Returns the replaced record.
func (txn Txn) Put(doc Doc) (Doc, bool) {
	prev, existed := txn.Delete(doc.ID)
	must.OK(txn.txn.Insert(tableDocs, doc))
	for _, n := range doc.Nested {
		must.OK(txn.txn.Insert(tableNested, nestedDoc{Num: n, Parent: doc.Seq}))
	}
	return prev, existed
}

// Delete removes the record with the ID. Returns the removed record.
func (txn Txn) Delete(id string) (Doc, bool) {
	prev, ok := txn.Get(id)
	if !ok {
		return Doc{}, false
	}
	must.OK(txn.txn.Delete(tableDocs, prev))
	for _, n := range prev.Nested {
		must.OK(txn.txn.Delete(tableNested, nestedDoc{Num: n, Parent: prev.Seq}))
	}
	return prev, true
}

// Iterator is an iterator over records. Every call fills in another record
// into ptr. Returns false at the end of the sequence. A nil ptr skips one
// record.
//
// Do not use a single iterator concurrently.
type Iterator = func(ptr *Doc) bool

// Snapshot is a read-only view of the store.
// Safe for concurrent use.
type Snapshot struct {
	txn *memdb.Txn
}

// Get returns the record with the ID
func (s Snapshot) Get(id string) (Doc, bool) {
	return first(s.txn, indexID, id)
}

// BySeq returns the record with the sequence number
func (s Snapshot) BySeq(seq uint) (Doc, bool) {
	return first(s.txn, indexSeq, seq)
}

// Owner returns the sequence number of the record a physical document
// number belongs to: either the number itself for a parent document, or
// the parent's number for a nested one
func (s Snapshot) Owner(num uint) (uint, bool) {
	if _, ok := s.BySeq(num); ok {
		return num, true
	}
	raw := must.OK1(s.txn.First(tableNested, indexID, num))
	if raw == nil {
		return 0, false
	}
	return raw.(nestedDoc).Parent, true
}

// All iterates over all records in the order of sequence numbers
func (s Snapshot) All() Iterator {
	return iterate(must.OK1(s.txn.Get(tableDocs, indexSeq)))
}

// WithFieldName iterates over the records whose stored existence entries
// include the name. Only records indexed with a stored existence field can
// be found this way.
func (s Snapshot) WithFieldName(name string) Iterator {
	return iterate(must.OK1(s.txn.Get(tableDocs, indexFieldNames, name)))
}

// Len returns the number of records
func (s Snapshot) Len() int {
	n := 0
	for iter := s.All(); iter(nil); {
		n++
	}
	return n
}

func first(txn *memdb.Txn, index string, arg any) (Doc, bool) {
	raw, err := txn.First(tableDocs, index, arg)
	if err != nil {
		panic(fmt.Errorf("lookup by %s: %w", index, err))
	}
	if raw == nil {
		return Doc{}, false
	}
	return raw.(Doc), true
}

func iterate(it memdb.ResultIterator) Iterator {
	return func(ptr *Doc) bool {
		raw := it.Next()
		if raw == nil {
			return false
		}
		if ptr != nil {
			*ptr = raw.(Doc)
		}
		return true
	}
}
