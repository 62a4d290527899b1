// Package engine indexes JSON records and answers existence and projection
// requests over them.
//
// Every record is parsed into a parent document and nested child documents,
// each getting its own document number. The existence indexer turns their
// field paths into prefix entries which go into the postings (when the
// existence field is indexed) and into the stored record (when it is
// stored).
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ridge/parallel"
	"github.com/ridge/strata/collect"
	"github.com/ridge/strata/document"
	"github.com/ridge/strata/existence"
	"github.com/ridge/strata/fieldpath"
	"github.com/ridge/strata/mapping"
	"github.com/ridge/strata/postings"
	"github.com/ridge/strata/query"
	"github.com/ridge/strata/store"
	"github.com/ridge/strata/tlog"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Config is the engine configuration
type Config struct {
	Mapping []byte   // mapping definition; empty for the defaults
	Nested  []string // paths holding nested objects
}

// Engine is the indexing engine. Safe for concurrent use; writers are
// serialized.
type Engine struct {
	desc     *mapping.Descriptor
	parser   *document.Parser
	indexer  *existence.Indexer
	postings *postings.Index
	store    *store.Store
	rewriter *query.Rewriter

	lastNum atomic.Uint32
	// held for writing across a postings update and the store commit, and
	// for reading across a store snapshot and the postings lookups made
	// against it
	mu sync.RWMutex
}

// New creates an engine. Deprecated mapping options are logged.
func New(ctx context.Context, config Config) (*Engine, error) {
	desc, deprecations, err := mapping.Parse(config.Mapping)
	if err != nil {
		return nil, err
	}
	logger := tlog.Get(ctx)
	for _, d := range deprecations {
		logger.Warn("Deprecated mapping option", zap.Stringer("deprecation", d))
	}

	for _, path := range config.Nested {
		if err := fieldpath.Validate(path); err != nil {
			return nil, fmt.Errorf("nested path %q: %w", path, err)
		}
	}

	index := postings.New()
	logger.Debug("Engine created", zap.Stringer("fieldNames", desc), zap.Strings("nested", config.Nested))
	return &Engine{
		desc:     desc,
		parser:   document.NewParser(config.Nested...),
		indexer:  existence.New(desc),
		postings: index,
		store:    store.New(),
		rewriter: query.NewRewriter(desc, index),
	}, nil
}

// Descriptor returns the existence field descriptor
func (e *Engine) Descriptor() *mapping.Descriptor {
	return e.desc
}

// Mapping returns the mapping output of the existence field, an empty
// object unless defaults are included
func (e *Engine) Mapping(includeDefaults bool) any {
	if m := e.desc.MappingJSON(includeDefaults); m != nil {
		return m
	}
	return map[string]any{}
}

// Index parses and indexes a JSON record, replacing the previous version of
// a record with the same ID. Returns the record ID.
func (e *Engine) Index(ctx context.Context, raw []byte) (string, error) {
	rec, err := e.parser.Parse(raw)
	if err != nil {
		return "", err
	}
	return rec.ID, e.IndexRecord(ctx, rec)
}

// IndexRecord indexes a parsed record
func (e *Engine) IndexRecord(ctx context.Context, rec document.Record) error {
	entries, err := e.indexer.IndexRecord(rec)
	if err != nil {
		return fmt.Errorf("indexing record %s: %w", rec.ID, err)
	}

	n := uint32(len(rec.Docs))
	first := e.lastNum.Add(n) - n + 1
	doc := store.Doc{ID: rec.ID, Seq: uint(first), Source: rec.Source}
	for i := uint32(1); i < n; i++ {
		doc.Nested = append(doc.Nested, uint(first+i))
	}
	if e.desc.Stored() {
		doc.FieldNames = fieldNames(entries)
	}
	searchable := e.desc.IndexOptions() != mapping.IndexNone

	e.mu.Lock()
	defer e.mu.Unlock()

	if searchable {
		for i, docEntries := range entries {
			for _, entry := range docEntries {
				e.postings.Add(entry.Field, entry.Prefix, first+uint32(i))
			}
		}
	}
	var prev store.Doc
	var replaced bool
	if err := e.store.Update(func(txn store.Txn) error {
		prev, replaced = txn.Put(doc)
		return nil
	}); err != nil {
		return err
	}
	if replaced {
		e.postings.Remove(prev.Docs()...)
		tlog.Get(ctx).Debug("Record replaced", zap.String("id", rec.ID), zap.Uint("prevSeq", prev.Seq))
	}
	return nil
}

func fieldNames(entries [][]existence.Entry) []string {
	set := map[string]bool{}
	for _, docEntries := range entries {
		for _, entry := range docEntries {
			set[entry.Prefix] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	res := maps.Keys(set)
	slices.Sort(res)
	return res
}

// IndexBatch indexes records concurrently on the given number of workers.
// Returns the record IDs in input order. Stops at the first error.
func (e *Engine) IndexBatch(ctx context.Context, raws [][]byte, workers int) ([]string, error) {
	if workers < 1 {
		workers = 1
	}
	ids := make([]string, len(raws))
	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		jobs := make(chan int)
		spawn("feeder", parallel.Continue, func(ctx context.Context) error {
			defer close(jobs)
			for i := range raws {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case jobs <- i:
				}
			}
			return nil
		})
		for w := 0; w < workers; w++ {
			spawn(fmt.Sprintf("worker%d", w), parallel.Continue, func(ctx context.Context) error {
				for i := range jobs {
					id, err := e.Index(ctx, raws[i])
					if err != nil {
						return fmt.Errorf("record %d: %w", i, err)
					}
					ids[i] = id
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tlog.Get(ctx).Debug("Batch indexed", zap.Int("records", len(raws)), zap.Int("workers", workers))
	return ids, nil
}

// Get returns the source of the record with the ID
func (e *Engine) Get(id string) (map[string]any, bool) {
	doc, ok := e.store.Snapshot().Get(id)
	return doc.Source, ok
}

// Len returns the number of records
func (e *Engine) Len() int {
	return e.store.Snapshot().Len()
}

// Exists returns the IDs of the records containing the field or a field
// below it, in indexing order
func (e *Engine) Exists(ctx context.Context, field string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := e.store.Snapshot()

	if e.storedOnly(field) {
		if _, err := e.rewriter.Rewrite(field); err != nil {
			return nil, err
		}
		owners := roaring.New()
		var doc store.Doc
		for it := snap.WithFieldName(field); it(&doc); {
			owners.Add(uint32(doc.Seq))
		}
		return ids(snap, owners), nil
	}

	docs, err := e.rewriter.Exists(field)
	if err != nil {
		return nil, err
	}
	owners := roaring.New()
	for it := docs.Iterator(); it.HasNext(); {
		if owner, ok := snap.Owner(uint(it.Next())); ok {
			owners.Add(uint32(owner))
		}
	}
	tlog.Get(ctx).Debug("Exists query", zap.String("field", field), zap.Uint64("docs", docs.GetCardinality()), zap.Uint64("records", owners.GetCardinality()))
	return ids(snap, owners), nil
}

// Missing returns the IDs of the records none of whose documents contain
// the field, in indexing order
func (e *Engine) Missing(ctx context.Context, field string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.storedOnly(field) {
		if _, err := e.rewriter.Rewrite(field); err != nil {
			return nil, err
		}
		var res []string
		var doc store.Doc
		for it := e.store.Snapshot().All(); it(&doc); {
			if _, found := slices.BinarySearch(doc.FieldNames, field); !found {
				res = append(res, doc.ID)
			}
		}
		return res, nil
	}

	snap := e.store.Snapshot()
	all := roaring.New()
	var doc store.Doc
	for it := snap.All(); it(&doc); {
		all.AddMany(doc.Docs())
	}
	missing, err := e.rewriter.Missing(field, all)
	if err != nil {
		return nil, err
	}

	var res []string
	for it := snap.All(); it(&doc); {
		if missingAll(missing, doc.Docs()) {
			res = append(res, doc.ID)
		}
	}
	tlog.Get(ctx).Debug("Missing query", zap.String("field", field), zap.Int("records", len(res)))
	return res, nil
}

// storedOnly reports whether existence queries on the field are answered
// from the stored entries, the existence field being stored but not indexed
func (e *Engine) storedOnly(field string) bool {
	return e.desc.IndexOptions() == mapping.IndexNone && e.desc.Stored() && field != e.desc.Name()
}

func missingAll(missing *roaring.Bitmap, docs []uint32) bool {
	for _, d := range docs {
		if !missing.Contains(d) {
			return false
		}
	}
	return true
}

// Term runs a term query. Only existence queries are supported, so this
// always fails; a term query on the existence field fails with
// mapping.ErrUnsupportedOperation.
func (e *Engine) Term(ctx context.Context, field string, value any) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	docs, err := e.rewriter.Term(field, value)
	if err != nil {
		return nil, err
	}
	snap := e.store.Snapshot()
	owners := roaring.New()
	for it := docs.Iterator(); it.HasNext(); {
		if owner, ok := snap.Owner(uint(it.Next())); ok {
			owners.Add(uint32(owner))
		}
	}
	return ids(snap, owners), nil
}

func ids(snap store.Snapshot, seqs *roaring.Bitmap) []string {
	res := make([]string, 0, seqs.GetCardinality())
	for it := seqs.Iterator(); it.HasNext(); {
		if doc, ok := snap.BySeq(uint(it.Next())); ok {
			res = append(res, doc.ID)
		}
	}
	return res
}

// Projection is the projected value of one record
type Projection struct {
	ID     string           `json:"_id"`
	Fields collect.Snapshot `json:"fields"`
}

// ErrInvalidProjection is wrapped by errors in the list of projected fields
var ErrInvalidProjection = errors.New("invalid projection")

// ErrNoFields is returned by Project when no fields are requested
var ErrNoFields = fmt.Errorf("%w: no fields", ErrInvalidProjection)

// Project assembles the requested fields of every record into nested
// objects mirroring the dotted paths, in indexing order. Fields absent from
// a record are null.
func (e *Engine) Project(ctx context.Context, fields []string) ([]Projection, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	root, err := collect.Build[store.Doc](fields, func(path string) collect.Input {
		return collect.FromRow(func(doc store.Doc) any {
			v, _ := document.Extract(doc.Source, path)
			return v
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProjection, err)
	}

	var res []Projection
	var doc store.Doc
	for it := e.store.Snapshot().All(); it(&doc); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root.SetNextRow(doc)
		res = append(res, Projection{ID: doc.ID, Fields: root.Value().(collect.Snapshot)})
	}
	return res, nil
}
