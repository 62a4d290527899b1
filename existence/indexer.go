// Package existence derives the existence index entries of documents.
//
// For every field of a document, the indexer emits the field's path and all
// of its ancestor prefixes under the reserved field name, so that a lookup
// of "user" finds documents containing "user.name" or "user.age".
package existence

import (
	"fmt"

	"github.com/ridge/strata/document"
	"github.com/ridge/strata/fieldpath"
	"github.com/ridge/strata/mapping"
)

// Entry is a single existence index term. Entries are not unique: a prefix
// reachable from several fields of a document is emitted once per field.
type Entry struct {
	Field  string
	Prefix string
}

// Fields is an ordered field enumeration of one physical document.
// document.Document implements it; streaming parsers may implement it
// directly, reporting parse failures from Each.
type Fields interface {
	Each(fn func(document.Field) error) error
}

// Indexer emits existence entries according to a frozen descriptor.
// Safe for concurrent use.
type Indexer struct {
	desc *mapping.Descriptor
}

// New creates an indexer
func New(desc *mapping.Descriptor) *Indexer {
	if desc == nil {
		panic("existence indexer requires a descriptor")
	}
	return &Indexer{desc: desc}
}

// Descriptor returns the descriptor the indexer was created with
func (ix *Indexer) Descriptor() *mapping.Descriptor {
	return ix.desc
}

// IndexDocument returns the existence entries of a single physical
// document, in field order. No entries are returned if the descriptor is
// disabled. Errors from enumerating the fields are returned unmodified.
func (ix *Indexer) IndexDocument(doc Fields) ([]Entry, error) {
	paths, err := dedupPaths(doc)
	if err != nil {
		return nil, err
	}
	if !ix.desc.Enabled() {
		return nil, nil
	}
	name := ix.desc.Name()
	var entries []Entry
	for _, path := range paths {
		for prefix := range fieldpath.Prefixes(path) {
			entries = append(entries, Entry{Field: name, Prefix: prefix})
		}
	}
	return entries, nil
}

// IndexRecord indexes every physical document of a record independently.
// The result is aligned with rec.Docs.
func (ix *Indexer) IndexRecord(rec document.Record) ([][]Entry, error) {
	res := make([][]Entry, 0, len(rec.Docs))
	for _, doc := range rec.Docs {
		entries, err := ix.IndexDocument(doc)
		if err != nil {
			return nil, err
		}
		res = append(res, entries)
	}
	return res, nil
}

// dedupPaths collapses runs of the same path. Repeats that are not adjacent
// are kept.
func dedupPaths(doc Fields) ([]string, error) {
	var paths []string
	err := doc.Each(func(f document.Field) error {
		if f.Path == "" {
			return fmt.Errorf("existence indexing: %w", fieldpath.ErrEmptyPath)
		}
		if n := len(paths); n > 0 && paths[n-1] == f.Path {
			return nil
		}
		paths = append(paths, f.Path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
