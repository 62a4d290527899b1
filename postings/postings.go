// Package postings is the inverted index behind the existence field: for
// each (field, term) pair it keeps the set of document numbers containing
// the term.
package postings

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Index maps terms to document number sets.
// Safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	fields map[string]map[string]*roaring.Bitmap // field -> term -> docs
}

// New creates an empty index
func New() *Index {
	return &Index{fields: map[string]map[string]*roaring.Bitmap{}}
}

// Add records that the document contains the term. Adding the same pair
// twice has no further effect.
func (ix *Index) Add(field, term string, doc uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	terms := ix.fields[field]
	if terms == nil {
		terms = map[string]*roaring.Bitmap{}
		ix.fields[field] = terms
	}
	bm := terms[term]
	if bm == nil {
		bm = roaring.New()
		terms[term] = bm
	}
	bm.Add(doc)
}

// Lookup returns the documents containing the term. The result is a copy
// owned by the caller.
func (ix *Index) Lookup(field, term string) *roaring.Bitmap {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if bm := ix.fields[field][term]; bm != nil {
		return bm.Clone()
	}
	return roaring.New()
}

// Count returns the number of documents containing the term
func (ix *Index) Count(field, term string) uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if bm := ix.fields[field][term]; bm != nil {
		return bm.GetCardinality()
	}
	return 0
}

// Remove deletes the documents from all posting lists. Terms left without
// documents are dropped.
func (ix *Index) Remove(docs ...uint32) {
	if len(docs) == 0 {
		return
	}
	removed := roaring.BitmapOf(docs...)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for field, terms := range ix.fields {
		for term, bm := range terms {
			bm.AndNot(removed)
			if bm.IsEmpty() {
				delete(terms, term)
			}
		}
		if len(terms) == 0 {
			delete(ix.fields, field)
		}
	}
}

// Terms returns the terms of the field in sorted order
func (ix *Index) Terms(field string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	terms := maps.Keys(ix.fields[field])
	slices.Sort(terms)
	return terms
}
