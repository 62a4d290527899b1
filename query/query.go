// Package query rewrites "field exists" predicates into lookups against the
// existence field.
package query

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ridge/strata/fieldpath"
	"github.com/ridge/strata/mapping"
	"github.com/ridge/strata/postings"
)

// ErrExistenceDisabled is returned when an exists predicate cannot be
// answered because the existence field is disabled. The caller should fall
// back to another mechanism or reject the query.
var ErrExistenceDisabled = errors.New("existence index is disabled")

// Rewriter answers exists predicates from the postings of the existence
// field. Safe for concurrent use.
type Rewriter struct {
	desc     *mapping.Descriptor
	postings *postings.Index
}

// NewRewriter creates a rewriter
func NewRewriter(desc *mapping.Descriptor, postings *postings.Index) *Rewriter {
	return &Rewriter{desc: desc, postings: postings}
}

// Rewrite turns "field exists" into a term query against the existence
// field. Because every ancestor prefix of every indexed path is a term, the
// lookup of an object path finds documents with any field below it.
func (r *Rewriter) Rewrite(field string) (mapping.Query, error) {
	if field == r.desc.Name() {
		return r.desc.ExistsQuery()
	}
	if err := fieldpath.Validate(field); err != nil {
		return mapping.Query{}, fmt.Errorf("exists query: %w", err)
	}
	if !r.desc.Enabled() {
		return mapping.Query{}, fmt.Errorf("exists query on %s: %w", field, ErrExistenceDisabled)
	}
	return mapping.Query{Field: r.desc.Name(), Term: field}, nil
}

// Exists returns the numbers of the physical documents containing the field
// or any field below it
func (r *Rewriter) Exists(field string) (*roaring.Bitmap, error) {
	q, err := r.Rewrite(field)
	if err != nil {
		return nil, err
	}
	return r.postings.Lookup(q.Field, q.Term), nil
}

// Missing returns the documents out of all that do not contain the field
func (r *Rewriter) Missing(field string, all *roaring.Bitmap) (*roaring.Bitmap, error) {
	exists, err := r.Exists(field)
	if err != nil {
		return nil, err
	}
	return roaring.AndNot(all, exists), nil
}

// Term runs a term query against a field. Term queries against the
// existence field itself are rejected.
func (r *Rewriter) Term(field string, value any) (*roaring.Bitmap, error) {
	if field == r.desc.Name() {
		_, err := r.desc.TermQuery(value)
		return nil, err
	}
	return nil, fmt.Errorf("term query on %s: only existence queries are supported: %w", field, mapping.ErrUnsupportedOperation)
}
