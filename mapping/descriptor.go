package mapping

import (
	"fmt"

	"github.com/ridge/tj"
)

// Name is the reserved name of the existence field
const Name = "_field_names"

// TypeName is the content type reported for the existence field
const TypeName = "_field_names"

// KeywordAnalyzer keeps the whole value as a single term
const KeywordAnalyzer = "keyword"

// IndexOptions tells what the inverted index records for a field
type IndexOptions int

// IndexOptions values
const (
	IndexNone IndexOptions = iota // not indexed
	IndexDocs                     // document numbers only
)

// String implements fmt.Stringer
func (o IndexOptions) String() string {
	switch o {
	case IndexNone:
		return "none"
	case IndexDocs:
		return "docs"
	default:
		return fmt.Sprintf("IndexOptions(%d)", int(o))
	}
}

// Query is a term lookup against a single field
type Query struct {
	Field string
	Term  string
}

// Descriptor is the frozen configuration of the existence field.
// All methods are safe for concurrent use.
type Descriptor struct {
	name           string
	indexOptions   IndexOptions
	stored         bool
	tokenized      bool
	omitNorms      bool
	docValues      bool
	indexAnalyzer  string
	searchAnalyzer string
}

// Defaults returns a new descriptor with the default settings: indexed
// (document numbers only), not stored, not tokenized, keyword analysis
func Defaults() *Descriptor {
	d, err := NewBuilder().Freeze()
	if err != nil {
		panic(err) // defaults always pass validation
	}
	return d
}

// Name returns the field name entries are emitted under
func (d *Descriptor) Name() string {
	return d.name
}

// IndexOptions returns what is indexed for the field
func (d *Descriptor) IndexOptions() IndexOptions {
	return d.indexOptions
}

// Stored tells whether the field values are stored with the document
func (d *Descriptor) Stored() bool {
	return d.stored
}

// Tokenized tells whether values are split into tokens. Always false for
// the existence field: a whole path is a single term.
func (d *Descriptor) Tokenized() bool {
	return d.tokenized
}

// OmitNorms tells whether length norms are omitted
func (d *Descriptor) OmitNorms() bool {
	return d.omitNorms
}

// DocValues tells whether columnar values are kept
func (d *Descriptor) DocValues() bool {
	return d.docValues
}

// IndexAnalyzer returns the analyzer applied at index time
func (d *Descriptor) IndexAnalyzer() string {
	return d.indexAnalyzer
}

// SearchAnalyzer returns the analyzer applied at search time
func (d *Descriptor) SearchAnalyzer() string {
	return d.searchAnalyzer
}

// Enabled tells whether existence entries are emitted at all
func (d *Descriptor) Enabled() bool {
	return d.indexOptions != IndexNone || d.stored
}

// TypeName returns the content type of the field
func (d *Descriptor) TypeName() string {
	return TypeName
}

// Clone returns an unfrozen builder initialized with the descriptor's
// settings. The descriptor itself is not affected by changes to the
// builder.
func (d *Descriptor) Clone() *Builder {
	return &Builder{d: *d}
}

// ExistsQuery always fails: the existence field cannot be checked for
// existence itself
func (d *Descriptor) ExistsQuery() (Query, error) {
	return Query{}, fmt.Errorf("cannot run exists query on %s: %w", d.name, ErrUnsupportedOperation)
}

// TermQuery always fails: lookups against the existence field are issued
// by the query layer only after rewriting an exists predicate
func (d *Descriptor) TermQuery(value any) (Query, error) {
	return Query{}, fmt.Errorf("term query on %s for %v is not supported: %w", d.name, value, ErrUnsupportedOperation)
}

// MappingJSON returns the descriptor as it appears in mapping output. Only
// the enabled state is reported, and only when defaults are requested;
// otherwise the result is nil.
func (d *Descriptor) MappingJSON(includeDefaults bool) tj.O {
	if !includeDefaults {
		return nil
	}
	return tj.O{d.name: tj.O{"enabled": d.Enabled()}}
}

// String implements fmt.Stringer
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (index=%s, stored=%t)", d.name, d.indexOptions, d.stored)
}
