package mapping

import "errors"

// Builder accumulates settings for a Descriptor. A builder is frozen once;
// changes made after that are recorded as configuration errors and fail
// the next Freeze.
type Builder struct {
	d      Descriptor
	frozen bool
	errs   []error
}

// NewBuilder returns a builder with the default settings
func NewBuilder() *Builder {
	return &Builder{
		d: Descriptor{
			name:           Name,
			indexOptions:   IndexDocs,
			omitNorms:      true,
			indexAnalyzer:  KeywordAnalyzer,
			searchAnalyzer: KeywordAnalyzer,
		},
	}
}

func (b *Builder) set(attribute string, fn func(d *Descriptor)) *Builder {
	if b.frozen {
		b.errs = append(b.errs, &ConfigurationError{Attribute: attribute, Reason: "descriptor already frozen"})
		return b
	}
	fn(&b.d)
	return b
}

// Name sets the field name
func (b *Builder) Name(name string) *Builder {
	return b.set("name", func(d *Descriptor) { d.name = name })
}

// IndexOptions sets what is indexed
func (b *Builder) IndexOptions(o IndexOptions) *Builder {
	return b.set("index_options", func(d *Descriptor) { d.indexOptions = o })
}

// Stored sets whether values are stored
func (b *Builder) Stored(stored bool) *Builder {
	return b.set("store", func(d *Descriptor) { d.stored = stored })
}

// Tokenized sets whether values are tokenized
func (b *Builder) Tokenized(tokenized bool) *Builder {
	return b.set("tokenized", func(d *Descriptor) { d.tokenized = tokenized })
}

// OmitNorms sets whether norms are omitted
func (b *Builder) OmitNorms(omit bool) *Builder {
	return b.set("omit_norms", func(d *Descriptor) { d.omitNorms = omit })
}

// DocValues sets whether doc values are kept
func (b *Builder) DocValues(docValues bool) *Builder {
	return b.set("doc_values", func(d *Descriptor) { d.docValues = docValues })
}

// Analyzers sets the index-time and search-time analyzers
func (b *Builder) Analyzers(index, search string) *Builder {
	return b.set("analyzer", func(d *Descriptor) {
		d.indexAnalyzer = index
		d.searchAnalyzer = search
	})
}

// Enabled turns emission of existence entries on or off. Disabling clears
// both indexing and storing.
func (b *Builder) Enabled(enabled bool) *Builder {
	return b.set("enabled", func(d *Descriptor) {
		if enabled {
			if d.indexOptions == IndexNone && !d.stored {
				d.indexOptions = IndexDocs
			}
			return
		}
		d.indexOptions = IndexNone
		d.stored = false
	})
}

// Index is the deprecated boolean toggle for indexing. It is translated to
// IndexOptions: true means IndexDocs, false means IndexNone. The returned
// Deprecation must be reported to the user.
//
// Deprecated: use IndexOptions or Enabled.
func (b *Builder) Index(index bool) Deprecation {
	o := IndexNone
	if index {
		o = IndexDocs
	}
	b.IndexOptions(o)
	return Deprecation{Option: "index", Replacement: "enabled"}
}

// Freeze validates the settings and returns the immutable descriptor.
// A builder can only be frozen once.
func (b *Builder) Freeze() (*Descriptor, error) {
	if b.frozen {
		b.errs = append(b.errs, &ConfigurationError{Attribute: "descriptor", Reason: "already frozen"})
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	switch {
	case b.d.name == "":
		return nil, &ConfigurationError{Attribute: "name", Reason: "must not be empty"}
	case b.d.tokenized:
		return nil, &ConfigurationError{Attribute: "tokenized", Reason: "field names are indexed as whole terms"}
	case b.d.docValues:
		return nil, &ConfigurationError{Attribute: "doc_values", Reason: "not supported for " + b.d.name}
	case b.d.indexOptions != IndexNone && b.d.indexOptions != IndexDocs:
		return nil, &ConfigurationError{Attribute: "index_options", Reason: "unknown value " + b.d.indexOptions.String()}
	}
	b.frozen = true
	d := b.d
	return &d, nil
}
