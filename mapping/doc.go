// Package mapping describes the reserved _field_names field that backs the
// existence index.
//
// A Descriptor is created by a Builder and is immutable from then on:
//
//	b := mapping.NewBuilder()
//	b.Stored(true)
//	desc, err := b.Freeze()
//
// Freeze is the only place where the invariants are checked, and the only
// way to obtain a Descriptor. Because no method of Descriptor modifies it,
// a Descriptor can be read by any number of indexing goroutines without
// synchronization. To derive a modified copy, call Clone, adjust the
// returned Builder and freeze it again; the original is never affected.
//
// The field is never queried directly. ExistsQuery and TermQuery always
// fail with ErrUnsupportedOperation: a "field X exists" predicate must be
// rewritten by the query layer into a term lookup of X against the field
// named by Descriptor.Name.
package mapping
