// Package strata indexes JSON records for existence queries over
// hierarchical field paths and assembles nested values from them.
//
// # Field paths
//
// A field path names a value inside a record by the dot-separated chain of
// property names leading to it, such as "user.address.city". Package
// fieldpath decomposes a path into its cumulative ancestor prefixes:
// "user", "user.address", "user.address.city".
//
// # Existence index
//
// Every document gets entries under the reserved "_field_names" field, one
// per prefix of each of its field paths. A query for "does the record have
// user.address" becomes a term lookup of "user.address" against that
// field, and it matches records with any field below the object as well.
// The behavior of the field is described by a frozen mapping.Descriptor;
// package existence turns documents into entries.
//
// Records may hold nested objects indexed as separate child documents. A
// record matches when the parent or any of its children does.
//
// # Nested values
//
// Package collect builds row-driven value trees: objects whose children
// are constants, functions of the current row or other objects. The engine
// uses them to project dotted field lists out of stored records as nested
// JSON objects.
//
// # Running
//
// Package engine ties parsing, indexing and storage together. Package
// server exposes it over HTTP, and cmd/strata runs the server.
package strata
