// Package document holds the flattened form of indexed documents and the
// parser producing it from JSON.
package document

// Field is a single value at a dotted path
type Field struct {
	Path  string
	Value any
}

// Document is an ordered list of fields, as produced by the parser. The same
// path may appear several times, e.g. once per array element.
type Document struct {
	Fields []Field
}

// Each calls fn for every field in order, stopping at the first error,
// which is returned as is
func (d Document) Each(fn func(Field) error) error {
	for _, f := range d.Fields {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns the field paths in order, repeats included
func (d Document) Paths() []string {
	paths := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		paths = append(paths, f.Path)
	}
	return paths
}

// Record is a logical record: the parent document followed by the documents
// created for objects under nested paths
type Record struct {
	ID     string
	Source map[string]any
	Docs   []Document
}

// Parent returns the parent document
func (r Record) Parent() Document {
	if len(r.Docs) == 0 {
		return Document{}
	}
	return r.Docs[0]
}

// Nested returns the nested child documents
func (r Record) Nested() []Document {
	if len(r.Docs) < 2 {
		return nil
	}
	return r.Docs[1:]
}
