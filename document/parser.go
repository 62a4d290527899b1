package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/ridge/strata/fieldpath"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// IDField is the source property holding the record ID. It is not indexed.
const IDField = "_id"

// ErrInvalidDocument is wrapped by all parsing errors
var ErrInvalidDocument = errors.New("invalid document")

// Parser turns JSON objects into records
type Parser struct {
	nested map[string]bool
}

// NewParser creates a parser. Objects found under the listed paths become
// separate nested documents instead of being flattened into their parent.
func NewParser(nested ...string) *Parser {
	p := &Parser{nested: map[string]bool{}}
	for _, path := range nested {
		if err := fieldpath.Validate(path); err != nil {
			panic(fmt.Errorf("invalid nested path: %w", err))
		}
		p.nested[path] = true
	}
	return p
}

// IsNested tells whether objects at the path become nested documents
func (p *Parser) IsNested(path string) bool {
	return p.nested[path]
}

// Parse decodes a JSON object into a record.
//
// Object keys are visited in sorted order. Array elements produce repeated
// fields with the same path, adjacent to each other. Nulls produce no
// fields. If the object has a string _id property, it becomes the record
// ID, otherwise a random ID is generated.
func (p *Parser) Parse(raw []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var source map[string]any
	if err := dec.Decode(&source); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if source == nil {
		return Record{}, fmt.Errorf("%w: not an object", ErrInvalidDocument)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Record{}, fmt.Errorf("%w: trailing data after object", ErrInvalidDocument)
	}
	return p.FromSource(source)
}

// FromSource builds a record from an already decoded object
func (p *Parser) FromSource(source map[string]any) (Record, error) {
	rec := Record{Source: source}
	if id, ok := source[IDField]; ok {
		s, ok := id.(string)
		if !ok || s == "" {
			return Record{}, fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidDocument, IDField)
		}
		rec.ID = s
	} else {
		rec.ID = uuid.New().String()
	}

	var parent Document
	var nested []Document
	if err := p.flattenObject(source, "", &parent, &nested); err != nil {
		return Record{}, err
	}
	rec.Docs = append([]Document{parent}, nested...)
	return rec, nil
}

func (p *Parser) flattenObject(obj map[string]any, prefix string, doc *Document, nested *[]Document) error {
	keys := maps.Keys(obj)
	slices.Sort(keys)
	for _, key := range keys {
		if prefix == "" && key == IDField {
			continue
		}
		if key == "" {
			return fmt.Errorf("%w: empty property name under %q", ErrInvalidDocument, prefix)
		}
		if strings.ContainsRune(key, fieldpath.Separator) {
			return fmt.Errorf("%w: property name %q must not contain dots", ErrInvalidDocument, key)
		}
		if err := p.flattenValue(obj[key], fieldpath.Join(prefix, key), doc, nested); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) flattenValue(v any, path string, doc *Document, nested *[]Document) error {
	switch v := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if p.nested[path] {
			var child Document
			if err := p.flattenObject(v, path, &child, nested); err != nil {
				return err
			}
			*nested = append(*nested, child)
			return nil
		}
		return p.flattenObject(v, path, doc, nested)
	case []any:
		for _, elem := range v {
			if err := p.flattenValue(elem, path, doc, nested); err != nil {
				return err
			}
		}
		return nil
	default:
		doc.Fields = append(doc.Fields, Field{Path: path, Value: v})
		return nil
	}
}

// Extract returns the value at a dotted path inside a decoded object.
// Arrays of objects on the way are traversed, collecting the values found
// in each element.
func Extract(source map[string]any, path string) (any, bool) {
	var cur any = source
	for segment := range fieldpath.Segments(path) {
		var ok bool
		cur, ok = step(cur, segment)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func step(v any, segment string) (any, bool) {
	switch v := v.(type) {
	case map[string]any:
		res, ok := v[segment]
		return res, ok
	case []any:
		var res []any
		for _, elem := range v {
			if r, ok := step(elem, segment); ok {
				res = append(res, r)
			}
		}
		return res, len(res) > 0
	default:
		return nil, false
	}
}
