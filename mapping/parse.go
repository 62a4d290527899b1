package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://strata.local/schema/mapping.json"

// Other top-level properties belong to other fields and are ignored here.
const schemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"_field_names": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"enabled": {"type": "boolean"},
				"index": {"type": "boolean"},
				"store": {"type": "boolean"},
				"analyzer": {"type": "string", "minLength": 1},
				"search_analyzer": {"type": "string", "minLength": 1}
			}
		}
	}
}`

var mappingSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

type fieldNamesNode struct {
	Enabled        *bool   `json:"enabled"`
	Index          *bool   `json:"index"`
	Store          *bool   `json:"store"`
	Analyzer       *string `json:"analyzer"`
	SearchAnalyzer *string `json:"search_analyzer"`
}

type mappingNode struct {
	FieldNames *fieldNamesNode `json:"_field_names"`
}

// Parse reads the existence field settings from a mapping definition and
// freezes them into a descriptor. An empty definition yields the defaults.
//
// The use of deprecated options is returned as a list of deprecations; it
// does not fail parsing. The deprecated "index" toggle combined with an
// "enabled" setting it contradicts (index false with enabled true and
// nothing stored, or index true with enabled false) is a
// ConfigurationError.
func Parse(raw []byte) (*Descriptor, []Deprecation, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Defaults(), nil, nil
	}

	schema, err := mappingSchema()
	if err != nil {
		return nil, nil, fmt.Errorf("mapping schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("mapping parsing failed: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, nil, fmt.Errorf("mapping validation failed: %w", err)
	}

	var node mappingNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, nil, fmt.Errorf("mapping parsing failed: %w", err)
	}

	b := NewBuilder()
	var deprecations []Deprecation
	if fn := node.FieldNames; fn != nil {
		if fn.Index != nil {
			deprecations = append(deprecations, b.Index(*fn.Index))
			if err := indexConflict(fn); err != nil {
				return nil, deprecations, err
			}
		}
		if fn.Store != nil {
			b.Stored(*fn.Store)
		}
		if fn.Analyzer != nil || fn.SearchAnalyzer != nil {
			index := KeywordAnalyzer
			if fn.Analyzer != nil {
				index = *fn.Analyzer
			}
			search := index
			if fn.SearchAnalyzer != nil {
				search = *fn.SearchAnalyzer
			}
			b.Analyzers(index, search)
		}
		if fn.Enabled != nil {
			b.Enabled(*fn.Enabled)
		}
	}

	d, err := b.Freeze()
	if err != nil {
		return nil, deprecations, err
	}
	return d, deprecations, nil
}

func indexConflict(fn *fieldNamesNode) error {
	if fn.Enabled == nil {
		return nil
	}
	stored := fn.Store != nil && *fn.Store
	if *fn.Index == *fn.Enabled || (*fn.Enabled && stored) {
		return nil
	}
	return &ConfigurationError{
		Attribute: "index",
		Reason:    fmt.Sprintf("index=%t contradicts enabled=%t", *fn.Index, *fn.Enabled),
	}
}
