package config

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// validateAgainstSchema decodes raw into a generic value and validates
// it against schema before the caller unmarshals raw into a concrete
// Go struct. This gives every one of the three JSON wire formats
// mandated by spec.md §6 (library config, builder config, harness
// config) a schema-level check with a precise pointer to the offending
// key, rather than only the opaque error encoding/json would produce
// on its own.
func validateAgainstSchema(schema *jsonschema.Schema, raw []byte) error {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	return nil
}

func intPtr(v int) *int { return &v }

var libraryConfigSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"name", "directory", "traversals", "target"},
	Properties: map[string]*jsonschema.Schema{
		"config_version":  {Type: "string"},
		"name":            {Type: "string", MinLength: intPtr(1)},
		"directory":       {Type: "string", MinLength: intPtr(1)},
		"compiler_flags":  {Type: "string"},
		"traversals":      {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		"target":          {Type: "string", MinLength: intPtr(1)},
	},
}

var builderConfigSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"libs", "functions"},
	Properties: map[string]*jsonschema.Schema{
		"libs":             {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		"wrappers":         {Type: "string"},
		"wrappers_header":  {Type: "string"},
		"functions": {
			Type: "object",
			AdditionalProperties: &jsonschema.Schema{
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
	},
}

var harnessConfigSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"libs", "general_max_array_width", "wordsize"},
	Properties: map[string]*jsonschema.Schema{
		"libs":                    {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		"general_max_array_width": {Type: "integer"},
		"wordsize":                {Type: "integer"},
		"verifier":                {Type: "string", Enum: []any{"new", "traditional"}},
		"symex": {
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"klee_headers": {Type: "string"},
			},
		},
		"fuzzing": {Type: "object"},
	},
}
