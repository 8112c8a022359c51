package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// configSchema is the JSON Schema every loaded config file must satisfy.
// Validation runs before unmarshaling so typos in enum values or wrong
// types fail loudly instead of silently falling back to defaults.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "analysis": {
      "type": "object",
      "properties": {
        "depth": {"enum": ["quick", "standard", "deep"]},
        "max_file_size_for_content_scan": {"type": "integer", "minimum": 0},
        "workers": {"type": "integer", "minimum": 0}
      },
      "additionalProperties": false
    },
    "exclude": {
      "type": "object",
      "properties": {
        "patterns": {"type": "array", "items": {"type": "string"}},
        "extensions": {"type": "array", "items": {"type": "string"}},
        "dirs": {"type": "array", "items": {"type": "string"}},
        "gitignore": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "output": {
      "type": "object",
      "properties": {
        "format": {"enum": ["text", "json", "markdown", "toon"]},
        "color": {"type": "boolean"},
        "quiet": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "cache": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "dir": {"type": "string"},
        "ttl_hours": {"type": "integer", "minimum": 0}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(configSchema))
	if err != nil {
		panic(fmt.Sprintf("config schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("caliper-config.schema.json", doc); err != nil {
		panic(fmt.Sprintf("config schema: %v", err))
	}
	schema, err := compiler.Compile("caliper-config.schema.json")
	if err != nil {
		panic(fmt.Sprintf("config schema: %v", err))
	}
	return schema
}

// validateRaw checks a raw config map against the schema. The map is
// round-tripped through JSON so provider-specific value types (TOML
// integers, YAML aliases) normalize to the types the validator expects.
func validateRaw(raw map[string]any) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
