package graph

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// documentSchema is the JSON schema for graph YAML documents. Embedded
// so validation works without any installation footprint.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "gonodes graph document",
  "type": "object",
  "required": ["name", "nodes"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "type"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "params": {"type": "object"},
          "breakpoint": {"type": "boolean"}
        }
      }
    },
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "additionalProperties": false,
        "properties": {
          "from": {"type": "string", "minLength": 1},
          "from_pin": {"type": "integer", "minimum": 0},
          "to": {"type": "string", "minLength": 1},
          "to_pin": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// ValidateDocument validates graph YAML bytes against the document
// schema. It checks document shape only; structural rules (type names,
// pin kinds, cycles) are enforced by Parse and Compile.
func ValidateDocument(yamlBytes []byte) error {
	if len(yamlBytes) == 0 {
		return errors.New("graph: empty YAML input")
	}

	var doc interface{}
	if err := yaml.Unmarshal(yamlBytes, &doc); err != nil {
		return fmt.Errorf("graph: failed to parse YAML for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("graph: schema validation error: %w", err)
	}

	if !result.Valid() {
		var msg string
		for i, desc := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += fmt.Sprintf("%s: %s", desc.Field(), desc.Description())
		}
		return fmt.Errorf("graph: schema validation failed: %s", msg)
	}

	return nil
}
