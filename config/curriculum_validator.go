package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/saja-boys/jinwoo-server/mission"
)

// CurriculumValidator validates a loaded curriculum against the schema.
type CurriculumValidator struct {
	schema *gojsonschema.Schema
}

// NewCurriculumValidator compiles the embedded curriculum schema.
func NewCurriculumValidator() (*CurriculumValidator, error) {
	schemaLoader := gojsonschema.NewStringLoader(curriculumSchema)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to compile curriculum schema: %w", err)
	}
	return &CurriculumValidator{schema: schema}, nil
}

// Validate checks the curriculum: at least one stage, and every stage carries
// a prompt, a non-empty keyword set, and a non-empty fallback list.
func (cv *CurriculumValidator) Validate(curriculum *mission.Curriculum) error {
	doc, err := json.Marshal(curriculum)
	if err != nil {
		return fmt.Errorf("failed to marshal curriculum: %w", err)
	}

	result, err := cv.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, fmt.Sprintf("- %s", e))
		}
		return fmt.Errorf("curriculum validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}

const curriculumSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["persona", "stages"],
  "properties": {
    "persona": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "group": {"type": "string"}
      }
    },
    "stages": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["prompt", "keywords", "fallbacks"],
        "properties": {
          "prompt": {"type": "string", "minLength": 1},
          "keywords": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          },
          "fallbacks": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`
