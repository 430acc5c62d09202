package curriculum

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const bundleSchemaURL = "schema://curriculum-bundle.json"

// bundleSchema is the JSON schema every curriculum bundle must satisfy.
const bundleSchema = `{
  "type": "object",
  "required": ["atoms", "questions"],
  "properties": {
    "atoms": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "axis"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "axis": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "prerequisiteIds": {"type": "array", "items": {"type": "string"}},
          "secondarySkills": {"type": "array", "items": {"type": "string"}}
        }
      }
    },
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "atoms"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "source": {"type": "string"},
          "difficultyLevel": {"type": "string"},
          "atoms": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["atomId", "relevance"],
              "properties": {
                "atomId": {"type": "string", "minLength": 1},
                "relevance": {"enum": ["primary", "secondary"]}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// ErrInvalidBundle indicates a curriculum bundle that is not valid JSON or
// does not conform to the bundle schema.
type ErrInvalidBundle struct {
	Err error
}

func (e *ErrInvalidBundle) Error() string {
	return fmt.Sprintf("invalid curriculum bundle: %v", e.Err)
}

func (e *ErrInvalidBundle) Unwrap() error { return e.Err }

func bundleValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(bundleSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(bundleSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(bundleSchemaURL)
	})
	return compiled, compileErr
}

// validateBundle checks raw JSON against the bundle schema.
func validateBundle(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidBundle{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := bundleValidator()
	if err != nil {
		return fmt.Errorf("compile bundle schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return &ErrInvalidBundle{Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}
