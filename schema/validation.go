package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema type constants.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

const rootField = "(root)"

// ValidationError represents a schema validation error.
type ValidationError struct {
	Path    string // JSON path to the invalid field (e.g., "error.code", "0.params")
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Compile prepares the schema for repeated validation.
func (s *Schema) Compile() (*gojsonschema.Schema, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal: %w", err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema: compile: %w", err)
	}
	return compiled, nil
}

// Validate validates JSON data against a schema.
// Returns nil if valid, or ValidationErrors if invalid.
func (s *Schema) Validate(data json.RawMessage) error {
	compiled, err := s.Compile()
	if err != nil {
		return err
	}
	return validate(compiled, data)
}

// ValidateValue validates a Go value against a schema.
func (s *Schema) ValidateValue(value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("value is not JSON: %s", err)}
	}
	return s.Validate(data)
}

func validate(compiled *gojsonschema.Schema, data []byte) error {
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %s", err)}
	}
	if result.Valid() {
		return nil
	}

	errs := make(ValidationErrors, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		path := desc.Field()
		if path == rootField {
			path = ""
		}
		errs = append(errs, &ValidationError{
			Path:    path,
			Message: desc.Description(),
		})
	}
	return errs
}
