// Package schema provides JSON Schema documents for the minirpc wire shapes
// and JSON Schema generation from Go types.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrNotParams is returned by GenerateParams for types that do not encode
// as a JSON array or object.
var ErrNotParams = errors.New("params type must encode as an array or an object")

// Schema represents a JSON Schema.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Description          string             `json:"description,omitempty"`
	Default              any                `json:"default,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	MinItems             *int               `json:"minItems,omitempty"`
	MaxItems             *int               `json:"maxItems,omitempty"`
}

// Generate creates a JSON Schema from a Go value.
func Generate(v any) (*Schema, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, fmt.Errorf("schema: cannot generate from nil")
	}
	return generateFromType(t)
}

// GenerateFromType creates a JSON Schema from a reflect.Type.
func GenerateFromType(t reflect.Type) (*Schema, error) {
	return generateFromType(t)
}

// GenerateParams creates the schema of a method's params from a Go value.
// Structs yield a closed object schema; slices and arrays yield an array
// schema, fixed-length for arrays.
func GenerateParams(v any) (*Schema, error) {
	s, err := Generate(v)
	if err != nil {
		return nil, err
	}
	if s.Type != typeObject && s.Type != typeArray {
		return nil, fmt.Errorf("schema: %T: %w", v, ErrNotParams)
	}
	return s, nil
}

func generateFromType(t reflect.Type) (*Schema, error) {
	// Handle pointers
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return generateStructSchema(t)
	case reflect.String:
		return &Schema{Type: typeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Schema{Type: typeInteger}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		zero := 0.0
		return &Schema{Type: typeInteger, Minimum: &zero}, nil
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: typeNumber}, nil
	case reflect.Bool:
		return &Schema{Type: typeBoolean}, nil
	case reflect.Slice:
		return generateArraySchema(t)
	case reflect.Array:
		s, err := generateArraySchema(t)
		if err != nil {
			return nil, err
		}
		n := t.Len()
		s.MinItems, s.MaxItems = &n, &n
		return s, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("schema: map key %s is not a string", t.Key())
		}
		return &Schema{Type: typeObject}, nil
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return nil, fmt.Errorf("schema: %s cannot be encoded as JSON", t)
	default:
		return &Schema{}, nil
	}
}

func generateStructSchema(t reflect.Type) (*Schema, error) {
	closed := false
	schema := &Schema{
		Type:                 typeObject,
		Properties:           make(map[string]*Schema),
		AdditionalProperties: &closed,
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Get JSON field name
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				fieldName = parts[0]
			}
		}

		fieldSchema, err := generateFromType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if err := parseJSONSchemaTag(field.Tag.Get("jsonschema"), fieldSchema, &schema.Required, fieldName); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		schema.Properties[fieldName] = fieldSchema
	}

	return schema, nil
}

func generateArraySchema(t reflect.Type) (*Schema, error) {
	itemSchema, err := generateFromType(t.Elem())
	if err != nil {
		return nil, err
	}

	return &Schema{
		Type:  typeArray,
		Items: itemSchema,
	}, nil
}

// parseJSONSchemaTag applies a jsonschema struct tag such as
// `jsonschema:"required,minimum=1,enum=a|b"`.
func parseJSONSchemaTag(tag string, schema *Schema, required *[]string, fieldName string) error {
	if tag == "" {
		return nil
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, value, _ := strings.Cut(part, "=")

		switch key {
		case "required":
			*required = append(*required, fieldName)
		case "description":
			schema.Description = value
		case "minimum", "maximum":
			n, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("jsonschema %s: %w", key, err)
			}
			if key == "minimum" {
				schema.Minimum = &n
			} else {
				schema.Maximum = &n
			}
		case "enum":
			for _, v := range strings.Split(value, "|") {
				schema.Enum = append(schema.Enum, v)
			}
		}
	}
	return nil
}
