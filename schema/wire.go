package schema

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// RequestSchema is the JSON Schema of a request envelope: one Call or
// Notification, or an array of them.
const RequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "minirpc request",
  "definitions": {
    "id": {"type": "integer", "minimum": 0},
    "method": {"type": "string"},
    "params": {"type": ["array", "object"]},
    "call": {
      "type": "object",
      "required": ["id", "method", "params"],
      "properties": {
        "id": {"$ref": "#/definitions/id"},
        "method": {"$ref": "#/definitions/method"},
        "params": {"$ref": "#/definitions/params"}
      },
      "additionalProperties": false
    },
    "notification": {
      "type": "object",
      "required": ["method", "params"],
      "properties": {
        "method": {"$ref": "#/definitions/method"},
        "params": {"$ref": "#/definitions/params"}
      },
      "additionalProperties": false
    },
    "payload": {
      "oneOf": [
        {"$ref": "#/definitions/call"},
        {"$ref": "#/definitions/notification"}
      ]
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/payload"},
    {"type": "array", "items": {"$ref": "#/definitions/payload"}}
  ]
}`

// ResponseSchema is the JSON Schema of a response envelope: one Failure or
// Success, or an array of them.
const ResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "minirpc response",
  "definitions": {
    "id": {"type": "integer", "minimum": 0},
    "error": {
      "type": "object",
      "required": ["code", "message"],
      "properties": {
        "code": {"type": "integer"},
        "message": {"type": "string"}
      },
      "additionalProperties": false
    },
    "failure": {
      "type": "object",
      "required": ["error"],
      "properties": {
        "error": {"$ref": "#/definitions/error"},
        "id": {"anyOf": [{"$ref": "#/definitions/id"}, {"type": "null"}]}
      },
      "additionalProperties": false
    },
    "success": {
      "type": "object",
      "required": ["id", "result"],
      "properties": {
        "id": {"$ref": "#/definitions/id"},
        "result": {}
      },
      "additionalProperties": false
    },
    "payload": {
      "oneOf": [
        {"$ref": "#/definitions/failure"},
        {"$ref": "#/definitions/success"}
      ]
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/payload"},
    {"type": "array", "items": {"$ref": "#/definitions/payload"}}
  ]
}`

// Validator checks wire documents against the request and response schemas
// and, optionally, the params of individual methods.
//
// A Validator is safe for concurrent use.
type Validator struct {
	request  *gojsonschema.Schema
	response *gojsonschema.Schema
	params   map[string]*gojsonschema.Schema
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*validatorConfig)

type validatorConfig struct {
	params map[string]*Schema
}

// WithParams registers the params schema for method.
func WithParams(method string, s *Schema) ValidatorOption {
	return func(c *validatorConfig) {
		c.params[method] = s
	}
}

// NewValidator compiles the wire schemas and any registered params schemas.
func NewValidator(opts ...ValidatorOption) (*Validator, error) {
	cfg := &validatorConfig{params: make(map[string]*Schema)}
	for _, opt := range opts {
		opt(cfg)
	}

	request, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(RequestSchema))
	if err != nil {
		return nil, fmt.Errorf("schema: compile request schema: %w", err)
	}
	response, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(ResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("schema: compile response schema: %w", err)
	}

	v := &Validator{
		request:  request,
		response: response,
		params:   make(map[string]*gojsonschema.Schema, len(cfg.params)),
	}
	for method, s := range cfg.params {
		compiled, err := s.Compile()
		if err != nil {
			return nil, fmt.Errorf("params of %q: %w", method, err)
		}
		v.params[method] = compiled
	}
	return v, nil
}

// ValidateRequest checks data against RequestSchema.
func (v *Validator) ValidateRequest(data []byte) error {
	return validate(v.request, data)
}

// ValidateResponse checks data against ResponseSchema.
func (v *Validator) ValidateResponse(data []byte) error {
	return validate(v.response, data)
}

// HasParams reports whether a params schema is registered for method.
func (v *Validator) HasParams(method string) bool {
	_, ok := v.params[method]
	return ok
}

// ValidateParams checks params against the schema registered for method.
// Methods without a registered schema always pass.
func (v *Validator) ValidateParams(method string, params json.RawMessage) error {
	compiled, ok := v.params[method]
	if !ok {
		return nil
	}
	return validate(compiled, params)
}
