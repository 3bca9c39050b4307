// Package schema provides JSON Schema documents for the minirpc wire shapes
// and JSON Schema generation from Go types.
//
// # Wire Validation
//
// RequestSchema and ResponseSchema describe the envelopes accepted on the
// wire. A Validator compiles them once and reports every violation with its
// location:
//
//	v, err := schema.NewValidator()
//	if err := v.ValidateRequest(data); err != nil {
//	    var verrs schema.ValidationErrors
//	    errors.As(err, &verrs)
//	    ...
//	}
//
// JSON Schema cannot tell 1 from 1.0, so the protocol decoder stays the
// authority on ids and codes. The schemas serve diagnostics.
//
// # Params Schemas
//
// A Validator can also check the params of individual methods:
//
//	type SumParams struct {
//	    A int `json:"a" jsonschema:"required"`
//	    B int `json:"b" jsonschema:"required"`
//	}
//
//	params, _ := schema.GenerateParams(SumParams{})
//	v, err := schema.NewValidator(schema.WithParams("sum", params))
//	err = v.ValidateParams("sum", json.RawMessage(`{"a":1}`)) // b: required
//
// # Supported Types
//
//   - Structs: closed objects with one property per exported field
//   - Strings: string
//   - Signed integers: integer; unsigned integers add minimum 0
//   - Floats: number
//   - Booleans: boolean
//   - Slices: array; arrays also fix minItems and maxItems
//   - Maps with string keys: object
//   - Pointers: dereferenced
//
// # Struct Tags
//
//	type Example struct {
//	    Name  string `json:"name" jsonschema:"required,description=Display name"`
//	    Level string `json:"level" jsonschema:"enum=debug|info|warn"`
//	    Retry int    `json:"retry" jsonschema:"minimum=0,maximum=5"`
//	    Skip  string `json:"-"`
//	}
package schema
