// Package validation checks the JSON payload a map hands to the client
// script against a JSON schema.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed map_payload.schema.json
var builtinSchema []byte

const (
	SchemaInvalidCode  = "MAPS_SCHEMA_INVALID"
	PayloadInvalidCode = "MAPS_PAYLOAD_INVALID"

	schemaURL = "map_payload.schema.json"
)

// ErrSchemaInvalid is returned, wrapped, when a schema cannot be read or
// compiled.
var ErrSchemaInvalid = goerrors.New("map payload schema invalid", goerrors.CategoryInternal).WithTextCode(SchemaInvalidCode)

// PayloadValidator holds a compiled schema. It is safe for concurrent use.
type PayloadValidator struct {
	schema *jsonschema.Schema
}

// DefaultPayloadValidator compiles the embedded map payload schema.
func DefaultPayloadValidator() (*PayloadValidator, error) {
	return NewPayloadValidator(builtinSchema)
}

// LoadPayloadValidator compiles the schema stored at path.
func LoadPayloadValidator(path string) (*PayloadValidator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSchemaInvalid, path, err)
	}
	return NewPayloadValidator(data)
}

// NewPayloadValidator compiles a Draft 2020-12 schema document.
func NewPayloadValidator(schema []byte) (*PayloadValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &PayloadValidator{schema: compiled}, nil
}

// Validate checks payload as the client will receive it: Go values are
// round-tripped through JSON first so typed records validate like objects.
// Failures are validation errors with one field error per schema violation,
// keyed by JSON pointer.
func (v *PayloadValidator) Validate(payload map[string]any) error {
	if v == nil || v.schema == nil {
		return nil
	}
	if payload == nil {
		payload = map[string]any{}
	}
	instance, err := asJSON(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode map payload").WithTextCode(PayloadInvalidCode)
	}
	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	invalid := goerrors.NewValidation("map payload does not match schema", fieldErrors(err)...).
		WithTextCode(PayloadInvalidCode)
	invalid.Source = err
	return invalid
}

// Issues returns the field errors carried by err, or nil.
func Issues(err error) goerrors.ValidationErrors {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.AllValidationErrors()
	}
	return nil
}

func asJSON(payload map[string]any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// fieldErrors flattens the leaves of a schema error tree.
func fieldErrors(err error) goerrors.ValidationErrors {
	var root *jsonschema.ValidationError
	if !errors.As(err, &root) {
		return goerrors.ValidationErrors{{Field: "#", Message: err.Error()}}
	}
	var out goerrors.ValidationErrors
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) > 0 {
			for _, cause := range node.Causes {
				walk(cause)
			}
			return
		}
		out = append(out, goerrors.FieldError{
			Field:   "#" + strings.TrimPrefix(strings.TrimSpace(node.InstanceLocation), "#"),
			Message: strings.TrimSpace(node.Message),
		})
	}
	walk(root)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
