package shortcode

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

var directiveNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Validator checks directive definitions and coerces invocation parameters
// against their schema.
type Validator struct{}

// NewValidator returns a Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition requires a well formed name and aliases and a schema
// without blank, duplicate or untyped parameters.
func (v *Validator) ValidateDefinition(def interfaces.ShortcodeDefinition) error {
	err := validation.ValidateStruct(&def,
		validation.Field(&def.Name, validation.Required, validation.By(directiveName)),
		validation.Field(&def.Aliases, validation.Each(validation.By(directiveName))),
		validation.Field(&def.Schema, validation.By(schemaParams)),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, def.Name, err)
	}
	return nil
}

func directiveName(value any) error {
	name, _ := value.(string)
	if !directiveNamePattern.MatchString(directiveKey(name)) {
		return validation.NewError("maps.directive.name_invalid", "must start with a letter and contain only letters, digits, '-' or '_'")
	}
	return nil
}

func schemaParams(value any) error {
	schema, _ := value.(interfaces.ShortcodeSchema)
	seen := make(map[string]struct{}, len(schema.Params))
	for _, param := range schema.Params {
		name := directiveKey(param.Name)
		if name == "" {
			return validation.NewError("maps.directive.param_name_required", "parameter name is required")
		}
		if _, dup := seen[name]; dup {
			return validation.NewError("maps.directive.param_duplicate", fmt.Sprintf("parameter %q is declared twice", name))
		}
		seen[name] = struct{}{}

		switch param.Type {
		case interfaces.ShortcodeParamString,
			interfaces.ShortcodeParamInt,
			interfaces.ShortcodeParamBool,
			interfaces.ShortcodeParamArray,
			interfaces.ShortcodeParamURL:
		default:
			return validation.NewError("maps.directive.param_type_unknown", fmt.Sprintf("parameter %q has unknown type %q", name, param.Type))
		}
	}
	return nil
}

// CoerceParams matches supplied parameters to the schema case-insensitively,
// applies defaults, coerces declared types and enforces required ones.
// Undeclared parameters pass through with lower-case keys when the schema
// allows them.
func (v *Validator) CoerceParams(def interfaces.ShortcodeDefinition, supplied map[string]any) (map[string]any, error) {
	if err := v.ValidateDefinition(def); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(def.Schema.Params)+len(supplied))
	declared := make(map[string]interfaces.ShortcodeParam, len(def.Schema.Params))
	for _, param := range def.Schema.Params {
		key := directiveKey(param.Name)
		declared[key] = param
		if value, ok := def.Schema.Defaults[param.Name]; ok {
			out[key] = value
		} else if param.Default != nil {
			out[key] = param.Default
		}
	}

	for rawKey, value := range supplied {
		key := directiveKey(rawKey)
		param, ok := declared[key]
		if !ok {
			if !def.Schema.AllowUnknown {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, rawKey)
			}
			out[key] = value
			continue
		}
		coerced, err := coerceValue(param.Type, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParameterType, rawKey, err)
		}
		if param.Validate != nil {
			if err := param.Validate(coerced); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrParameterType, rawKey, err)
			}
		}
		out[key] = coerced
	}

	for key, param := range declared {
		if _, ok := out[key]; param.Required && !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingParameter, param.Name)
		}
	}
	return out, nil
}

func coerceValue(paramType interfaces.ShortcodeParamType, value any) (any, error) {
	switch paramType {
	case interfaces.ShortcodeParamString:
		return fmt.Sprint(value), nil
	case interfaces.ShortcodeParamInt:
		return coerceInt(value)
	case interfaces.ShortcodeParamBool:
		return coerceBool(value)
	case interfaces.ShortcodeParamArray:
		return coerceArray(value)
	case interfaces.ShortcodeParamURL:
		raw := strings.TrimSpace(fmt.Sprint(value))
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", paramType)
	}
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
		return false, fmt.Errorf("cannot convert %q to bool", v)
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// coerceArray splits comma separated lists, the way layers are written in a
// directive.
func coerceArray(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case string:
		out := []any{}
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to array", value)
	}
}
