package shortcode

import goerrors "github.com/goliatone/go-errors"

// Text codes carried by directive errors.
const (
	DuplicateCode    = "MAPS_DIRECTIVE_DUPLICATE"
	DefinitionCode   = "MAPS_DIRECTIVE_DEFINITION_INVALID"
	UnknownCode      = "MAPS_DIRECTIVE_UNKNOWN"
	ParameterCode    = "MAPS_DIRECTIVE_PARAMETER_INVALID"
	UnsafeOutputCode = "MAPS_DIRECTIVE_OUTPUT_UNSAFE"
	RenderFailedCode = "MAPS_DIRECTIVE_RENDER_FAILED"
)

var (
	// ErrDuplicateDefinition is returned when a directive name or alias is taken.
	ErrDuplicateDefinition = goerrors.New("directive name or alias already registered", goerrors.CategoryConflict).WithTextCode(DuplicateCode)
	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = goerrors.New("directive definition is invalid", goerrors.CategoryValidation).WithTextCode(DefinitionCode)
	// ErrUnknownDirective is returned when content invokes an unregistered directive.
	ErrUnknownDirective = goerrors.New("directive is not registered", goerrors.CategoryNotFound).WithTextCode(UnknownCode)
	// ErrUnknownParameter indicates the directive received an undeclared parameter.
	ErrUnknownParameter = goerrors.New("unknown directive parameter", goerrors.CategoryBadInput).WithTextCode(ParameterCode)
	// ErrMissingParameter indicates a required parameter was not provided.
	ErrMissingParameter = goerrors.New("missing required directive parameter", goerrors.CategoryBadInput).WithTextCode(ParameterCode)
	// ErrParameterType indicates a parameter could not be coerced to its declared type.
	ErrParameterType = goerrors.New("directive parameter type mismatch", goerrors.CategoryBadInput).WithTextCode(ParameterCode)
	// ErrUnsafeOutput is returned when a rendered fragment carries script.
	ErrUnsafeOutput = goerrors.New("directive output contains script", goerrors.CategoryValidation).WithTextCode(UnsafeOutputCode)
)
