package interfaces

import (
	"context"
	"html/template"
	"time"
)

// ShortcodeRegistry stores the directives a page may invoke (display_map and
// its aliases). Names are matched case-insensitively. Implementations must be
// safe for concurrent use.
type ShortcodeRegistry interface {
	// Register stores a definition under its name and aliases. It fails when
	// any of them is taken or the definition does not validate.
	Register(definition ShortcodeDefinition) error

	// Get resolves a name or alias to its definition.
	Get(name string) (ShortcodeDefinition, bool)

	// List returns one entry per definition, aliases folded in.
	List() []ShortcodeDefinition

	// Names returns every invocable name, aliases included.
	Names() []string

	// Remove drops a name or alias. Unknown names are ignored.
	Remove(name string)
}

// ShortcodeRenderer executes one directive and returns its HTML fragment.
type ShortcodeRenderer interface {
	Render(ctx ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error)
}

// ShortcodeParser extracts directive invocations from page content.
type ShortcodeParser interface {
	Parse(content string) ([]ParsedShortcode, error)
	Extract(content string) (placeholders string, shortcodes []ParsedShortcode, err error)
}

// ShortcodeSanitizer checks a rendered fragment before it is spliced into
// the page.
type ShortcodeSanitizer interface {
	Sanitize(html string) (string, error)
}

// ShortcodeService processes whole content strings, replacing every directive
// with its rendered output.
type ShortcodeService interface {
	Process(ctx context.Context, content string, opts ShortcodeProcessOptions) (string, error)
	Render(ctx ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error)
}

// ShortcodeProcessOptions tunes a single Process call.
type ShortcodeProcessOptions struct {
	Locale          string
	EnableWordPress bool
	Cache           CacheProvider
	Sanitizer       ShortcodeSanitizer
}

// ShortcodeMetrics records directive render telemetry.
type ShortcodeMetrics interface {
	ObserveRenderDuration(shortcode string, duration time.Duration)
	IncrementRenderError(shortcode string)
	IncrementCacheHit(shortcode string)
}

// ShortcodeDefinition describes one directive: its names, parameter schema
// and either a handler or a template.
type ShortcodeDefinition struct {
	Name        string
	Aliases     []string
	Version     string
	Description string
	Category    string
	Icon        string
	AllowInner  bool
	// CacheTTL enables fragment caching. Directives that write head output
	// must leave it at zero.
	CacheTTL time.Duration
	Schema   ShortcodeSchema
	Template string
	Handler  ShortcodeHandler
}

// ShortcodeSchema lists the parameters a directive accepts.
type ShortcodeSchema struct {
	Params   []ShortcodeParam
	Defaults map[string]any
	// AllowUnknown passes parameters that are not declared in Params through
	// untouched. Map directives use it for provider specific options.
	AllowUnknown bool
}

// ShortcodeParam describes a single parameter.
type ShortcodeParam struct {
	Name     string
	Type     ShortcodeParamType
	Required bool
	Default  any
	Validate ShortcodeValidator
}

// ShortcodeParamType enumerates the supported parameter coercions.
type ShortcodeParamType string

const (
	ShortcodeParamString ShortcodeParamType = "string"
	ShortcodeParamInt    ShortcodeParamType = "int"
	ShortcodeParamBool   ShortcodeParamType = "bool"
	ShortcodeParamArray  ShortcodeParamType = "array"
	ShortcodeParamURL    ShortcodeParamType = "url"
)

// ShortcodeValidator runs after coercion.
type ShortcodeValidator func(value any) error

// ShortcodeHandler renders a directive from its coerced parameters.
type ShortcodeHandler func(ctx ShortcodeContext, params map[string]any, inner string) (template.HTML, error)

// ShortcodeContext carries the request scope into a directive render.
type ShortcodeContext struct {
	Context   context.Context
	Locale    string
	Cache     CacheProvider
	Sanitizer ShortcodeSanitizer
}

// ParsedShortcode is one directive invocation found in content.
type ParsedShortcode struct {
	Name   string
	Params map[string]any
	Inner  string
}
