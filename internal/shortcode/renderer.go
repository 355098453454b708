package shortcode

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Renderer resolves a directive, coerces its parameters, runs its handler or
// template and guards the resulting fragment.
type Renderer struct {
	registry  interfaces.ShortcodeRegistry
	validator *Validator
	sanitizer interfaces.ShortcodeSanitizer
	cache     interfaces.CacheProvider
	metrics   interfaces.ShortcodeMetrics

	mu        sync.Mutex
	templates map[string]*template.Template
}

// RendererOption configures the renderer instance.
type RendererOption func(*Renderer)

// WithRendererSanitizer overrides the default sanitizer.
func WithRendererSanitizer(s interfaces.ShortcodeSanitizer) RendererOption {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// WithRendererCache supplies the cache used by definitions with a CacheTTL.
func WithRendererCache(cache interfaces.CacheProvider) RendererOption {
	return func(r *Renderer) {
		r.cache = cache
	}
}

// WithRendererMetrics records cache hits.
func WithRendererMetrics(metrics interfaces.ShortcodeMetrics) RendererOption {
	return func(r *Renderer) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// NewRenderer constructs a renderer over registry.
func NewRenderer(registry interfaces.ShortcodeRegistry, validator *Validator, opts ...RendererOption) *Renderer {
	r := &Renderer{
		registry:  registry,
		validator: validator,
		sanitizer: NewSanitizer(),
		metrics:   NoOpMetrics(),
		templates: make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.validator == nil {
		r.validator = NewValidator()
	}
	return r
}

// Render executes the directive called name. Aliases render through their
// definition and share its cache entries.
func (r *Renderer) Render(ctx interfaces.ShortcodeContext, name string, params map[string]any, inner string) (template.HTML, error) {
	def, ok := r.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDirective, name)
	}
	if !def.AllowInner && strings.TrimSpace(inner) != "" {
		return "", fmt.Errorf("%w: %s does not take inner content", ErrUnknownParameter, def.Name)
	}

	coerced, err := r.validator.CoerceParams(def, params)
	if err != nil {
		return "", err
	}

	cache := ctx.Cache
	if cache == nil {
		cache = r.cache
	}
	cacheKey := ""
	if cache != nil && def.CacheTTL > 0 {
		cacheKey = buildCacheKey(ctx.Locale, def.Name, coerced, inner)
		if cached, err := cache.Get(background(ctx.Context), cacheKey); err == nil {
			if html, ok := cached.(string); ok {
				r.metrics.IncrementCacheHit(def.Name)
				return template.HTML(html), nil
			}
		}
	}

	var fragment string
	switch {
	case def.Handler != nil:
		result, err := def.Handler(ctx, coerced, inner)
		if err != nil {
			return "", err
		}
		fragment = string(result)
	case def.Template != "":
		fragment, err = r.renderTemplate(def, coerced, inner)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %s has no handler or template", ErrInvalidDefinition, def.Name)
	}

	sanitizer := ctx.Sanitizer
	if sanitizer == nil {
		sanitizer = r.sanitizer
	}
	if sanitizer != nil {
		if fragment, err = sanitizer.Sanitize(fragment); err != nil {
			return "", err
		}
	}

	if cacheKey != "" {
		_ = cache.Set(background(ctx.Context), cacheKey, fragment, def.CacheTTL)
	}
	return template.HTML(fragment), nil
}

// renderTemplate executes def.Template with the coerced params and the inner
// content under "Inner". Parsed templates are kept per directive.
func (r *Renderer) renderTemplate(def interfaces.ShortcodeDefinition, params map[string]any, inner string) (string, error) {
	key := directiveKey(def.Name)

	r.mu.Lock()
	tmpl, ok := r.templates[key]
	if !ok {
		parsed, err := template.New(key).Parse(def.Template)
		if err != nil {
			r.mu.Unlock()
			return "", fmt.Errorf("%w: %s template: %v", ErrInvalidDefinition, def.Name, err)
		}
		r.templates[key] = parsed
		tmpl = parsed
	}
	r.mu.Unlock()

	data := make(map[string]any, len(params)+1)
	for k, v := range params {
		data[k] = v
	}
	data["Inner"] = inner

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildCacheKey(locale, name string, params map[string]any, inner string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(locale)
	builder.WriteString("|")
	builder.WriteString(directiveKey(name))
	for _, key := range keys {
		fmt.Fprintf(&builder, "|%s=%v", key, params[key])
	}
	builder.WriteString("|inner=")
	builder.WriteString(inner)

	sum := sha1.Sum([]byte(builder.String()))
	return "maps.directive:" + hex.EncodeToString(sum[:])
}

func background(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

var _ interfaces.ShortcodeRenderer = (*Renderer)(nil)

// NoOpMetrics discards every observation.
func NoOpMetrics() interfaces.ShortcodeMetrics {
	return discardMetrics{}
}

type discardMetrics struct{}

func (discardMetrics) ObserveRenderDuration(string, time.Duration) {}
func (discardMetrics) IncrementRenderError(string)                 {}
func (discardMetrics) IncrementCacheHit(string)                    {}
