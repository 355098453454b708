package shortcode

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/internal/output"
	parserpkg "github.com/goliatone/go-cms-maps/internal/shortcode/parser"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Service finds map directives in content and replaces each with its
// rendered output. All directives of one Process call share a page, so map
// IDs and head output accumulate across them.
type Service struct {
	registry     interfaces.ShortcodeRegistry
	renderer     interfaces.ShortcodeRenderer
	parser       interfaces.ShortcodeParser
	preprocessor *parserpkg.WordPressPreprocessor
	cache        interfaces.CacheProvider
	logger       interfaces.Logger
	metrics      interfaces.ShortcodeMetrics
	wordpress    bool
}

// ServiceOption customises service behaviour.
type ServiceOption func(*Service)

// WithWordPressSyntax accepts [display_map ...] alongside {{< display_map >}}.
func WithWordPressSyntax(enabled bool) ServiceOption {
	return func(s *Service) {
		s.wordpress = enabled
	}
}

// WithDefaultCache is used when a call supplies no cache.
func WithDefaultCache(cache interfaces.CacheProvider) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires the metrics recorder used for telemetry.
func WithMetrics(metrics interfaces.ShortcodeMetrics) ServiceOption {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithParser overrides the directive parser.
func WithParser(parser interfaces.ShortcodeParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// NewService constructs a directive service over registry and renderer.
func NewService(registry interfaces.ShortcodeRegistry, renderer interfaces.ShortcodeRenderer, opts ...ServiceOption) *Service {
	service := &Service{
		registry:     registry,
		renderer:     renderer,
		parser:       parserpkg.NewHugoParser(),
		preprocessor: parserpkg.NewWordPressPreprocessor(),
		logger:       logging.NoOp(),
		metrics:      NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Process renders every directive in content. When ctx carries no page a
// fresh one in opts.Locale is attached for the duration of the call.
func (s *Service) Process(ctx context.Context, content string, opts interfaces.ShortcodeProcessOptions) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	if s.renderer == nil || s.parser == nil {
		return "", goerrors.New("directive service not initialised", goerrors.CategoryInternal).
			WithTextCode(RenderFailedCode)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := output.FromContext(ctx); !ok {
		ctx = output.WithPage(ctx, output.NewPage("", opts.Locale))
	}

	logger := logging.WithFields(s.baseLogger(ctx), map[string]any{
		"operation": "maps.directive.process",
		"locale":    opts.Locale,
	})

	material := content
	if s.wordpress || opts.EnableWordPress {
		material = s.preprocessor.Process(material, s.directiveNames()...)
	}

	transformed, parsed, err := s.parser.Extract(material)
	if err != nil {
		logger.Error("maps.directive.parse_failed", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "parse directives").WithTextCode(ParameterCode)
	}
	if len(parsed) == 0 {
		return transformed, nil
	}

	renderCtx := s.renderContext(interfaces.ShortcodeContext{
		Context:   ctx,
		Locale:    opts.Locale,
		Cache:     opts.Cache,
		Sanitizer: opts.Sanitizer,
	})

	out := transformed
	for idx, sc := range parsed {
		rendered, err := s.render(logger, renderCtx, sc.Name, sc.Params, sc.Inner)
		if err != nil {
			return "", renderFailure(err, sc.Name, idx)
		}
		out = strings.Replace(out, parserpkg.Placeholder(idx), string(rendered), 1)
	}

	logger.Debug("maps.directive.process_completed", "directives", len(parsed))
	return out, nil
}

// Render executes a single directive.
func (s *Service) Render(ctx interfaces.ShortcodeContext, name string, params map[string]any, inner string) (template.HTML, error) {
	if s.renderer == nil {
		return "", goerrors.New("directive service not initialised", goerrors.CategoryInternal).
			WithTextCode(RenderFailedCode)
	}
	ctx = s.renderContext(ctx)
	logger := logging.WithFields(s.baseLogger(ctx.Context), map[string]any{
		"operation": "maps.directive.render",
	})
	return s.render(logger, ctx, name, params, inner)
}

func (s *Service) render(logger interfaces.Logger, ctx interfaces.ShortcodeContext, name string, params map[string]any, inner string) (template.HTML, error) {
	start := time.Now()
	rendered, err := s.renderer.Render(ctx, name, params, inner)
	elapsed := time.Since(start)
	s.metrics.ObserveRenderDuration(name, elapsed)

	entry := logging.WithFields(logger, map[string]any{
		"directive":   name,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		s.metrics.IncrementRenderError(name)
		entry.Error("maps.directive.render_failed", "error", err)
		return "", err
	}
	entry.Debug("maps.directive.render_succeeded")
	return rendered, nil
}

func (s *Service) renderContext(ctx interfaces.ShortcodeContext) interfaces.ShortcodeContext {
	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.Cache == nil {
		ctx.Cache = s.cache
	}
	return ctx
}

// renderFailure keeps categorised errors intact so errors.Is still matches
// the sentinels, and wraps anything else as an internal render failure.
func renderFailure(err error, name string, idx int) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("render directive %s #%d", name, idx)).
		WithTextCode(RenderFailedCode)
}

func (s *Service) directiveNames() []string {
	if s.registry == nil {
		return nil
	}
	return s.registry.Names()
}

func (s *Service) baseLogger(ctx context.Context) interfaces.Logger {
	logger := s.logger
	if logger == nil {
		logger = logging.NoOp()
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	return logger
}

var _ interfaces.ShortcodeService = (*Service)(nil)
