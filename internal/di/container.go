package di

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-cms-maps/internal/cache"
	"github.com/goliatone/go-cms-maps/internal/directive"
	"github.com/goliatone/go-cms-maps/internal/display"
	"github.com/goliatone/go-cms-maps/internal/files"
	"github.com/goliatone/go-cms-maps/internal/i18n"
	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/internal/logging/console"
	"github.com/goliatone/go-cms-maps/internal/logging/gologger"
	"github.com/goliatone/go-cms-maps/internal/markdown"
	"github.com/goliatone/go-cms-maps/internal/metrics"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
	"github.com/goliatone/go-cms-maps/internal/services"
	"github.com/goliatone/go-cms-maps/internal/shortcode"
	"github.com/goliatone/go-cms-maps/internal/textrender"
	"github.com/goliatone/go-cms-maps/internal/validation"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Container wires the map renderer from a validated config. Collaborators
// supplied through options replace the config-built defaults.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	registerer     prometheus.Registerer
	cache          interfaces.CacheProvider
	files          interfaces.FileResolver
	i18nSvc        i18n.Service
	locales        []string
	parser         interfaces.MarkdownParser
	pagesPath      string

	metrics    *metrics.Prometheus
	providers  *services.Registry
	layers     *layers.Resolver
	text       *textrender.Renderer
	validator  *validation.PayloadValidator
	directives *directive.Parser
	display    *display.Renderer
	registry   *shortcode.Registry
	shortcodes *shortcode.Service
	pages      *markdown.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithPrometheusRegisterer registers metrics on reg instead of the default registerer.
func WithPrometheusRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithCache overrides the LRU cache built from the cache config.
func WithCache(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.cache = provider
		}
	}
}

// WithFileResolver overrides the go-urlkit file resolver.
func WithFileResolver(resolver interfaces.FileResolver) Option {
	return func(c *Container) {
		if resolver != nil {
			c.files = resolver
		}
	}
}

// WithI18nService overrides the message catalogue used for map messages.
func WithI18nService(svc i18n.Service) Option {
	return func(c *Container) {
		if svc != nil {
			c.i18nSvc = svc
		}
	}
}

// WithMarkdownParser overrides the goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.parser = parser
		}
	}
}

// WithPagesPath sets the directory page sources are read from.
func WithPagesPath(path string) Option {
	return func(c *Container) {
		c.pagesPath = strings.TrimSpace(path)
	}
}

// NewContainer validates cfg and builds every collaborator.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLoggerProvider,
		c.configureCache,
		c.configureMetrics,
		c.configureI18n,
		c.configureProviders,
		c.configureValidation,
		c.configureRenderers,
		c.configurePages,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	logging.ModuleLogger(c.loggerProvider, "maps").Debug("maps.container.configured",
		"services", c.providers.Names(),
		"cache", c.cache != nil,
		"metrics", c.metrics != nil,
		"payload_validation", c.validator != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCache() error {
	if c.cache != nil || !c.Config.Cache.Enabled {
		return nil
	}
	lru, err := cache.NewLRU(c.Config.Cache.Size, c.Config.Cache.DefaultTTL)
	if err != nil {
		return err
	}
	c.cache = lru
	return nil
}

func (c *Container) configureMetrics() error {
	if !c.Config.Features.Metrics {
		return nil
	}
	recorder, err := metrics.NewPrometheus(c.Config.Metrics.Namespace, c.Config.Metrics.Subsystem, c.registerer)
	if err != nil {
		return err
	}
	c.metrics = recorder
	return nil
}

func (c *Container) configureI18n() error {
	if c.i18nSvc != nil {
		return nil
	}

	var (
		bundle *i18n.Bundle
		err    error
	)
	if path := strings.TrimSpace(c.Config.I18n.MessagesPath); path != "" {
		bundle, err = i18n.ReadBundle(context.Background(), path)
	} else {
		bundle, err = i18n.DefaultBundle()
	}
	if err != nil {
		return err
	}

	cfg := bundle.Config
	c.locales = append([]string(nil), cfg.Locales...)
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = c.Config.DefaultLocale
	}
	svc, err := i18n.NewInMemoryService(cfg, bundle.Translations)
	if err != nil {
		return err
	}
	c.i18nSvc = svc
	return nil
}

func (c *Container) configureProviders() error {
	providers, err := services.NewDefaultRegistry(c.Config)
	if err != nil {
		return fmt.Errorf("maps: configure services: %w", err)
	}
	c.providers = providers
	c.layers = layers.NewResolver(c.Config.Catalog(), layers.WithLogger(logging.LayersLogger(c.loggerProvider)))

	if c.files == nil {
		c.files = files.NewResolverFromConfig(c.Config.Files)
	}
	return nil
}

func (c *Container) configureValidation() error {
	if !c.Config.Features.PayloadValidation {
		return nil
	}

	var (
		validator *validation.PayloadValidator
		err       error
	)
	if path := strings.TrimSpace(c.Config.Validation.SchemaPath); path != "" {
		validator, err = validation.LoadPayloadValidator(path)
	} else {
		validator, err = validation.DefaultPayloadValidator()
	}
	if err != nil {
		return err
	}
	c.validator = validator
	return nil
}

// configureRenderers builds the text renderer, the map renderer and the
// shortcode service. Map text may itself contain map directives, so the text
// renderer reaches the shortcode service through a proxy filled in last.
func (c *Container) configureRenderers() error {
	parseOpts := ParseOptions(c.Config.Markdown)
	if c.parser == nil {
		c.parser = markdown.NewGoldmarkParser(parseOpts)
	}

	proxy := newShortcodeServiceProxy()
	textOpts := []textrender.Option{
		textrender.WithLogger(logging.TextRenderLogger(c.loggerProvider)),
		textrender.WithMaxDepth(c.Config.Markdown.MaxDepth),
	}
	if c.Config.Features.NestedDirectives {
		textOpts = append(textOpts, textrender.WithShortcodes(proxy))
	}
	if c.cache != nil {
		textOpts = append(textOpts, textrender.WithCache(c.cache, c.Config.Cache.DefaultTTL))
	}
	c.text = textrender.New(c.parser, textOpts...)

	displayOpts := []display.Option{
		display.WithLayerResolver(c.layers),
		display.WithFileResolver(c.files),
		display.WithTranslator(c.i18nSvc.Translator()),
		display.WithParseOptions(parseOpts),
		display.WithLogger(logging.DisplayLogger(c.loggerProvider)),
	}
	if c.validator != nil {
		displayOpts = append(displayOpts, display.WithPayloadValidator(c.validator))
	}
	if c.metrics != nil {
		displayOpts = append(displayOpts, display.WithMetrics(c.metrics))
	}
	c.display = display.NewRenderer(c.providers, c.text, displayOpts...)
	c.directives = directive.NewParser(c.Config, c.providers,
		directive.WithLogger(logging.DirectiveLogger(c.loggerProvider)))

	c.registry = shortcode.NewRegistry(shortcode.NewValidator())
	if err := shortcode.RegisterBuiltIns(c.registry, shortcode.MapHandler(c.directives, c.display), nil); err != nil {
		return err
	}

	rendererOpts := []shortcode.RendererOption{}
	serviceOpts := []shortcode.ServiceOption{
		shortcode.WithWordPressSyntax(c.Config.Features.WordPressSyntax),
		shortcode.WithLogger(logging.ModuleLogger(c.loggerProvider, "maps.shortcode")),
	}
	if c.cache != nil {
		rendererOpts = append(rendererOpts, shortcode.WithRendererCache(c.cache))
		serviceOpts = append(serviceOpts, shortcode.WithDefaultCache(c.cache))
	}
	if c.metrics != nil {
		rendererOpts = append(rendererOpts, shortcode.WithRendererMetrics(c.metrics))
		serviceOpts = append(serviceOpts, shortcode.WithMetrics(c.metrics))
	}
	renderer := shortcode.NewRenderer(c.registry, shortcode.NewValidator(), rendererOpts...)
	c.shortcodes = shortcode.NewService(c.registry, renderer, serviceOpts...)
	proxy.swap(c.shortcodes)
	return nil
}

func (c *Container) configurePages() error {
	pages, err := markdown.NewService(markdown.Config{
		BasePath:      c.pagesPath,
		DefaultLocale: c.Config.DefaultLocale,
		Locales:       c.locales,
		Recursive:     true,
		Parser:        ParseOptions(c.Config.Markdown),
		WordPress:     c.Config.Features.WordPressSyntax,
	}, c.parser, c.shortcodes)
	if err != nil {
		return err
	}
	c.pages = pages
	return nil
}

// ParseOptions maps the markdown config onto parser options.
func ParseOptions(cfg runtimeconfig.MarkdownConfig) interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), cfg.Extensions...),
		Sanitize:   cfg.Sanitize,
		HardWraps:  cfg.HardWraps,
		SafeMode:   cfg.SafeMode,
	}
}

// LoggerProvider returns the configured provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Cache returns the shared cache, nil when caching is disabled.
func (c *Container) Cache() interfaces.CacheProvider {
	return c.cache
}

// Metrics returns the Prometheus recorder, nil when metrics are disabled.
func (c *Container) Metrics() *metrics.Prometheus {
	return c.metrics
}

// I18nService returns the message catalogue.
func (c *Container) I18nService() i18n.Service {
	return c.i18nSvc
}

// Providers returns the mapping service registry.
func (c *Container) Providers() *services.Registry {
	return c.providers
}

// LayerResolver returns the OpenLayers layer resolver.
func (c *Container) LayerResolver() *layers.Resolver {
	return c.layers
}

// TextRenderer returns the renderer used for marker and shape text.
func (c *Container) TextRenderer() *textrender.Renderer {
	return c.text
}

// DirectiveParser returns the directive parameter parser.
func (c *Container) DirectiveParser() *directive.Parser {
	return c.directives
}

// MapRenderer returns the map render orchestrator.
func (c *Container) MapRenderer() *display.Renderer {
	return c.display
}

// ShortcodeRegistry returns the directive registry.
func (c *Container) ShortcodeRegistry() *shortcode.Registry {
	return c.registry
}

// ShortcodeService returns the service that expands directives in content.
func (c *Container) ShortcodeService() *shortcode.Service {
	return c.shortcodes
}

// PageService returns the page render pipeline.
func (c *Container) PageService() *markdown.Service {
	return c.pages
}
