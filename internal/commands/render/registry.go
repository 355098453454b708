package rendercmd

import (
	"errors"

	"github.com/goliatone/go-cms-maps/internal/commands"
	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterRenderCommands.
type HandlerSet struct {
	Page *RenderPageHandler
	Site *RenderSiteHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	pageHandlerOpts []commands.HandlerOption[RenderPageCommand]
	siteHandlerOpts []commands.HandlerOption[RenderSiteCommand]
	metrics         commands.CommandMetrics
}

// WithCommandMetrics records every page and site run on metrics alongside
// the log entry.
func WithCommandMetrics(metrics commands.CommandMetrics) Option {
	return func(cfg *options) {
		cfg.metrics = metrics
	}
}

// WithPageHandlerOptions forwards options to the RenderPageHandler constructor.
func WithPageHandlerOptions(opts ...commands.HandlerOption[RenderPageCommand]) Option {
	return func(cfg *options) {
		cfg.pageHandlerOpts = append(cfg.pageHandlerOpts, opts...)
	}
}

// WithSiteHandlerOptions forwards options to the RenderSiteHandler constructor.
func WithSiteHandlerOptions(opts ...commands.HandlerOption[RenderSiteCommand]) Option {
	return func(cfg *options) {
		cfg.siteHandlerOpts = append(cfg.siteHandlerOpts, opts...)
	}
}

// RegisterRenderCommands builds the render handlers and registers them with
// reg when one is given.
func RegisterRenderCommands(reg CommandRegistry, renderer PageRenderer, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if renderer == nil {
		return nil, errors.New("render command registration: renderer is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := logging.CommandLogger(provider, "render")
	pageOpts := cfg.pageHandlerOpts
	siteOpts := cfg.siteHandlerOpts
	if cfg.metrics != nil {
		pageOpts = append([]commands.HandlerOption[RenderPageCommand]{
			commands.WithTelemetry(commands.ChainTelemetry(
				commands.LogTelemetry[RenderPageCommand](logger),
				commands.MetricsTelemetry[RenderPageCommand](cfg.metrics),
			)),
		}, pageOpts...)
		siteOpts = append([]commands.HandlerOption[RenderSiteCommand]{
			commands.WithTelemetry(commands.ChainTelemetry(
				commands.LogTelemetry[RenderSiteCommand](logger),
				commands.MetricsTelemetry[RenderSiteCommand](cfg.metrics),
			)),
		}, siteOpts...)
	}

	set := &HandlerSet{
		Page: NewRenderPageHandler(renderer, logger, pageOpts...),
		Site: NewRenderSiteHandler(renderer, logger, siteOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Page); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Site); err != nil {
			return nil, err
		}
	}
	return set, nil
}
