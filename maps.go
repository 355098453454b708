// Package cmsmaps renders map directives embedded in wiki pages into
// interactive map placeholders for Leaflet, OpenLayers and Google Maps.
package cmsmaps

import (
	"context"
	"html/template"

	rendercmd "github.com/goliatone/go-cms-maps/internal/commands/render"
	"github.com/goliatone/go-cms-maps/internal/di"
	"github.com/goliatone/go-cms-maps/internal/display"
	"github.com/goliatone/go-cms-maps/internal/markdown"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

type (
	// Option customises module wiring.
	Option = di.Option
	// Page collects the head output of the maps rendered into one page.
	Page = output.Page
	// RenderedPage is a rendered wiki page with its head output.
	RenderedPage = markdown.RenderedPage
	// Parameters are parsed directive parameters keyed by lower-case name.
	Parameters = display.Parameters
	// CommandRegistry accepts command handlers, such as a go-command registry.
	CommandRegistry = rendercmd.CommandRegistry
	// CommandHandlers groups the render command handlers.
	CommandHandlers = rendercmd.HandlerSet
	// RenderPageCommand renders one page into a writer.
	RenderPageCommand = rendercmd.RenderPageCommand
	// RenderSiteCommand renders a page directory into HTML files.
	RenderSiteCommand = rendercmd.RenderSiteCommand
)

var (
	WithLoggerProvider       = di.WithLoggerProvider
	WithPrometheusRegisterer = di.WithPrometheusRegisterer
	WithCache                = di.WithCache
	WithFileResolver         = di.WithFileResolver
	WithI18nService          = di.WithI18nService
	WithMarkdownParser       = di.WithMarkdownParser
	WithPagesPath            = di.WithPagesPath
)

// NewPage returns an empty page output for title and locale.
func NewPage(title, locale string) *Page {
	return output.NewPage(title, locale)
}

// Module represents the top level map renderer façade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg. The config is validated first.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Shortcodes returns the service that expands map directives in content.
func (m *Module) Shortcodes() interfaces.ShortcodeService {
	return m.container.ShortcodeService()
}

// Process expands every map directive in content onto page. A nil page
// starts a new one in the default locale.
func (m *Module) Process(ctx context.Context, content string, page *Page) (string, error) {
	if page == nil {
		page = output.NewPage("", m.container.Config.DefaultLocale)
	}
	ctx = output.WithPage(ctx, page)
	return m.container.ShortcodeService().Process(ctx, content, interfaces.ShortcodeProcessOptions{
		Locale: page.Locale,
	})
}

// RenderDirective parses raw directive parameters, as written on the page,
// and renders the map onto page.
func (m *Module) RenderDirective(ctx context.Context, params map[string]any, inner string, page *Page) (template.HTML, error) {
	parsed, err := m.container.DirectiveParser().Parse(params, inner)
	if err != nil {
		return "", err
	}
	return m.RenderMap(ctx, parsed, page)
}

// RenderMap renders already parsed parameters onto page.
func (m *Module) RenderMap(ctx context.Context, params Parameters, page *Page) (template.HTML, error) {
	return m.container.MapRenderer().RenderMap(ctx, params, page)
}

// RenderPage renders a wiki page source, front matter included.
func (m *Module) RenderPage(ctx context.Context, path string, source []byte) (*RenderedPage, error) {
	return m.container.PageService().RenderSource(ctx, path, source)
}

// RegisterCommands builds the render command handlers and registers them
// with reg when it is not nil.
func (m *Module) RegisterCommands(reg CommandRegistry) (*CommandHandlers, error) {
	var opts []rendercmd.Option
	if recorder := m.container.Metrics(); recorder != nil {
		opts = append(opts, rendercmd.WithCommandMetrics(recorder))
	}
	return rendercmd.RegisterRenderCommands(reg, m.container.PageService(), m.container.LoggerProvider(), opts...)
}
