package markdown

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Config controls how the page service discovers and renders sources.
type Config struct {
	BasePath      string
	DefaultLocale string
	Locales       []string
	Pattern       string
	Recursive     bool
	Parser        interfaces.ParseOptions
	// WordPress enables the [display_map ...] bracket syntax.
	WordPress bool
}

// RenderedPage is the result of one page render: the body HTML plus the head
// output the map directives registered on the way.
type RenderedPage struct {
	Path   string
	Title  string
	Locale string
	Body   template.HTML
	Output *output.Page
}

// Head returns the head HTML collected while rendering the page.
func (p *RenderedPage) Head() template.HTML {
	if p == nil || p.Output == nil {
		return ""
	}
	return p.Output.HeadHTML()
}

// Service renders wiki page sources: directives are expanded first, then the
// remaining Markdown goes through the parser.
type Service struct {
	cfg        Config
	parser     interfaces.MarkdownParser
	shortcodes interfaces.ShortcodeService
	loader     *Loader
}

// NewService constructs a page service. A nil parser gets a goldmark parser
// with the configured options; nil shortcodes leave directives untouched.
// The loader is only built when BasePath is set.
func NewService(cfg Config, parser interfaces.MarkdownParser, shortcodes interfaces.ShortcodeService) (*Service, error) {
	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	svc := &Service{
		cfg:        cfg,
		parser:     parser,
		shortcodes: shortcodes,
	}

	if strings.TrimSpace(cfg.BasePath) != "" {
		filesystem, err := prepareFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		svc.loader = NewLoader(filesystem, LoaderConfig{
			DefaultLocale: cfg.DefaultLocale,
			Locales:       cfg.Locales,
			Pattern:       cfg.Pattern,
			Recursive:     cfg.Recursive,
		})
	}
	return svc, nil
}

// Render parses Markdown bytes into HTML using the configured parser.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// RenderSource parses front matter from source and renders the page.
func (s *Service) RenderSource(ctx context.Context, path string, source []byte) (*RenderedPage, error) {
	page, err := BuildPage(path, s.cfg.DefaultLocale, source)
	if err != nil {
		return nil, err
	}
	return s.RenderPage(ctx, page)
}

// RenderFile loads a page relative to the base path and renders it.
func (s *Service) RenderFile(ctx context.Context, path string) (*RenderedPage, error) {
	if s.loader == nil {
		return nil, errors.New("markdown service: base path is not configured")
	}
	page, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.RenderPage(ctx, page)
}

// RenderDirectory renders every page source under dir, sorted by path.
func (s *Service) RenderDirectory(ctx context.Context, dir string, opts LoadParams) ([]*RenderedPage, error) {
	if s.loader == nil {
		return nil, errors.New("markdown service: base path is not configured")
	}
	pages, err := s.loader.LoadDirectory(ctx, dir, opts)
	if err != nil {
		return nil, err
	}

	rendered := make([]*RenderedPage, 0, len(pages))
	for _, page := range pages {
		result, err := s.RenderPage(ctx, page)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, result)
	}
	return rendered, nil
}

// RenderPage renders one parsed page. A fresh page output travels on the
// context so every directive in the body shares its head items and map
// counters.
func (s *Service) RenderPage(ctx context.Context, page *Page) (*RenderedPage, error) {
	if page == nil {
		return nil, errors.New("markdown service: page is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fm := page.FrontMatter
	out := output.NewPage(fm.Title, fm.Locale)
	out.Service = fm.Service
	ctx = output.WithPage(ctx, out)

	body := string(page.Body)
	if s.shortcodes != nil {
		processed, err := s.shortcodes.Process(ctx, body, interfaces.ShortcodeProcessOptions{
			Locale:          fm.Locale,
			EnableWordPress: s.cfg.WordPress,
		})
		if err != nil {
			return nil, fmt.Errorf("markdown render page %s: %w", page.Path, err)
		}
		body = processed
	}

	html, err := s.Render(ctx, []byte(body), interfaces.ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("markdown render page %s: %w", page.Path, err)
	}

	return &RenderedPage{
		Path:   page.Path,
		Title:  fm.Title,
		Locale: fm.Locale,
		Body:   template.HTML(html),
		Output: out,
	}, nil
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
