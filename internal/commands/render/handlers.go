package rendercmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-maps/internal/commands"
	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/internal/markdown"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

const (
	renderPageOperation = "maps.render.page"
	renderSiteOperation = "maps.render.site"
)

var (
	_ command.Commander[RenderPageCommand] = (*RenderPageHandler)(nil)
	_ command.Commander[RenderSiteCommand] = (*RenderSiteHandler)(nil)
)

// PageRenderer is the page pipeline the render commands drive.
type PageRenderer interface {
	RenderSource(ctx context.Context, path string, source []byte) (*markdown.RenderedPage, error)
	RenderFile(ctx context.Context, path string) (*markdown.RenderedPage, error)
	RenderDirectory(ctx context.Context, dir string, opts markdown.LoadParams) ([]*markdown.RenderedPage, error)
}

// RenderPageHandler renders a single page through the shared command handler.
type RenderPageHandler struct {
	inner *commands.Handler[RenderPageCommand]
}

// NewRenderPageHandler creates a handler bound to the supplied page renderer.
func NewRenderPageHandler(renderer PageRenderer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderPageCommand]) *RenderPageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderPageCommand) error {
		var (
			page *markdown.RenderedPage
			err  error
		)
		if msg.Source != "" {
			page, err = renderer.RenderSource(ctx, msg.Path, []byte(msg.Source))
		} else {
			page, err = renderer.RenderFile(ctx, msg.Path)
		}
		if err != nil {
			return err
		}

		if err := WriteDocument(msg.Output, page, msg.Fragment); err != nil {
			return fmt.Errorf("write page %s: %w", msg.Path, err)
		}

		logging.WithFields(baseLogger, map[string]any{
			"title":  page.Title,
			"locale": page.Locale,
			"maps":   mapCount(page),
		}).Debug("maps.command.render_page.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderPageCommand]{
		commands.WithLogger[RenderPageCommand](baseLogger),
		commands.WithOperation[RenderPageCommand](renderPageOperation),
		commands.WithMessageFields(func(msg RenderPageCommand) map[string]any {
			fields := map[string]any{
				"path": msg.Path,
			}
			if msg.Source != "" {
				fields["inline_source"] = true
			}
			if msg.Fragment {
				fields["fragment"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderPageCommand].
func (h *RenderPageHandler) Execute(ctx context.Context, msg RenderPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderSiteHandler renders a page directory into static HTML documents.
type RenderSiteHandler struct {
	inner *commands.Handler[RenderSiteCommand]
}

// NewRenderSiteHandler creates a handler bound to the supplied page renderer.
func NewRenderSiteHandler(renderer PageRenderer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderSiteCommand]) *RenderSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderSiteCommand) error {
		pages, err := renderer.RenderDirectory(ctx, msg.Directory, markdown.LoadParams{Recursive: msg.Recursive})
		if err != nil {
			return err
		}

		written := 0
		for _, page := range pages {
			if msg.DryRun {
				continue
			}
			if err := writePageFile(msg.OutputDir, page); err != nil {
				return err
			}
			written++
		}

		logging.WithFields(baseLogger, map[string]any{
			"page_count":    len(pages),
			"written_count": written,
			"dry_run":       msg.DryRun,
		}).Info("maps.command.render_site.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderSiteCommand]{
		commands.WithLogger[RenderSiteCommand](baseLogger),
		commands.WithOperation[RenderSiteCommand](renderSiteOperation),
		commands.WithMessageFields(func(msg RenderSiteCommand) map[string]any {
			fields := map[string]any{
				"directory":  msg.Directory,
				"output_dir": msg.OutputDir,
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderSiteCommand].
func (h *RenderSiteHandler) Execute(ctx context.Context, msg RenderSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func writePageFile(outputDir string, page *markdown.RenderedPage) error {
	if page == nil {
		return errors.New("render site: page is nil")
	}
	name := strings.TrimSuffix(page.Path, path.Ext(page.Path)) + ".html"
	target := filepath.Join(outputDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("render site: create directory for %s: %w", name, err)
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("render site: create %s: %w", name, err)
	}
	if err := WriteDocument(file, page, false); err != nil {
		file.Close()
		return fmt.Errorf("render site: write %s: %w", name, err)
	}
	return file.Close()
}

func mapCount(page *markdown.RenderedPage) int {
	if page == nil || page.Output == nil {
		return 0
	}
	return page.Output.MapCount()
}
