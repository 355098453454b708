package rendercmd

import (
	"io"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderPageMessageType = "maps.render.page"
	renderSiteMessageType = "maps.render.site"
)

// RenderPageCommand renders one wiki page into HTML and writes it to Output.
type RenderPageCommand struct {
	// Path names the page source relative to the configured base path. With
	// Source set it only labels the page.
	Path string `json:"path"`
	// Source holds the raw page source; empty means Path is read from disk.
	Source string `json:"source,omitempty"`
	// Fragment writes the body HTML only, without the document shell and head.
	Fragment bool `json:"fragment,omitempty"`
	// Output receives the rendered HTML.
	Output io.Writer `json:"-"`
}

// Type implements command.Message.
func (RenderPageCommand) Type() string { return renderPageMessageType }

// Validate ensures a page and a destination are present before handlers execute.
func (cmd RenderPageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(notBlank("maps.render.page.path_required", "path is required"))),
		validation.Field(&cmd.Output, validation.Required),
	)
}

// RenderSiteCommand renders every page under Directory into OutputDir,
// mirroring the source layout with .html files.
type RenderSiteCommand struct {
	// Directory selects the pages to render, relative to the base path.
	Directory string `json:"directory"`
	// OutputDir receives the rendered documents.
	OutputDir string `json:"output_dir"`
	// Recursive overrides the configured directory traversal when set.
	Recursive *bool `json:"recursive,omitempty"`
	// DryRun renders pages without writing them.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (RenderSiteCommand) Type() string { return renderSiteMessageType }

// Validate ensures the output directory is present unless running dry.
func (cmd RenderSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.OutputDir,
			validation.When(!cmd.DryRun, validation.Required, validation.By(notBlank("maps.render.site.output_required", "output directory is required"))),
		),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
