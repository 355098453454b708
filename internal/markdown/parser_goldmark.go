package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// GoldmarkParser implements interfaces.MarkdownParser. Engines are built once
// per distinct option set and shared across calls.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
	engines  sync.Map // optionsKey -> goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewGoldmarkParser builds a parser. Without extensions GFM, linkify and task
// lists are enabled.
//
// SafeMode drops raw HTML from the output. Sanitize keeps it but runs the
// result through a user generated content policy, which strips scripts,
// inline styles and event handlers.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaults: defaults,
		policy:   bluemonday.UGCPolicy(),
	}
}

// Parse renders Markdown with the parser defaults.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaults)
}

// ParseWithOptions renders Markdown with opts.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.engine(opts).Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	if opts.Sanitize && !opts.SafeMode {
		return p.policy.SanitizeBytes(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

func (p *GoldmarkParser) engine(opts interfaces.ParseOptions) goldmark.Markdown {
	key := optionsKey(opts)
	if cached, ok := p.engines.Load(key); ok {
		return cached.(goldmark.Markdown)
	}
	built, _ := p.engines.LoadOrStore(key, newGoldmarkEngine(opts))
	return built.(goldmark.Markdown)
}

// Inline strips the paragraph goldmark wraps around single-line input so the
// result can sit inside a popup title or an inline label. Output with more
// than one block is returned trimmed but otherwise unchanged.
func Inline(rendered []byte) string {
	out := strings.TrimSpace(string(rendered))
	inner, ok := strings.CutPrefix(out, "<p>")
	if !ok {
		return out
	}
	inner, ok = strings.CutSuffix(inner, "</p>")
	if !ok || strings.Contains(inner, "<p>") {
		return out
	}
	return inner
}

func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	var rendering []renderer.Option
	if opts.HardWraps {
		rendering = append(rendering, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendering = append(rendering, html.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendering...),
		goldmark.WithExtensions(extenders(opts.Extensions)...),
	)
}

var knownExtensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// extenders resolves extension names; unknown names and repeats are skipped.
func extenders(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM, extension.Linkify, extension.TaskList}
	}
	var (
		out  []goldmark.Extender
		used []string
	)
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := knownExtensions[key]
		if !ok || slices.Contains(used, key) {
			continue
		}
		used = append(used, key)
		out = append(out, ext)
	}
	return out
}

func optionsKey(opts interfaces.ParseOptions) string {
	return fmt.Sprintf("%t|%t|%t|%s", opts.Sanitize, opts.HardWraps, opts.SafeMode, strings.Join(opts.Extensions, ","))
}
