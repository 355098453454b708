// Package textrender renders the wiki text embedded in map parameters:
// marker titles, popup text and inline labels.
package textrender

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/internal/markdown"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// DefaultMaxDepth bounds how many directive renders may stack inside one
// another before nested shortcodes are left unprocessed.
const DefaultMaxDepth = 3

const (
	cacheKeyPrefix      = "maps:text:"
	markdownFailedCode  = "MAPS_TEXT_MARKDOWN_FAILED"
	shortcodeFailedCode = "MAPS_TEXT_SHORTCODE_FAILED"
)

// Snapshot is the immutable page context a text render sees.
type Snapshot = interfaces.RenderSnapshot

// Renderer implements interfaces.ContentRenderer on top of the shortcode
// service and goldmark. It holds no per-render state.
type Renderer struct {
	parser     interfaces.MarkdownParser
	shortcodes interfaces.ShortcodeService
	cache      interfaces.CacheProvider
	cacheTTL   time.Duration
	maxDepth   int
	logger     interfaces.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithShortcodes enables nested directive processing inside map text.
func WithShortcodes(service interfaces.ShortcodeService) Option {
	return func(r *Renderer) {
		r.shortcodes = service
	}
}

// WithCache stores rendered fragments in cache for ttl. A zero ttl keeps
// entries until the cache evicts them.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) Option {
	return func(r *Renderer) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithMaxDepth overrides DefaultMaxDepth. Values below one are ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a renderer. A nil parser falls back to goldmark with default
// options.
func New(parser interfaces.MarkdownParser, opts ...Option) *Renderer {
	if parser == nil {
		parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{})
	}
	r := &Renderer{
		parser:   parser,
		maxDepth: DefaultMaxDepth,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderText renders text for the page described by snapshot. Empty text
// renders to the empty string. Shortcodes are expanded first, then the
// result goes through Markdown with a single wrapping paragraph removed.
// Text that expanded a directive is never cached.
func (r *Renderer) RenderText(ctx context.Context, snapshot Snapshot, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := cacheKey(snapshot, text)
	if cached, ok := r.cached(ctx, key); ok {
		return cached, nil
	}

	material := text
	expanded := false
	if r.shortcodes != nil {
		if snapshot.Depth >= r.maxDepth {
			r.logger.WithContext(ctx).Debug("maps.textrender.depth_exceeded",
				"depth", snapshot.Depth,
				"max_depth", r.maxDepth,
			)
		} else {
			processed, err := r.shortcodes.Process(ContextWithSnapshot(ctx, snapshot.Nested()), material, interfaces.ShortcodeProcessOptions{
				Locale: snapshot.Locale,
				Cache:  r.cache,
			})
			if err != nil {
				return "", goerrors.Wrap(err, goerrors.CategoryInternal, "process nested directives").
					WithTextCode(shortcodeFailedCode)
			}
			expanded = processed != material
			material = processed
		}
	}

	html, err := r.parser.ParseWithOptions([]byte(material), snapshot.Options)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "render map text markdown").
			WithTextCode(markdownFailedCode)
	}
	out := markdown.Inline(html)

	// Expanded directives write head items and map ids to the page, so
	// their output is only valid for this render.
	if !expanded {
		r.store(ctx, key, out)
	}
	return out, nil
}

func (r *Renderer) cached(ctx context.Context, key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	value, err := r.cache.Get(ctx, key)
	if err != nil {
		return "", false
	}
	out, ok := value.(string)
	return out, ok
}

func (r *Renderer) store(ctx context.Context, key, value string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, value, r.cacheTTL); err != nil {
		r.logger.WithContext(ctx).Warn("maps.textrender.cache_store_failed", "error", err)
	}
}

func cacheKey(snapshot Snapshot, text string) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%v\x00%t\x00%t\x00%t\x00",
		snapshot.PageTitle,
		snapshot.Locale,
		snapshot.Depth,
		snapshot.Options.Extensions,
		snapshot.Options.Sanitize,
		snapshot.Options.HardWraps,
		snapshot.Options.SafeMode,
	)
	h.Write([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

var _ interfaces.ContentRenderer = (*Renderer)(nil)
