package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// LoaderConfig configures how wiki page sources are discovered.
type LoaderConfig struct {
	// DefaultLocale applies when neither front matter nor path names a locale.
	DefaultLocale string
	// Locales enumerates the locale directories recognised as the first path
	// segment (en/trips.md, es/trips.md).
	Locales []string
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// LoadParams provide call-specific overrides for pattern matching and recursion.
type LoadParams struct {
	Pattern   string
	Recursive *bool
}

// Loader turns paths of a filesystem into wiki pages.
type Loader struct {
	fs            fs.FS
	defaultLocale string
	locales       []string
	pattern       string
	recursive     bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:            filesystem,
		defaultLocale: cfg.DefaultLocale,
		locales:       append([]string(nil), cfg.Locales...),
		pattern:       pattern,
		recursive:     cfg.Recursive,
	}
}

// LoadFile reads and parses a single page source.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := cleanPath(name)
	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	page, err := BuildPage(rel, l.detectLocale(rel), data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader parse %s: %w", rel, err)
	}
	return page, nil
}

// LoadDirectory discovers page sources under dir, sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts LoadParams) ([]*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := cleanPath(dir)
	recursive := l.recursive
	if opts.Recursive != nil {
		recursive = *opts.Recursive
	}

	var pages []*Page
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !recursive && current != root {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.matchesPattern(current, opts.Pattern) {
			return nil
		}

		page, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Path < pages[j].Path
	})
	return pages, nil
}

func (l *Loader) matchesPattern(name, override string) bool {
	pattern := override
	if strings.TrimSpace(pattern) == "" {
		pattern = l.pattern
	}
	pattern = strings.ReplaceAll(filepath.ToSlash(pattern), "**/", "")

	target := path.Base(name)
	if strings.Contains(pattern, "/") {
		target = name
	}
	match, err := path.Match(pattern, target)
	return err == nil && match
}

func (l *Loader) detectLocale(name string) string {
	first, _, _ := strings.Cut(name, "/")
	for _, locale := range l.locales {
		if strings.EqualFold(first, locale) {
			return strings.ToLower(locale)
		}
	}
	return l.defaultLocale
}

func cleanPath(name string) string {
	clean := path.Clean(filepath.ToSlash(strings.TrimSpace(name)))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" {
		return "."
	}
	return clean
}
