package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of a wiki page source. Title and Locale
// seed the page output the map directives render into.
type FrontMatter struct {
	Title   string
	Locale  string
	Summary string
	// Service overrides the default mapping service for every directive on
	// the page that does not name one.
	Service string
	Custom  map[string]any
	Raw     map[string]any
}

// Page is a parsed wiki page source.
type Page struct {
	Path        string
	FrontMatter FrontMatter
	Body        []byte
}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. Sources without a front matter block return an
// empty FrontMatter and the whole source as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildPage assembles a Page from a file path and its raw content. The
// fallback locale applies when the front matter does not set one.
func BuildPage(path, fallbackLocale string, source []byte) (*Page, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}
	if fm.Locale == "" {
		fm.Locale = fallbackLocale
	}
	return &Page{
		Path:        path,
		FrontMatter: fm,
		Body:        body,
	}, nil
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Locale  string         `yaml:"locale"`
	Summary string         `yaml:"summary"`
	Service string         `yaml:"mappingservice"`
	Custom  map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	raw := make(map[string]any, len(env.Custom)+4)
	for key, value := range env.Custom {
		raw[key] = value
	}
	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Locale != "" {
		raw["locale"] = env.Locale
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if env.Service != "" {
		raw["mappingservice"] = env.Service
	}

	return FrontMatter{
		Title:   env.Title,
		Locale:  strings.ToLower(strings.TrimSpace(env.Locale)),
		Summary: env.Summary,
		Service: strings.TrimSpace(env.Service),
		Custom:  cloneMap(env.Custom),
		Raw:     raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
