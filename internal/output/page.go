// Package output collects what map directives add to the page they render
// into: head items, scripts, stylesheets and per-provider map counters.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Page is the request-scoped output of one page render. It is safe for
// concurrent use so directives rendered in parallel can share it.
type Page struct {
	Title  string
	Locale string
	// Service names the mapping service used by directives on the page that
	// do not set one. Empty keeps the configured default.
	Service string

	mu          sync.Mutex
	headItems   []string
	headSeen    map[string]struct{}
	scripts     []string
	stylesheets []string
	sequences   map[string]int
}

// NewPage returns an empty page output.
func NewPage(title, locale string) *Page {
	return &Page{
		Title:     title,
		Locale:    locale,
		headSeen:  map[string]struct{}{},
		sequences: map[string]int{},
	}
}

// AddHeadItem appends raw HTML to the head. Identical items are kept once.
func (p *Page) AddHeadItem(item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensure()
	if _, ok := p.headSeen[item]; ok {
		return
	}
	p.headSeen[item] = struct{}{}
	p.headItems = append(p.headItems, item)
}

// AddScript registers a script URL once, in first-seen order.
func (p *Page) AddScript(src string) {
	src = strings.TrimSpace(src)
	if src == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.scripts, src) {
		p.scripts = append(p.scripts, src)
	}
}

// AddStylesheet registers a stylesheet URL once, in first-seen order.
func (p *Page) AddStylesheet(href string) {
	href = strings.TrimSpace(href)
	if href == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.stylesheets, href) {
		p.stylesheets = append(p.stylesheets, href)
	}
}

// NextMapSequence returns the next map number for provider on this page,
// starting at 1.
func (p *Page) NextMapSequence(provider string) int {
	key := strings.ToLower(strings.TrimSpace(provider))
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensure()
	p.sequences[key]++
	return p.sequences[key]
}

// MapCount returns how many maps were rendered on the page across providers.
func (p *Page) MapCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.sequences {
		total += n
	}
	return total
}

// HeadItems returns a copy of the raw head items.
func (p *Page) HeadItems() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.headItems)
}

// Scripts returns a copy of the registered script URLs.
func (p *Page) Scripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.scripts)
}

// Stylesheets returns a copy of the registered stylesheet URLs.
func (p *Page) Stylesheets() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.stylesheets)
}

// HeadHTML renders stylesheets, scripts and raw head items, in that order.
func (p *Page) HeadHTML() template.HTML {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	for _, href := range p.stylesheets {
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\" />\n", template.HTMLEscapeString(href))
	}
	for _, src := range p.scripts {
		fmt.Fprintf(&b, "<script type=\"text/javascript\" src=\"%s\"></script>\n", template.HTMLEscapeString(src))
	}
	for _, item := range p.headItems {
		b.WriteString(item)
		b.WriteString("\n")
	}
	return template.HTML(b.String())
}

func (p *Page) ensure() {
	if p.headSeen == nil {
		p.headSeen = map[string]struct{}{}
	}
	if p.sequences == nil {
		p.sequences = map[string]int{}
	}
}

// VariablesScript serializes vars into a script block assigning each one to
// window, with keys in sorted order. An empty map yields "".
func VariablesScript(vars map[string]any) (string, error) {
	if len(vars) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("<script type=\"text/javascript\">\n")
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		encoded, err := json.Marshal(vars[name])
		if err != nil {
			return "", fmt.Errorf("encode variable %s: %w", name, err)
		}
		fmt.Fprintf(&b, "window.%s = %s;\n", name, encoded)
	}
	b.WriteString("</script>")
	return b.String(), nil
}

type pageKey struct{}

// WithPage stores the page output on the context handed to directive
// handlers.
func WithPage(ctx context.Context, page *Page) context.Context {
	return context.WithValue(ctx, pageKey{}, page)
}

// FromContext returns the page stored by WithPage.
func FromContext(ctx context.Context) (*Page, bool) {
	if ctx == nil {
		return nil, false
	}
	page, ok := ctx.Value(pageKey{}).(*Page)
	return page, ok && page != nil
}
