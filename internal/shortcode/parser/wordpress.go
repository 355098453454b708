package parser

import (
	"regexp"
	"strings"
)

var bracketTagPattern = regexp.MustCompile(`\[(/?)([a-zA-Z0-9_\-]+)((?:[^\]"']|"[^"]*"|'[^']*')*)\]`)

// WordPressPreprocessor rewrites [display_map key="v" /] and
// [display_points]...[/display_points] into the {{< >}} form HugoParser reads.
type WordPressPreprocessor struct{}

func NewWordPressPreprocessor() *WordPressPreprocessor {
	return &WordPressPreprocessor{}
}

// Process rewrites bracket tags. With names only those tags are touched so
// markdown link text such as [home] survives; without names every tag is.
func (p *WordPressPreprocessor) Process(content string, names ...string) string {
	if !strings.Contains(content, "[") {
		return content
	}
	accept := acceptNames(names)
	return bracketTagPattern.ReplaceAllStringFunc(content, func(tag string) string {
		m := bracketTagPattern.FindStringSubmatch(tag)
		closing, name, attrs := m[1] == "/", m[2], strings.TrimSpace(m[3])
		if !accept(name) {
			return tag
		}
		if closing {
			return "{{< /" + name + " >}}"
		}
		attrs = strings.TrimSpace(strings.TrimSuffix(attrs, "/"))
		if attrs != "" {
			attrs = " " + attrs
		}
		return "{{< " + name + attrs + " >}}"
	})
}

func acceptNames(names []string) func(string) bool {
	if len(names) == 0 {
		return func(string) bool { return true }
	}
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return func(name string) bool { return known[strings.ToLower(name)] }
}
