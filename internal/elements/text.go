package elements

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy       = bluemonday.StrictPolicy()
	inlineLabelPolicy = newInlineLabelPolicy()
)

func newInlineLabelPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowAttrs("href", "title", "target", "rel").OnElements("a")
	p.AllowImages()
	return p
}

// Compose builds the popup text of a shape: the title in bold above a rule
// when both parts are set, otherwise whichever part is non-empty.
func Compose(title, text string) string {
	if title != "" && text != "" {
		return "<b>" + title + "</b><hr />" + text
	}
	return title + text
}

// StripTags removes every tag from s and keeps the text between them.
// Script and style bodies are dropped too, and entities come back
// re-encoded.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	return stripPolicy.Sanitize(s)
}

// SanitizeInlineLabel keeps anchors and images and strips every other tag.
func SanitizeInlineLabel(s string) string {
	return inlineLabelPolicy.Sanitize(s)
}
