package shortcode

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

var (
	scriptTagPattern    = regexp.MustCompile(`(?i)<\s*script\b`)
	eventHandlerPattern = regexp.MustCompile(`(?i)<[^>]*\s+on[a-z]+\s*=`)
	scriptURLPattern    = regexp.MustCompile(`(?i)(href|src)\s*=\s*["']?\s*(javascript|vbscript):`)
)

// Sanitizer guards directive output. Map containers only carry markup and a
// JSON payload, so any script, inline event handler or script URL means a
// parameter leaked through unescaped.
type Sanitizer struct{}

// NewSanitizer returns the default fragment guard.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize returns html unchanged or ErrUnsafeOutput.
func (s *Sanitizer) Sanitize(html string) (string, error) {
	switch {
	case scriptTagPattern.MatchString(html):
		return "", fmt.Errorf("%w: script tag", ErrUnsafeOutput)
	case eventHandlerPattern.MatchString(html):
		return "", fmt.Errorf("%w: inline event handler", ErrUnsafeOutput)
	case scriptURLPattern.MatchString(html):
		return "", fmt.Errorf("%w: script url", ErrUnsafeOutput)
	}
	return html, nil
}

var _ interfaces.ShortcodeSanitizer = (*Sanitizer)(nil)
