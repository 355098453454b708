package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

var (
	openTagPattern  = regexp.MustCompile(`{{<\s*([^\s/>"']+)((?:[^>"']|"[^"]*"|'[^']*')*)>}}`)
	closeTagPattern = regexp.MustCompile(`{{<\s*/\s*([^\s>]+)\s*>}}`)
)

// Placeholder is the marker Extract leaves where the directive at idx stood.
func Placeholder(idx int) string {
	return fmt.Sprintf("<!-- map-directive:%d -->", idx)
}

// HugoParser reads {{< name key="value" >}} directives. A directive with a
// matching {{< /name >}} later in the content takes everything in between as
// its inner text.
type HugoParser struct{}

// NewHugoParser creates a parser instance.
func NewHugoParser() *HugoParser {
	return &HugoParser{}
}

// Parse returns the directives found in content.
func (p *HugoParser) Parse(content string) ([]interfaces.ParsedShortcode, error) {
	_, found, err := p.Extract(content)
	return found, err
}

// Extract swaps every directive for its Placeholder and returns the rewritten
// content with the directives in placeholder order.
func (p *HugoParser) Extract(content string) (string, []interfaces.ParsedShortcode, error) {
	s := &scanner{src: content}
	if err := s.run(); err != nil {
		return "", nil, err
	}
	return s.out.String(), s.found, nil
}

type openDirective struct {
	name   string
	params map[string]any
	mark   int
}

type scanner struct {
	src   string
	pos   int
	out   strings.Builder
	found []interfaces.ParsedShortcode
	open  []openDirective
}

func (s *scanner) run() error {
	for s.pos < len(s.src) {
		rest := s.src[s.pos:]
		openLoc := openTagPattern.FindStringSubmatchIndex(rest)
		closeLoc := closeTagPattern.FindStringSubmatchIndex(rest)

		switch {
		case openLoc == nil && closeLoc == nil:
			s.out.WriteString(rest)
			s.pos = len(s.src)
		case openLoc != nil && (closeLoc == nil || openLoc[0] < closeLoc[0]):
			s.out.WriteString(rest[:openLoc[0]])
			name := rest[openLoc[2]:openLoc[3]]
			params := parseParams(strings.TrimSpace(rest[openLoc[4]:openLoc[5]]))
			s.pos += openLoc[1]
			if !s.hasClosing(name) {
				s.emit(name, params, "")
				continue
			}
			s.open = append(s.open, openDirective{name: name, params: params, mark: s.out.Len()})
		default:
			s.out.WriteString(rest[:closeLoc[0]])
			name := rest[closeLoc[2]:closeLoc[3]]
			if err := s.close(name, s.pos+closeLoc[0]); err != nil {
				return err
			}
			s.pos += closeLoc[1]
		}
	}
	if len(s.open) > 0 {
		return fmt.Errorf("unterminated directive %s", s.open[len(s.open)-1].name)
	}
	return nil
}

func (s *scanner) hasClosing(name string) bool {
	closing := regexp.MustCompile(`{{<\s*/\s*` + regexp.QuoteMeta(name) + `\s*>}}`)
	return closing.MatchString(s.src[s.pos:])
}

func (s *scanner) close(name string, at int) error {
	if len(s.open) == 0 {
		return fmt.Errorf("unexpected closing directive %s at position %d", name, at)
	}
	top := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	if top.name != name {
		return fmt.Errorf("mismatched directive end tag %s, expected %s", name, top.name)
	}

	written := s.out.String()
	inner := written[top.mark:]
	s.out.Reset()
	s.out.WriteString(written[:top.mark])
	s.emit(name, top.params, inner)
	return nil
}

func (s *scanner) emit(name string, params map[string]any, inner string) {
	s.out.WriteString(Placeholder(len(s.found)))
	s.found = append(s.found, interfaces.ParsedShortcode{Name: name, Params: params, Inner: inner})
}

// parseParams reads key=value pairs. Bare tokens become param1, param2...
func parseParams(raw string) map[string]any {
	params := map[string]any{}
	positional := 0
	for _, token := range splitParams(raw) {
		if key, value, ok := splitKeyValue(token); ok {
			params[key] = value
			continue
		}
		positional++
		params[fmt.Sprintf("param%d", positional)] = unquote(token)
	}
	return params
}

// splitParams splits on whitespace outside single or double quotes.
func splitParams(raw string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range raw {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func splitKeyValue(token string) (string, string, bool) {
	idx := strings.IndexAny(token, "=\"'")
	if idx <= 0 || token[idx] != '=' {
		return "", "", false
	}
	return strings.TrimSpace(token[:idx]), unquote(token[idx+1:]), true
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}
