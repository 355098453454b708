package interfaces

import "context"

// RenderSnapshot is a point-in-time copy of the page rendering context handed
// to nested text renders. It is passed by value so a nested render cannot
// change what the outer render sees.
type RenderSnapshot struct {
	PageTitle string
	Locale    string
	// Depth counts how many renders are stacked above this one.
	Depth   int
	Options ParseOptions
}

// Nested returns the snapshot used for a render triggered from inside this one.
func (s RenderSnapshot) Nested() RenderSnapshot {
	s.Depth++
	return s
}

// ContentRenderer renders wiki/markdown text embedded in map parameters
// (titles, popup text, inline labels) into HTML.
type ContentRenderer interface {
	RenderText(ctx context.Context, snapshot RenderSnapshot, text string) (string, error)
}

// FileResolver turns a file reference (icon name, upload title or URL) into
// a URL the client can fetch. An empty reference resolves to "".
type FileResolver interface {
	FileURL(ctx context.Context, reference string) (string, error)
}
