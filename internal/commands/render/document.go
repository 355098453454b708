package rendercmd

import (
	"html/template"
	"io"

	"github.com/goliatone/go-cms-maps/internal/markdown"
)

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
<head>
<meta charset="utf-8" />
<title>{{.Title}}</title>
{{.Head}}</head>
<body>
{{.Body}}</body>
</html>
`))

type document struct {
	Locale string
	Title  string
	Head   template.HTML
	Body   template.HTML
}

// WriteDocument writes page as a standalone HTML document, or only its body
// when fragment is set.
func WriteDocument(w io.Writer, page *markdown.RenderedPage, fragment bool) error {
	if fragment {
		_, err := io.WriteString(w, string(page.Body))
		return err
	}
	return documentTemplate.Execute(w, document{
		Locale: page.Locale,
		Title:  page.Title,
		Head:   page.Head(),
		Body:   page.Body,
	})
}
