package shortcode

import (
	"context"
	"html/template"
	"strings"

	"github.com/goliatone/go-cms-maps/internal/display"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// MapDirectiveName is the primary map directive.
const MapDirectiveName = "display_map"

// MapDirectiveAliases render exactly like display_map.
var MapDirectiveAliases = []string{"display_point", "display_points", "display_line"}

// DirectiveParser turns raw directive parameters into render parameters.
type DirectiveParser interface {
	Parse(raw map[string]any, inner string) (map[string]any, error)
}

// MapRenderer renders parsed directive parameters into a map fragment.
type MapRenderer interface {
	RenderMap(ctx context.Context, params display.Parameters, page *output.Page) (template.HTML, error)
}

// MapHandler parses a directive and renders it on the page carried by the
// render context. Without a page a throwaway one in the render locale is used,
// so head output is lost.
func MapHandler(parser DirectiveParser, renderer MapRenderer) interfaces.ShortcodeHandler {
	return func(ctx interfaces.ShortcodeContext, params map[string]any, inner string) (template.HTML, error) {
		base := ctx.Context
		if base == nil {
			base = context.Background()
		}
		page, ok := output.FromContext(base)
		if !ok {
			page = output.NewPage("", ctx.Locale)
		}
		parsed, err := parser.Parse(withPageService(params, page), inner)
		if err != nil {
			return "", err
		}
		return renderer.RenderMap(base, parsed, page)
	}
}

func withPageService(params map[string]any, page *output.Page) map[string]any {
	if page == nil || strings.TrimSpace(page.Service) == "" {
		return params
	}
	for key := range params {
		if strings.EqualFold(key, "mappingservice") {
			return params
		}
	}
	out := make(map[string]any, len(params)+1)
	for key, value := range params {
		out[key] = value
	}
	out["mappingservice"] = page.Service
	return out
}

// MapDefinition returns display_map with its aliases bound to handler.
func MapDefinition(handler interfaces.ShortcodeHandler) interfaces.ShortcodeDefinition {
	def := mapDefinition(MapDirectiveName, handler)
	def.Aliases = append([]string(nil), MapDirectiveAliases...)
	return def
}

func mapDefinition(name string, handler interfaces.ShortcodeHandler) interfaces.ShortcodeDefinition {
	str := func(param string) interfaces.ShortcodeParam {
		return interfaces.ShortcodeParam{Name: param, Type: interfaces.ShortcodeParamString}
	}
	return interfaces.ShortcodeDefinition{
		Name:        name,
		Version:     "1.0.0",
		Description: "Renders an interactive map with markers, shapes and overlays",
		Category:    "maps",
		Icon:        "map",
		AllowInner:  true,
		// Maps register head output on the page, so rendered fragments
		// are never cached.
		CacheTTL: 0,
		Schema: interfaces.ShortcodeSchema{
			Params: []interfaces.ShortcodeParam{
				str("coordinates"),
				str("mappingservice"),
				str("width"),
				str("height"),
				str("zoom"),
				str("centre"),
				str("title"),
				str("label"),
				str("icon"),
				str("visitedicon"),
				str("lines"),
				str("polygons"),
				str("circles"),
				str("rectangles"),
				str("imageoverlays"),
				str("wmsoverlay"),
				{Name: "layers", Type: interfaces.ShortcodeParamArray},
			},
			AllowUnknown: true,
		},
		Handler: handler,
	}
}
