package shortcode

import (
	"context"
	"errors"
	"html/template"
	"testing"

	"github.com/goliatone/go-cms-maps/internal/display"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

type stubDirectiveParser struct {
	raw   map[string]any
	inner string
	err   error
}

func (p *stubDirectiveParser) Parse(raw map[string]any, inner string) (map[string]any, error) {
	p.raw = raw
	p.inner = inner
	if p.err != nil {
		return nil, p.err
	}
	return map[string]any{"parsed": true}, nil
}

type stubMapRenderer struct {
	page   *output.Page
	params display.Parameters
}

func (r *stubMapRenderer) RenderMap(_ context.Context, params display.Parameters, page *output.Page) (template.HTML, error) {
	r.page = page
	r.params = params
	return template.HTML(`<div class="maps-map"></div>`), nil
}

func TestMapDefinitionCarriesAliases(t *testing.T) {
	handler := MapHandler(&stubDirectiveParser{}, &stubMapRenderer{})
	def := MapDefinition(handler)
	if def.Name != MapDirectiveName || len(def.Aliases) != len(MapDirectiveAliases) {
		t.Fatalf("unexpected definition %s %v", def.Name, def.Aliases)
	}

	reg := NewRegistry(NewValidator())
	if err := RegisterBuiltIns(reg, handler, nil); err != nil {
		t.Fatalf("register built-ins: %v", err)
	}
	if len(reg.List()) != 1 {
		t.Fatalf("expected aliases folded into one definition, got %d", len(reg.List()))
	}
	for _, name := range append([]string{MapDirectiveName}, MapDirectiveAliases...) {
		def, ok := reg.Get(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if def.Name != MapDirectiveName || def.Handler == nil || !def.AllowInner || def.CacheTTL != 0 {
			t.Fatalf("unexpected definition for %s: %+v", name, def)
		}
	}
}

func TestRegisterBuiltInsSubset(t *testing.T) {
	handler := MapHandler(&stubDirectiveParser{}, &stubMapRenderer{})
	reg := NewRegistry(NewValidator())
	if err := RegisterBuiltIns(reg, handler, []string{"Display_Map", "display_line"}); err != nil {
		t.Fatalf("register subset: %v", err)
	}
	if _, ok := reg.Get("display_line"); !ok {
		t.Fatal("expected selected alias")
	}
	if _, ok := reg.Get("display_point"); ok {
		t.Fatal("expected unselected alias to stay unregistered")
	}

	err := RegisterBuiltIns(NewRegistry(NewValidator()), handler, []string{"youtube"})
	if !errors.Is(err, ErrUnknownDirective) {
		t.Fatalf("expected unknown built-in error, got %v", err)
	}
	if err := RegisterBuiltIns(NewRegistry(NewValidator()), nil, nil); err == nil {
		t.Fatal("expected error for missing handler")
	}
}

func TestMapDefinitionPassesUnknownParams(t *testing.T) {
	def := mapDefinition(MapDirectiveName, MapHandler(&stubDirectiveParser{}, &stubMapRenderer{}))
	params, err := NewValidator().CoerceParams(def, map[string]any{
		"param1":     "1,2",
		"clustering": "yes",
		"layers":     "osm, nasa",
	})
	if err != nil {
		t.Fatalf("CoerceParams() unexpected error: %v", err)
	}
	if params["param1"] != "1,2" || params["clustering"] != "yes" {
		t.Fatalf("expected unknown params to pass through, got %v", params)
	}
	layers, ok := params["layers"].([]any)
	if !ok || len(layers) != 2 || layers[1] != "nasa" {
		t.Fatalf("expected layers array, got %#v", params["layers"])
	}
}

func TestMapHandlerUsesContextPage(t *testing.T) {
	parser := &stubDirectiveParser{}
	renderer := &stubMapRenderer{}
	handler := MapHandler(parser, renderer)

	page := output.NewPage("Trips", "en")
	ctx := interfaces.ShortcodeContext{Context: output.WithPage(context.Background(), page), Locale: "en"}
	html, err := handler(ctx, map[string]any{"coordinates": "1,1"}, "2,2")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if html == "" {
		t.Fatal("expected rendered html")
	}
	if renderer.page != page {
		t.Fatal("expected page from context")
	}
	if parser.inner != "2,2" || parser.raw["coordinates"] != "1,1" {
		t.Fatalf("expected raw params and inner to reach the parser, got %v %q", parser.raw, parser.inner)
	}
	if renderer.params["parsed"] != true {
		t.Fatalf("expected parsed params to reach the renderer, got %v", renderer.params)
	}
}

func TestMapHandlerFallsBackToLocalePage(t *testing.T) {
	renderer := &stubMapRenderer{}
	handler := MapHandler(&stubDirectiveParser{}, renderer)

	if _, err := handler(interfaces.ShortcodeContext{Locale: "nl"}, nil, ""); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if renderer.page == nil || renderer.page.Locale != "nl" {
		t.Fatalf("expected throwaway page in render locale, got %+v", renderer.page)
	}
}

func TestMapHandlerReturnsParseErrors(t *testing.T) {
	wantErr := errors.New("bad zoom")
	handler := MapHandler(&stubDirectiveParser{err: wantErr}, &stubMapRenderer{})
	if _, err := handler(interfaces.ShortcodeContext{}, nil, ""); !errors.Is(err, wantErr) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestMapHandlerAppliesPageService(t *testing.T) {
	parser := &stubDirectiveParser{}
	handler := MapHandler(parser, &stubMapRenderer{})

	page := output.NewPage("Trips", "en")
	page.Service = "openlayers"
	ctx := interfaces.ShortcodeContext{Context: output.WithPage(context.Background(), page)}

	raw := map[string]any{"coordinates": "1,1"}
	if _, err := handler(ctx, raw, ""); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if parser.raw["mappingservice"] != "openlayers" {
		t.Fatalf("expected page service to fill the directive, got %v", parser.raw)
	}
	if _, ok := raw["mappingservice"]; ok {
		t.Fatal("expected caller params to stay untouched")
	}

	if _, err := handler(ctx, map[string]any{"MappingService": "googlemaps3"}, ""); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if parser.raw["MappingService"] != "googlemaps3" || parser.raw["mappingservice"] != nil {
		t.Fatalf("expected directive service to win, got %v", parser.raw)
	}
}
