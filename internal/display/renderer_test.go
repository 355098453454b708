package display_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/display"
	"github.com/goliatone/go-cms-maps/internal/elements"
	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
	"github.com/goliatone/go-cms-maps/internal/services"
	"github.com/goliatone/go-cms-maps/internal/textrender"
	"github.com/goliatone/go-cms-maps/internal/validation"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

type recordingContent struct {
	snapshots []interfaces.RenderSnapshot
	err       error
}

func (r *recordingContent) RenderText(_ context.Context, snapshot interfaces.RenderSnapshot, text string) (string, error) {
	r.snapshots = append(r.snapshots, snapshot)
	if r.err != nil {
		return "", r.err
	}
	return strings.ReplaceAll(text, "''", ""), nil
}

type prefixFiles struct{}

func (prefixFiles) FileURL(_ context.Context, reference string) (string, error) {
	return "https://files.example.com/" + strings.TrimPrefix(reference, "File:"), nil
}

type countingMetrics struct {
	maps     map[string]int
	elements int
	errors   map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{maps: map[string]int{}, errors: map[string]int{}}
}

func (m *countingMetrics) ObserveMap(service string, elements int) {
	m.maps[service]++
	m.elements += elements
}

func (m *countingMetrics) IncrementMapError(service string) {
	m.errors[service]++
}

func newRenderer(t *testing.T, content interfaces.ContentRenderer, opts ...display.Option) *display.Renderer {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	registry, err := services.NewDefaultRegistry(cfg)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	base := []display.Option{
		display.WithLayerResolver(layers.NewResolver(cfg.Catalog())),
		display.WithFileResolver(prefixFiles{}),
	}
	return display.NewRenderer(registry, content, append(base, opts...)...)
}

func baseParams(service string) display.Parameters {
	return display.Parameters{
		"mappingservice": service,
		"width":          "auto",
		"height":         "350px",
		"zoom":           -1,
		"title":          "",
		"label":          "",
		"icon":           "",
		"visitedicon":    "",
		"centre":         nil,
		"wmsoverlay":     nil,
		"coordinates":    []elements.Location{},
	}
}

func parseFragment(t *testing.T, fragment string) (*goquery.Selection, map[string]any) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	container := doc.Find("div.maps-map").First()
	if container.Length() != 1 {
		t.Fatalf("expected map container in %s", fragment)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(container.Find("div.mapdata").Text()), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return container, payload
}

func TestRenderMapEmitsContainerAndPayload(t *testing.T) {
	content := &recordingContent{}
	metrics := newCountingMetrics()
	renderer := newRenderer(t, content, display.WithMetrics(metrics))
	page := output.NewPage("Places", "en")

	params := baseParams("leaflet")
	params["title"] = "Popup"
	params["label"] = "Hover"
	params["icon"] = "File:Marker red.png"
	amsterdam := elements.NewLocation(52.37, 4.89)
	amsterdam.Title = "Amsterdam"
	amsterdam.Text = "''Capital''"
	params["coordinates"] = []elements.Location{amsterdam, elements.NewLocation(48.85, 2.35)}
	params["centre"] = elements.NewLocation(50, 3)

	fragment, err := renderer.RenderMap(context.Background(), params, page)
	if err != nil {
		t.Fatalf("RenderMap: %v", err)
	}

	container, payload := parseFragment(t, string(fragment))
	if id, _ := container.Attr("id"); id != "map_leaflet_1" {
		t.Fatalf("expected map_leaflet_1, got %q", id)
	}
	if class, _ := container.Attr("class"); class != "maps-map maps-leaflet" {
		t.Fatalf("unexpected class %q", class)
	}
	style, _ := container.Attr("style")
	for _, want := range []string{"width: auto", "height: 350px", "background-color: #cccccc", "overflow: hidden"} {
		if !strings.Contains(style, want) {
			t.Fatalf("expected style to contain %q, got %q", want, style)
		}
	}
	if hidden, _ := container.Find("div.mapdata").Attr("style"); hidden != "display:none" {
		t.Fatalf("expected hidden payload element, got %q", hidden)
	}
	if !strings.HasPrefix(container.Text(), "Loading map...") {
		t.Fatalf("expected loading message, got %q", container.Text())
	}

	if _, ok := payload["coordinates"]; ok {
		t.Fatalf("coordinates should be replaced by locations")
	}
	locations := payload["locations"].([]any)
	if len(locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locations))
	}
	first := locations[0].(map[string]any)
	if first["title"] != "Amsterdam" || first["text"] != "<b>Amsterdam</b><hr />Capital" {
		t.Fatalf("unexpected first marker: %v", first)
	}
	if first["icon"] != "https://files.example.com/Marker red.png" {
		t.Fatalf("expected resolved default icon, got %v", first["icon"])
	}
	second := locations[1].(map[string]any)
	if second["title"] != "Hover" || second["text"] != "<b>Hover</b><hr />Popup" {
		t.Fatalf("expected directive defaults on second marker, got %v", second)
	}
	if payload["icon"] != "https://files.example.com/Marker red.png" {
		t.Fatalf("expected resolved icon param, got %v", payload["icon"])
	}
	centre := payload["centre"].(map[string]any)
	if centre["lat"] != float64(50) || centre["lon"] != float64(3) {
		t.Fatalf("unexpected centre: %v", centre)
	}
	if payload["wmsoverlay"] != nil {
		t.Fatalf("expected null wms overlay, got %v", payload["wmsoverlay"])
	}
	if layers := payload["layers"].([]any); len(layers) != 1 || layers[0] != "OpenStreetMap" {
		t.Fatalf("expected default leaflet layers, got %v", payload["layers"])
	}

	if len(content.snapshots) == 0 || content.snapshots[0].PageTitle != "Places" || content.snapshots[0].Depth != 0 {
		t.Fatalf("expected page snapshot to reach the content renderer, got %+v", content.snapshots)
	}
	if metrics.maps["leaflet"] != 1 || metrics.elements != 2 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestRenderMapRegistersProviderOutput(t *testing.T) {
	renderer := newRenderer(t, nil)
	page := output.NewPage("Places", "en")

	for i := 0; i < 2; i++ {
		if _, err := renderer.RenderMap(context.Background(), baseParams("leafletjs"), page); err != nil {
			t.Fatalf("RenderMap: %v", err)
		}
	}

	scripts := page.Scripts()
	if len(scripts) != 2 || scripts[0] != "/maps/leaflet/leaflet.js" {
		t.Fatalf("expected deduplicated leaflet scripts, got %v", scripts)
	}
	if styles := page.Stylesheets(); len(styles) != 1 {
		t.Fatalf("expected one stylesheet, got %v", styles)
	}
	items := page.HeadItems()
	if len(items) != 1 || !strings.Contains(items[0], "window.egMapsLeafletLayersApiKeys") {
		t.Fatalf("expected one variables block, got %v", items)
	}

	fragment, err := renderer.RenderMap(context.Background(), baseParams("leaflet"), page)
	if err != nil {
		t.Fatalf("RenderMap: %v", err)
	}
	container, _ := parseFragment(t, string(fragment))
	if id, _ := container.Attr("id"); id != "map_leaflet_3" {
		t.Fatalf("expected third map id, got %q", id)
	}
}

func TestRenderMapResolvesOpenLayersLayers(t *testing.T) {
	renderer := newRenderer(t, nil)
	page := output.NewPage("", "en")

	params := baseParams("layers")
	params["layers"] = []string{"OSM", "nasa", "osm-mapnik", "unknown"}

	fragment, err := renderer.RenderMap(context.Background(), params, page)
	if err != nil {
		t.Fatalf("RenderMap: %v", err)
	}
	container, payload := parseFragment(t, string(fragment))
	if class, _ := container.Attr("class"); class != "maps-map maps-openlayers" {
		t.Fatalf("unexpected class %q", class)
	}
	if payload["mappingservice"] != "openlayers" {
		t.Fatalf("expected canonical service, got %v", payload["mappingservice"])
	}
	constructors := payload["layers"].([]any)
	if len(constructors) != 3 {
		t.Fatalf("expected 3 constructors, got %v", constructors)
	}
	if !strings.HasPrefix(constructors[0].(string), "new OpenLayers.Layer.OSM.Mapnik") {
		t.Fatalf("unexpected first constructor %v", constructors[0])
	}

	scripts := page.Scripts()
	if scripts[0] != "/maps/openlayers/OSM/OpenStreetMap.js" {
		t.Fatalf("expected layer dependency before provider scripts, got %v", scripts)
	}
	if len(scripts) != 3 {
		t.Fatalf("expected one layer dependency plus two provider scripts, got %v", scripts)
	}
}

func TestRenderMapNormalizesShapes(t *testing.T) {
	renderer := newRenderer(t, &recordingContent{})
	params := baseParams("leaflet")
	params["lines"] = []elements.Line{{
		Options: elements.Options{Title: "<i>Route</i>", Text: "Walk"},
		Stroke:  elements.Stroke{Color: "#00FF00", Opacity: 1, Weight: 3},
	}}
	params["polygons"] = []any{map[string]any{"title": "Plain"}}

	fragment, err := renderer.RenderMap(context.Background(), params, output.NewPage("", ""))
	if err != nil {
		t.Fatalf("RenderMap: %v", err)
	}
	_, payload := parseFragment(t, string(fragment))

	line := payload["lines"].([]any)[0].(map[string]any)
	if line["title"] != "Route" {
		t.Fatalf("expected stripped title, got %v", line["title"])
	}
	if line["text"] != "<b><i>Route</i></b><hr />Walk" {
		t.Fatalf("expected composed text to keep markup, got %v", line["text"])
	}
	polygon := payload["polygons"].([]any)[0].(map[string]any)
	if polygon["title"] != "Plain" || polygon["text"] != "Plain" {
		t.Fatalf("unexpected polygon record: %v", polygon)
	}
}

func TestRenderMapLocalizesLoadingMessage(t *testing.T) {
	renderer := newRenderer(t, nil)
	fragment, err := renderer.RenderMap(context.Background(), baseParams("leaflet"), output.NewPage("Lugares", "es-MX"))
	if err != nil {
		t.Fatalf("RenderMap: %v", err)
	}
	container, _ := parseFragment(t, string(fragment))
	if !strings.HasPrefix(container.Text(), "Cargando mapa...") {
		t.Fatalf("expected Spanish loading message, got %q", container.Text())
	}
}

func TestRenderMapUsesContextSnapshotAndPage(t *testing.T) {
	content := &recordingContent{}
	renderer := newRenderer(t, content)
	page := output.NewPage("Outer", "en")

	ctx := output.WithPage(context.Background(), page)
	ctx = textrender.ContextWithSnapshot(ctx, textrender.Snapshot{PageTitle: "Outer", Locale: "de", Depth: 2})

	params := baseParams("leaflet")
	params["coordinates"] = []elements.Location{elements.NewLocation(1, 1)}
	params["title"] = "Nested"

	fragment, err := renderer.RenderMap(ctx, params, nil)
	if err != nil {
		t.Fatalf("RenderMap: %v", err)
	}
	container, _ := parseFragment(t, string(fragment))
	if !strings.HasPrefix(container.Text(), "Karte wird geladen") {
		t.Fatalf("expected locale from snapshot, got %q", container.Text())
	}
	if len(content.snapshots) == 0 || content.snapshots[0].Depth != 2 {
		t.Fatalf("expected nested depth to be kept, got %+v", content.snapshots)
	}
	if len(page.Scripts()) == 0 {
		t.Fatalf("expected dependencies on the context page")
	}
}

func TestRenderMapGoogleMapsLoadsAPIInPageLanguage(t *testing.T) {
	renderer := newRenderer(t, nil)
	page := output.NewPage("", "fr")
	if _, err := renderer.RenderMap(context.Background(), baseParams("gmaps"), page); err != nil {
		t.Fatalf("RenderMap: %v", err)
	}
	scripts := page.Scripts()
	if len(scripts) != 2 || scripts[0] != "https://maps.googleapis.com/maps/api/js?language=fr" {
		t.Fatalf("unexpected google scripts: %v", scripts)
	}
}

func TestRenderMapWrapsContentErrors(t *testing.T) {
	metrics := newCountingMetrics()
	renderer := newRenderer(t, &recordingContent{err: errors.New("boom")}, display.WithMetrics(metrics))
	params := baseParams("leaflet")
	params["title"] = "Broken"
	params["coordinates"] = []elements.Location{elements.NewLocation(1, 1)}

	_, err := renderer.RenderMap(context.Background(), params, output.NewPage("", ""))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryInternal) {
		t.Fatalf("expected internal category, got %v", err)
	}
	if metrics.errors["leaflet"] != 1 {
		t.Fatalf("expected error metric, got %+v", metrics.errors)
	}
}

func TestRenderMapValidatesPayload(t *testing.T) {
	validator, err := validation.NewPayloadValidator([]byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {"zoom": {"type": "integer", "maximum": 5}}
	}`))
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	renderer := newRenderer(t, nil, display.WithPayloadValidator(validator))
	params := baseParams("leaflet")
	params["zoom"] = 10

	_, err = renderer.RenderMap(context.Background(), params, output.NewPage("", ""))
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(validation.Issues(err)) == 0 {
		t.Fatalf("expected schema issues")
	}
}

func TestRenderMapAcceptsDefaultSchema(t *testing.T) {
	validator, err := validation.DefaultPayloadValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	renderer := newRenderer(t, nil, display.WithPayloadValidator(validator))
	params := baseParams("openlayers")
	params["coordinates"] = []elements.Location{elements.NewLocation(1, 2)}
	params["circles"] = []elements.Circle{{Options: elements.Options{Title: "Zone"}, Radius: 10}}

	if _, err := renderer.RenderMap(context.Background(), params, output.NewPage("", "")); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestRenderMapReportsMissingService(t *testing.T) {
	renderer := display.NewRenderer(services.NewRegistry("leaflet"), nil)
	_, err := renderer.RenderMap(context.Background(), baseParams("leaflet"), nil)
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}
