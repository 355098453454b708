package directive

import (
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/elements"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

type stubServices struct{}

func (stubServices) Canonical(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "leaflet", "leafletjs":
		return "leaflet", true
	case "openlayers", "layers":
		return "openlayers", true
	default:
		return "", false
	}
}

func (stubServices) Default() string { return "leaflet" }

func newParser() *Parser {
	return NewParser(runtimeconfig.DefaultConfig(), stubServices{})
}

func TestParseAppliesDefaults(t *testing.T) {
	params, err := newParser().Parse(map[string]any{}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params["mappingservice"] != "leaflet" {
		t.Fatalf("expected default service, got %v", params["mappingservice"])
	}
	if params["width"] != "auto" || params["height"] != "350px" || params["zoom"] != -1 {
		t.Fatalf("unexpected defaults: %#v", params)
	}
	if params["centre"] != nil || params["wmsoverlay"] != nil {
		t.Fatalf("expected nil centre and wms overlay, got %#v", params)
	}
	locations, ok := params["coordinates"].([]elements.Location)
	if !ok || len(locations) != 0 {
		t.Fatalf("expected empty coordinates, got %#v", params["coordinates"])
	}
}

func TestParseAppendsPixelsToBareDimensions(t *testing.T) {
	params, err := newParser().Parse(map[string]any{"width": " 400 ", "height": "12.5em"}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params["width"] != "400px" || params["height"] != "12.5em" {
		t.Fatalf("unexpected dimensions: width=%v height=%v", params["width"], params["height"])
	}
}

func TestParseCoordinates(t *testing.T) {
	params, err := newParser().Parse(map[string]any{
		"Coordinates":    "52.37,4.89~Amsterdam~Capital~pin.png~cities~'''A'''; 48.85, 2.35",
		"MappingService": "LeafletJS",
	}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params["mappingservice"] != "leaflet" {
		t.Fatalf("expected alias to resolve, got %v", params["mappingservice"])
	}
	locations := params["coordinates"].([]elements.Location)
	if len(locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locations))
	}
	first := locations[0]
	if first.Point.Lat() != 52.37 || first.Point.Lon() != 4.89 {
		t.Fatalf("unexpected point: %v", first.Point)
	}
	if first.Title != "Amsterdam" || first.Text != "Capital" || first.Icon != "pin.png" || first.Group != "cities" || first.InlineLabel != "'''A'''" {
		t.Fatalf("unexpected location fields: %+v", first)
	}
	if locations[1].Title != "" || locations[1].Point.Lat() != 48.85 {
		t.Fatalf("unexpected second location: %+v", locations[1])
	}
}

func TestParsePositionalAndInnerCoordinates(t *testing.T) {
	params, err := newParser().Parse(map[string]any{PositionalParam: "1,2"}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(params["coordinates"].([]elements.Location)) != 1 {
		t.Fatalf("expected positional coordinates")
	}
	if _, ok := params[PositionalParam]; ok {
		t.Fatalf("expected positional key to be removed")
	}

	params, err = newParser().Parse(map[string]any{}, " 3,4; 5,6 ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(params["coordinates"].([]elements.Location)) != 2 {
		t.Fatalf("expected inner content coordinates")
	}
}

func TestParseShapes(t *testing.T) {
	params, err := newParser().Parse(map[string]any{
		"lines":         "1,1:2,2:3,3~Route~Text~#00FF00~0.8~4",
		"polygons":      "0,0:0,1:1,1~Area~~~~~#0000FF~0.2~yes",
		"circles":       "10,10:500~Circle",
		"rectangles":    "1,1:0,0~Box",
		"imageoverlays": "1,1:0,0:https://example.com/overlay.png~Overlay",
		"wmsoverlay":    "https://wms.example.com~roads~default",
		"centre":        "10,20",
	}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	lines := params["lines"].([]elements.Line)
	if len(lines) != 1 || len(lines[0].Path) != 3 || lines[0].Stroke.Color != "#00FF00" || lines[0].Stroke.Weight != 4 {
		t.Fatalf("unexpected lines: %+v", lines)
	}

	polygons := params["polygons"].([]elements.Polygon)
	if len(polygons) != 1 || !polygons[0].OnlyVisibleOnHover || polygons[0].Fill.Color != "#0000FF" {
		t.Fatalf("unexpected polygons: %+v", polygons)
	}
	if ring := polygons[0].Ring; len(ring) != 4 || ring[0] != ring[3] {
		t.Fatalf("expected closed ring, got %v", ring)
	}
	if polygons[0].Stroke != DefaultStroke {
		t.Fatalf("expected default stroke, got %+v", polygons[0].Stroke)
	}

	circles := params["circles"].([]elements.Circle)
	if len(circles) != 1 || circles[0].Radius != 500 || circles[0].Fill != DefaultFill {
		t.Fatalf("unexpected circles: %+v", circles)
	}

	rectangles := params["rectangles"].([]elements.Rectangle)
	rec := rectangles[0].Record()
	ne := rec["ne"].(map[string]float64)
	if ne["lat"] != 1 || ne["lon"] != 1 {
		t.Fatalf("expected north-east corner from bound, got %v", ne)
	}

	overlays := params["imageoverlays"].([]elements.ImageOverlay)
	if overlays[0].Image != "https://example.com/overlay.png" {
		t.Fatalf("expected image url with colon kept, got %q", overlays[0].Image)
	}

	wms := params["wmsoverlay"].(elements.WMSOverlay)
	if wms.ServerURL != "https://wms.example.com" || wms.Layer != "roads" || wms.Style != "default" {
		t.Fatalf("unexpected wms overlay: %+v", wms)
	}

	centre := params["centre"].(elements.Location)
	if centre.Point.Lat() != 10 || centre.Point.Lon() != 20 {
		t.Fatalf("unexpected centre: %+v", centre)
	}
}

func TestParsePassThroughParams(t *testing.T) {
	params, err := newParser().Parse(map[string]any{
		"layers":     "OpenStreetMap, Esri.WorldImagery",
		"clustering": "on",
		"type":       " satellite ",
		"zoom":       "7",
	}, "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	layers := params["layers"].([]string)
	if len(layers) != 2 || layers[1] != "Esri.WorldImagery" {
		t.Fatalf("unexpected layers: %#v", layers)
	}
	if params["clustering"] != true {
		t.Fatalf("expected bool clustering, got %#v", params["clustering"])
	}
	if params["type"] != "satellite" {
		t.Fatalf("expected trimmed passthrough, got %#v", params["type"])
	}
	if params["zoom"] != 7 {
		t.Fatalf("expected int zoom, got %#v", params["zoom"])
	}
}

func TestParseCollectsValidationErrors(t *testing.T) {
	_, err := newParser().Parse(map[string]any{
		"width":          "wide",
		"zoom":           "30",
		"coordinates":    "95,10",
		"mappingservice": "yandex",
		"lines":          "1,1",
	}, "")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	var coded *goerrors.Error
	if !errors.As(err, &coded) || coded.TextCode != InvalidCode {
		t.Fatalf("expected text code %s, got %v", InvalidCode, err)
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors to be wrapped, got %T", err)
	}
	for _, key := range []string{"width", "zoom", "coordinates", "mappingservice", "lines"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected error for %s, got %v", key, fields)
		}
	}
}

func TestParseRejectsMalformedSyntax(t *testing.T) {
	cases := map[string]string{
		"coordinates":   "abc",
		"circles":       "1,1:-5",
		"polygons":      "1,1:2,2",
		"imageoverlays": "1,1:2,2",
		"wmsoverlay":    "https://wms.example.com",
		"centre":        "1;2",
	}
	for key, value := range cases {
		if _, err := newParser().Parse(map[string]any{key: value}, ""); err == nil {
			t.Fatalf("expected %s=%q to fail", key, value)
		}
	}
}

func TestParsePoint(t *testing.T) {
	point, err := ParsePoint(" 52.5 , -1.25 ")
	if err != nil {
		t.Fatalf("ParsePoint: %v", err)
	}
	if point.Lat() != 52.5 || point.Lon() != -1.25 {
		t.Fatalf("unexpected point %v", point)
	}
	if _, err := ParsePoint("1,2,3"); err == nil {
		t.Fatalf("expected error for three components")
	}
}
