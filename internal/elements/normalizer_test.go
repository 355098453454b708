package elements

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/paulmach/orb"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

type recordingRenderer struct {
	snapshots []interfaces.RenderSnapshot
	inputs    []string
	wrap      string
	err       error
}

func (r *recordingRenderer) RenderText(_ context.Context, snap interfaces.RenderSnapshot, text string) (string, error) {
	r.snapshots = append(r.snapshots, snap)
	r.inputs = append(r.inputs, text)
	if r.err != nil {
		return "", r.err
	}
	if r.wrap == "" {
		return text, nil
	}
	return "<" + r.wrap + ">" + text + "</" + r.wrap + ">", nil
}

type stubFiles map[string]string

func (s stubFiles) FileURL(_ context.Context, ref string) (string, error) {
	if url, ok := s[ref]; ok {
		return url, nil
	}
	return "", errors.New("unknown file " + ref)
}

func TestCompose(t *testing.T) {
	cases := []struct {
		title, text, want string
	}{
		{"T", "", "T"},
		{"", "X", "X"},
		{"T", "X", "<b>T</b><hr />X"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := Compose(tc.title, tc.text); got != tc.want {
			t.Fatalf("Compose(%q, %q) = %q, want %q", tc.title, tc.text, got, tc.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<p><a href="/wiki/Berlin">Berlin</a> <em>Mitte</em></p>`)
	if got != "Berlin Mitte" {
		t.Fatalf("unexpected stripped title %q", got)
	}
	if StripTags("plain") != "plain" {
		t.Fatalf("expected plain text to pass through")
	}
	if got := StripTags(`<b>Say "hi"</b><script>alert(1)</script>`); got != "Say &#34;hi&#34;" {
		t.Fatalf("expected script body dropped and quotes encoded, got %q", got)
	}
}

func TestShapesComposeBeforeStrippingTitle(t *testing.T) {
	renderer := &recordingRenderer{}
	params := map[string]any{
		"lines": []Element{
			Line{
				Options: Options{Title: "<em>T</em>", Text: "X"},
				Stroke:  Stroke{Color: "#ff0000", Opacity: 1, Weight: 2},
				Path:    orb.LineString{{13.4, 52.5}, {2.35, 48.85}},
			},
		},
		"polygons":   []any{map[string]any{"title": "Area"}},
		"circles":    "not a collection",
		"rectangles": []any{42, Rectangle{Bound: orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}}},
	}

	if err := NewNormalizer(renderer).Shapes(context.Background(), interfaces.RenderSnapshot{PageTitle: "Trip"}, params); err != nil {
		t.Fatalf("Shapes: %v", err)
	}

	lines := params["lines"].([]Record)
	if lines[0]["text"] != "<b><em>T</em></b><hr />X" {
		t.Fatalf("unexpected composed text %q", lines[0]["text"])
	}
	if lines[0]["title"] != "T" {
		t.Fatalf("expected stripped title, got %q", lines[0]["title"])
	}
	pos := lines[0]["pos"].([]map[string]float64)
	if pos[0]["lat"] != 52.5 || pos[0]["lon"] != 13.4 {
		t.Fatalf("expected lat/lon order, got %v", pos[0])
	}

	polygons := params["polygons"].([]Record)
	if polygons[0]["text"] != "Area" || polygons[0]["title"] != "Area" {
		t.Fatalf("unexpected polygon record %v", polygons[0])
	}

	if params["circles"] != "not a collection" {
		t.Fatalf("expected non-slice collection to be left alone")
	}

	rectangles := params["rectangles"].([]Record)
	if len(rectangles) != 1 {
		t.Fatalf("expected unsupported item to be skipped, got %d records", len(rectangles))
	}
	if rectangles[0]["title"] != "" || rectangles[0]["text"] != "" {
		t.Fatalf("expected empty string fields, got %v", rectangles[0])
	}
}

func TestShapesTitleNeverContainsMarkup(t *testing.T) {
	renderer := &recordingRenderer{wrap: "p"}
	params := map[string]any{
		"circles": []any{Circle{Options: Options{Title: "<script>x()</script>Zone <b>A</b>"}, Radius: 100}},
	}

	if err := NewNormalizer(renderer).Shapes(context.Background(), interfaces.RenderSnapshot{}, params); err != nil {
		t.Fatalf("Shapes: %v", err)
	}
	title := params["circles"].([]Record)[0]["title"].(string)
	if strings.ContainsAny(title, "<>") {
		t.Fatalf("expected title without tags, got %q", title)
	}
}

func TestShapesPassSnapshotUnchanged(t *testing.T) {
	renderer := &recordingRenderer{}
	snap := interfaces.RenderSnapshot{PageTitle: "Trip", Locale: "de", Depth: 1}
	params := map[string]any{"lines": []any{Line{Options: Options{Title: "a", Text: "b"}}}}

	if err := NewNormalizer(renderer).Shapes(context.Background(), snap, params); err != nil {
		t.Fatalf("Shapes: %v", err)
	}
	for _, got := range renderer.snapshots {
		if !reflect.DeepEqual(got, snap) {
			t.Fatalf("expected snapshot %v, got %v", snap, got)
		}
	}
	if len(renderer.inputs) != 2 {
		t.Fatalf("expected title and text renders, got %v", renderer.inputs)
	}
}

func TestLocationsApplyDefaultsAndSanitizeInlineLabel(t *testing.T) {
	renderer := &recordingRenderer{}
	files := stubFiles{"Pin.png": "https://wiki.example.com/files/Pin.png"}

	own := NewLocation(52.52, 13.40)
	own.Title = "Berlin"
	own.Icon = "Pin.png"
	own.InlineLabel = `<a href="https://example.com/x">x</a><span>y</span><script>bad()</script>`

	plain := NewLocation(48.85, 2.35)

	records, err := NewNormalizer(renderer, WithFileResolver(files)).Locations(context.Background(), interfaces.RenderSnapshot{}, []Location{own, plain}, MarkerDefaults{
		Text:    "Capital",
		Title:   "Default",
		IconURL: "https://cdn.example.com/default.png",
	})
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}

	if records[0]["text"] != "<b>Berlin</b><hr />Capital" {
		t.Fatalf("unexpected text %q", records[0]["text"])
	}
	if records[0]["icon"] != "https://wiki.example.com/files/Pin.png" {
		t.Fatalf("expected resolved icon, got %v", records[0]["icon"])
	}
	label := records[0]["inlineLabel"].(string)
	if !strings.Contains(label, `href="https://example.com/x"`) || strings.Contains(label, "<span") || strings.Contains(label, "script") {
		t.Fatalf("unexpected inline label %q", label)
	}
	if !strings.Contains(label, "y") {
		t.Fatalf("expected text of stripped tags to be kept, got %q", label)
	}

	if records[1]["title"] != "Default" || records[1]["icon"] != "https://cdn.example.com/default.png" {
		t.Fatalf("expected defaults on second marker, got %v", records[1])
	}
	if records[1]["lat"] != 48.85 || records[1]["lon"] != 2.35 {
		t.Fatalf("unexpected coordinates %v", records[1])
	}
}

func TestLocationsWrapRendererErrors(t *testing.T) {
	renderer := &recordingRenderer{err: errors.New("boom")}
	loc := NewLocation(1, 1)
	loc.Title = "x"

	_, err := NewNormalizer(renderer).Locations(context.Background(), interfaces.RenderSnapshot{}, []Location{loc}, MarkerDefaults{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryInternal) {
		t.Fatalf("expected internal category, got %v", err)
	}
}

func TestToRecordClonesPlainRecords(t *testing.T) {
	src := map[string]any{"title": "a"}
	rec, ok := ToRecord(src)
	if !ok {
		t.Fatal("expected map to convert")
	}
	rec["title"] = "b"
	if src["title"] != "a" {
		t.Fatalf("expected source map to stay untouched")
	}
	if _, ok := ToRecord("string"); ok {
		t.Fatal("expected string to be rejected")
	}
}

func TestImageOverlayAndWMSRecords(t *testing.T) {
	overlay := ImageOverlay{
		Bound: orb.Bound{Min: orb.Point{2, 1}, Max: orb.Point{4, 3}},
		Image: "https://example.com/plan.png",
	}.Record()
	if overlay["image"] != "https://example.com/plan.png" {
		t.Fatalf("unexpected overlay %v", overlay)
	}
	if ne := overlay["ne"].(map[string]float64); ne["lat"] != 3 || ne["lon"] != 4 {
		t.Fatalf("unexpected north east corner %v", ne)
	}

	wms := WMSOverlay{ServerURL: "https://wms.example.com", Layer: "topo"}.Record()
	if wms["wmsServerUrl"] != "https://wms.example.com" || wms["wmsLayerName"] != "topo" {
		t.Fatalf("unexpected wms record %v", wms)
	}
}
