package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHugoParser_Extract(t *testing.T) {
	parser := NewHugoParser()

	input := mustReadFile(t, "hugo_basic_input.txt")
	wantOutput := mustReadFile(t, "hugo_basic_output.golden")

	gotContent, shortcodes, err := parser.Extract(input)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	if strings.TrimSpace(gotContent) != strings.TrimSpace(wantOutput) {
		t.Fatalf("Extract() output mismatch\n got: %q\nwant: %q", gotContent, wantOutput)
	}

	if len(shortcodes) != 2 {
		t.Fatalf("expected 2 shortcodes, got %d", len(shortcodes))
	}
	if shortcodes[0].Name != "display_map" {
		t.Fatalf("expected first shortcode display_map, got %s", shortcodes[0].Name)
	}
	if got := shortcodes[0].Params["coordinates"]; got != "52.37,4.89~Amsterdam~Capital city; 48.85,2.35~Paris" {
		t.Fatalf("expected quoted coordinates to keep spaces, got %q", got)
	}
	if got := shortcodes[0].Params["zoom"]; got != "6" {
		t.Fatalf("expected unquoted zoom, got %q", got)
	}
	if shortcodes[1].Inner != "51.5,-0.12" {
		t.Fatalf("expected inner content '51.5,-0.12', got %q", shortcodes[1].Inner)
	}
}

func TestHugoParser_Mismatched(t *testing.T) {
	parser := NewHugoParser()
	input := "{{< display_map >}}1,1{{< /display_line >}}"

	if _, _, err := parser.Extract(input); err == nil {
		t.Fatal("expected error for mismatched shortcode closure")
	}
}

func TestHugoParser_QuotedAngleBracket(t *testing.T) {
	parser := NewHugoParser()
	input := `{{< display_map title="a > b" >}}`

	_, shortcodes, err := parser.Extract(input)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if len(shortcodes) != 1 || shortcodes[0].Params["title"] != "a > b" {
		t.Fatalf("expected quoted > to stay inside the value, got %+v", shortcodes)
	}
}

func TestParseParams(t *testing.T) {
	params := parseParams(`"1,2~Home base" zoom=4 title='It''s here' label="" 3,4`)

	if params["param1"] != "1,2~Home base" {
		t.Fatalf("expected first positional param, got %q", params["param1"])
	}
	if params["param2"] != "3,4" {
		t.Fatalf("expected second positional param, got %q", params["param2"])
	}
	if params["zoom"] != "4" {
		t.Fatalf("expected zoom 4, got %q", params["zoom"])
	}
	if params["title"] != "It''s here" {
		t.Fatalf("expected single quoted title, got %q", params["title"])
	}
	if value, ok := params["label"]; !ok || value != "" {
		t.Fatalf("expected empty label, got %q", value)
	}
}

func TestHugoParser_NestedInnerKeepsPlaceholders(t *testing.T) {
	parser := NewHugoParser()
	input := "{{< display_map >}}a {{< display_point coordinates=1,1 >}} b{{< /display_map >}}"

	got, shortcodes, err := parser.Extract(input)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if got != Placeholder(1) {
		t.Fatalf("expected outer placeholder only, got %q", got)
	}
	if len(shortcodes) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(shortcodes))
	}
	if shortcodes[1].Inner != "a "+Placeholder(0)+" b" {
		t.Fatalf("unexpected inner %q", shortcodes[1].Inner)
	}
}

func TestHugoParser_UnexpectedClosing(t *testing.T) {
	parser := NewHugoParser()
	if _, _, err := parser.Extract("text {{< /display_map >}}"); err == nil {
		t.Fatal("expected error for closing tag without opener")
	}
}

func mustReadFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
