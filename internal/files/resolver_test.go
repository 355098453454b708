package files

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

func newTestResolver(route string) *Resolver {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "files",
				BaseURL: "https://wiki.example.com",
				Paths: map[string]string{
					"file": "/files/:name",
				},
			},
		},
	})
	return NewResolver(ResolverOptions{
		Manager: manager,
		Group:   "files",
		Route:   route,
		Param:   "name",
	})
}

func TestFileURLBuildsRoute(t *testing.T) {
	resolver := newTestResolver("file")

	got, err := resolver.FileURL(context.Background(), "File:Marker_red.png")
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	if got != "https://wiki.example.com/files/Marker_red.png" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestFileURLPassesThroughURLs(t *testing.T) {
	resolver := newTestResolver("file")

	for _, ref := range []string{"https://cdn.example.com/pin.png", "/static/pin.png", "HTTP://example.com/a.png"} {
		got, err := resolver.FileURL(context.Background(), ref)
		if err != nil {
			t.Fatalf("FileURL(%q): %v", ref, err)
		}
		if got != ref {
			t.Fatalf("expected %q unchanged, got %q", ref, got)
		}
	}
}

func TestFileURLEmptyReference(t *testing.T) {
	resolver := newTestResolver("file")
	got, err := resolver.FileURL(context.Background(), "  ")
	if err != nil || got != "" {
		t.Fatalf("expected empty url, got %q, %v", got, err)
	}
}

func TestFileURLUnknownRoute(t *testing.T) {
	resolver := newTestResolver("missing")

	_, err := resolver.FileURL(context.Background(), "pin.png")
	if err == nil {
		t.Fatalf("expected error for unknown route")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryInternal) {
		t.Fatalf("expected internal category, got %v", err)
	}
}

func TestFileURLWithoutManagerKeepsReference(t *testing.T) {
	resolver := NewResolver(ResolverOptions{})
	got, err := resolver.FileURL(context.Background(), "pin.png")
	if err != nil || got != "pin.png" {
		t.Fatalf("expected reference back, got %q, %v", got, err)
	}
}

func TestNewResolverFromConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig().Files
	cfg.BaseURL = "https://maps.example.com"

	got, err := NewResolverFromConfig(cfg).FileURL(context.Background(), "Image:Blue pin.png")
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	if got != "https://maps.example.com/files/Blue_pin.png" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"File:My pin.png":  "My_pin.png",
		"image: photo.jpg": "photo.jpg",
		"plain.png":        "plain.png",
	}
	for input, want := range cases {
		if got := FileName(input); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", input, got, want)
		}
	}
}
