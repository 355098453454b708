package services

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

// GoogleMaps renders maps with the Google Maps v3 API.
type GoogleMaps struct {
	base
	apiKey   string
	mapType  string
	mapTypes []string
	script   string
}

// NewGoogleMaps builds the googlemaps3 provider.
func NewGoogleMaps(cfg runtimeconfig.GoogleMapsConfig, shared Shared) *GoogleMaps {
	return &GoogleMaps{
		base: base{
			name:    runtimeconfig.ServiceGoogleMaps,
			aliases: []string{"googlemaps", "google", "gmaps"},
			scripts: []string{"/maps/googlemaps3/ext.googlemaps3.js"},
			shared:  shared,
		},
		apiKey:   cfg.APIKey,
		mapType:  cfg.Type,
		mapTypes: append([]string(nil), cfg.Types...),
		script:   cfg.Script,
	}
}

func (g *GoogleMaps) ConfigVariables() map[string]any {
	return g.variables(map[string]any{
		"egGoogleJsApiKey":  g.apiKey,
		"egMapsGMaps3Type":  g.mapType,
		"egMapsGMaps3Types": append([]string(nil), g.mapTypes...),
	})
}

// AddDependencies loads the Google Maps API in the page language before the
// provider script.
func (g *GoogleMaps) AddDependencies(page *output.Page) {
	if page == nil {
		return
	}
	if src := g.apiURL(page.Locale); src != "" {
		page.AddScript(src)
	}
	g.base.AddDependencies(page)
}

// HandleLayers leaves Google layers as named; the client maps them to
// overlay types.
func (g *GoogleMaps) HandleLayers(_ *output.Page, params map[string]any, _ *layers.Resolver) {
	params["layers"] = StringList(params["layers"])
}

func (g *GoogleMaps) apiURL(locale string) string {
	if strings.TrimSpace(g.script) == "" {
		return ""
	}
	query := url.Values{}
	if g.apiKey != "" {
		query.Set("key", g.apiKey)
	}
	if locale = strings.TrimSpace(locale); locale != "" {
		query.Set("language", locale)
	}
	if len(query) == 0 {
		return g.script
	}
	return g.script + "?" + query.Encode()
}
