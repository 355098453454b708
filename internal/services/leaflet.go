package services

import (
	"fmt"
	"net/url"

	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

// MapQuestKey is the leaflet API key entry enabling the MapQuest SDK.
const MapQuestKey = "MapQuestOpen"

const mapQuestSDK = "https://open.mapquestapi.com/sdk/leaflet/v2.2/mq-map.js"

// Leaflet renders maps with Leaflet.
type Leaflet struct {
	base
	apiKeys map[string]string
	layers  []string
}

// NewLeaflet builds the leaflet provider.
func NewLeaflet(cfg runtimeconfig.LeafletConfig, shared Shared) *Leaflet {
	keys := make(map[string]string, len(cfg.APIKeys))
	for name, key := range cfg.APIKeys {
		keys[name] = key
	}
	return &Leaflet{
		base: base{
			name:        runtimeconfig.ServiceLeaflet,
			aliases:     []string{"leafletjs"},
			scripts:     append([]string(nil), cfg.Scripts...),
			stylesheets: append([]string(nil), cfg.Stylesheets...),
			shared:      shared,
		},
		apiKeys: keys,
		layers:  append([]string(nil), cfg.Layers...),
	}
}

func (l *Leaflet) ConfigVariables() map[string]any {
	keys := make(map[string]string, len(l.apiKeys))
	for name, key := range l.apiKeys {
		keys[name] = key
	}
	return l.variables(map[string]any{
		"egMapsLeafletLayersApiKeys": keys,
	})
}

// HandleLayers fills in the default tile layers and, when a MapQuest key is
// configured, loads the MapQuest SDK.
func (l *Leaflet) HandleLayers(page *output.Page, params map[string]any, _ *layers.Resolver) {
	requested := StringList(params["layers"])
	if len(requested) == 0 {
		requested = append([]string(nil), l.layers...)
	}
	params["layers"] = requested

	key := l.apiKeys[MapQuestKey]
	if key == "" {
		return
	}
	tag := fmt.Sprintf("<script src=\"%s?key=%s\"></script>", mapQuestSDK, url.QueryEscape(key))
	l.AddLayerDependencies(page, []string{tag})
}
