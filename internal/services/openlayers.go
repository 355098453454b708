package services

import (
	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

// OpenLayers renders maps with OpenLayers. Its layers are constructor
// expressions resolved from the layer catalog.
type OpenLayers struct {
	base
	layers []string
}

// NewOpenLayers builds the openlayers provider.
func NewOpenLayers(cfg runtimeconfig.OpenLayersConfig, shared Shared) *OpenLayers {
	return &OpenLayers{
		base: base{
			name:        runtimeconfig.ServiceOpenLayers,
			aliases:     []string{"layers", "openlayer"},
			scripts:     append([]string(nil), cfg.Scripts...),
			stylesheets: append([]string(nil), cfg.Stylesheets...),
			shared:      shared,
		},
		layers: append([]string(nil), cfg.Layers...),
	}
}

func (o *OpenLayers) ConfigVariables() map[string]any {
	return o.variables(map[string]any{
		"egMapsOLDefaultLayers": append([]string(nil), o.layers...),
	})
}

// HandleLayers replaces the requested layer names with constructor
// expressions and registers the scripts those layers depend on.
func (o *OpenLayers) HandleLayers(page *output.Page, params map[string]any, resolver *layers.Resolver) {
	requested := StringList(params["layers"])
	if len(requested) == 0 {
		requested = append([]string(nil), o.layers...)
	}
	if resolver == nil {
		params["layers"] = []string{}
		return
	}
	resolution := resolver.Resolve(requested)
	params["layers"] = resolution.Constructors
	o.AddLayerDependencies(page, resolution.Dependencies)
}
