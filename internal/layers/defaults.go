package layers

// DefaultGroups is the stock OpenLayers group table.
func DefaultGroups() map[string][]string {
	return map[string][]string{
		"osm":    {"osm-mapnik", "osm-cyclemap"},
		"google": {"google-normal", "google-satellite", "google-terrain", "google-hybrid"},
		"bing":   {"bing-normal", "bing-satellite", "bing-hybrid"},
	}
}

// DefaultLayers is the stock OpenLayers layer table.
func DefaultLayers() map[string]Definition {
	return map[string]Definition{
		"osm-mapnik":       {Constructor: `OpenLayers.Layer.OSM.Mapnik("OSM Mapnik")`, Dependency: "osm"},
		"osm-cyclemap":     {Constructor: `OpenLayers.Layer.OSM.CycleMap("OSM Cycle Map")`, Dependency: "osm"},
		"google-normal":    {Constructor: `OpenLayers.Layer.Google("Google Streets", {numZoomLevels: 20})`, Dependency: "google"},
		"google-satellite": {Constructor: `OpenLayers.Layer.Google("Google Satellite", {type: google.maps.MapTypeId.SATELLITE, numZoomLevels: 22})`, Dependency: "google"},
		"google-hybrid":    {Constructor: `OpenLayers.Layer.Google("Google Hybrid", {type: google.maps.MapTypeId.HYBRID, numZoomLevels: 20})`, Dependency: "google"},
		"google-terrain":   {Constructor: `OpenLayers.Layer.Google("Google Terrain", {type: google.maps.MapTypeId.TERRAIN, numZoomLevels: 22})`, Dependency: "google"},
		"bing-normal":      {Constructor: `OpenLayers.Layer.VirtualEarth("Bing Streets", {type: VEMapStyle.Shaded, sphericalMercator: true})`, Dependency: "bing"},
		"bing-satellite":   {Constructor: `OpenLayers.Layer.VirtualEarth("Bing Satellite", {type: VEMapStyle.Aerial, sphericalMercator: true})`, Dependency: "bing"},
		"bing-hybrid":      {Constructor: `OpenLayers.Layer.VirtualEarth("Bing Hybrid", {type: VEMapStyle.Hybrid, sphericalMercator: true})`, Dependency: "bing"},
		"nasa":             {Constructor: `OpenLayers.Layer.WMS("NASA Global Mosaic", "https://t1.hypercube.telascience.org/cgi-bin/landsat7", {layers: "landsat7"}, {sphericalMercator: false})`},
	}
}

// DefaultDependencies maps dependency keys to the scripts they load.
func DefaultDependencies() map[string]string {
	return map[string]string{
		"osm":    "/maps/openlayers/OSM/OpenStreetMap.js",
		"google": "https://maps.google.com/maps/api/js?v=3.5&sensor=false",
		"bing":   "https://dev.virtualearth.net/mapcontrol/mapcontrol.ashx?v=6.1",
	}
}
