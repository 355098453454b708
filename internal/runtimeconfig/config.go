package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-cms-maps/internal/layers"
)

// Canonical mapping service names.
const (
	ServiceLeaflet    = "leaflet"
	ServiceOpenLayers = "openlayers"
	ServiceGoogleMaps = "googlemaps3"
)

// KnownServices lists the mapping services this module can render.
var KnownServices = []string{ServiceLeaflet, ServiceOpenLayers, ServiceGoogleMaps}

var ErrAvailableServicesRequired = errors.New("maps config: at least one mapping service must be available")
var ErrServiceUnknown = errors.New("maps config: mapping service is unknown")
var ErrDefaultServiceUnknown = errors.New("maps config: default mapping service is not available")
var ErrDimensionInvalid = errors.New("maps config: width and height must be CSS lengths")
var ErrZoomInvalid = errors.New("maps config: zoom must be between -1 and 20")
var ErrOpenLayersLayerUnknown = errors.New("maps config: default openlayers layer is not defined")
var ErrCacheSizeInvalid = errors.New("maps config: cache size must be positive when cache is enabled")
var ErrCacheTTLInvalid = errors.New("maps config: cache ttl must be zero or positive")
var ErrMarkdownDepthInvalid = errors.New("maps config: nested render depth must be zero or positive")
var ErrMetricsNamespaceRequired = errors.New("maps config: metrics namespace is required when metrics are enabled")
var ErrLoggingProviderRequired = errors.New("maps config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("maps config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("maps config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("maps config: logging format is invalid")

// Zoom bounds. MinZoom means "fit the map to its contents".
const (
	MinZoom = -1
	MaxZoom = 20
)

var cssLengthPattern = regexp.MustCompile(`^(auto|\d+(\.\d+)?(px|%|em|ex|rem|vh|vw|pt|pc|cm|mm|in)?)$`)

var unitlessLengthPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ValidCSSLength reports whether value can be used as a map width or height.
func ValidCSSLength(value string) bool {
	return cssLengthPattern.MatchString(strings.ToLower(strings.TrimSpace(value)))
}

// NormalizeCSSLength trims value and appends px to bare numbers. Other
// values are returned trimmed.
func NormalizeCSSLength(value string) string {
	trimmed := strings.TrimSpace(value)
	if unitlessLengthPattern.MatchString(trimmed) {
		return trimmed + "px"
	}
	return trimmed
}

// Config aggregates the settings of the map renderer. Zero values of nested
// sections are filled by DefaultConfig, so YAML files only need overrides.
type Config struct {
	DefaultService    string           `yaml:"default_service"`
	AvailableServices []string         `yaml:"available_services"`
	DefaultLocale     string           `yaml:"default_locale"`
	Width             string           `yaml:"width"`
	Height            string           `yaml:"height"`
	Zoom              int              `yaml:"zoom"`
	Leaflet           LeafletConfig    `yaml:"leaflet"`
	OpenLayers        OpenLayersConfig `yaml:"openlayers"`
	GoogleMaps        GoogleMapsConfig `yaml:"googlemaps"`
	Files             FilesConfig      `yaml:"files"`
	Markdown          MarkdownConfig   `yaml:"markdown"`
	Cache             CacheConfig      `yaml:"cache"`
	Validation        ValidationConfig `yaml:"validation"`
	I18n              I18nConfig       `yaml:"i18n"`
	Metrics           MetricsConfig    `yaml:"metrics"`
	Logging           LoggingConfig    `yaml:"logging"`
	Features          Features         `yaml:"features"`
}

// LeafletConfig configures the leaflet provider.
type LeafletConfig struct {
	Scripts     []string `yaml:"scripts"`
	Stylesheets []string `yaml:"stylesheets"`
	// APIKeys holds tile provider keys; the MapQuestOpen key enables the
	// MapQuest SDK script.
	APIKeys map[string]string `yaml:"api_keys"`
	Layers  []string          `yaml:"layers"`
}

// OpenLayersConfig configures the openlayers provider and its layer catalog.
type OpenLayersConfig struct {
	Scripts           []string                     `yaml:"scripts"`
	Stylesheets       []string                     `yaml:"stylesheets"`
	Layers            []string                     `yaml:"layers"`
	LayerGroups       map[string][]string          `yaml:"layer_groups"`
	AvailableLayers   map[string]layers.Definition `yaml:"available_layers"`
	LayerDependencies map[string]string            `yaml:"layer_dependencies"`
}

// GoogleMapsConfig configures the googlemaps3 provider.
type GoogleMapsConfig struct {
	APIKey string   `yaml:"api_key"`
	Type   string   `yaml:"type"`
	Types  []string `yaml:"types"`
	Script string   `yaml:"script"`
}

// FilesConfig drives the go-urlkit route used to turn icon references into URLs.
type FilesConfig struct {
	BaseURL string `yaml:"base_url"`
	Group   string `yaml:"group"`
	Route   string `yaml:"route"`
	Path    string `yaml:"path"`
	Param   string `yaml:"param"`
}

// MarkdownConfig mirrors interfaces.ParseOptions for embedded map text.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
	// MaxDepth bounds nested directive renders inside map text. Zero keeps
	// the renderer default.
	MaxDepth int `yaml:"max_depth"`
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Size       int           `yaml:"size"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ValidationConfig controls JSON schema validation of map payloads.
type ValidationConfig struct {
	// SchemaPath points at a custom schema; empty uses the embedded one.
	SchemaPath string `yaml:"schema_path"`
}

// I18nConfig points at a JSON message fixture overriding the embedded map
// messages.
type I18nConfig struct {
	MessagesPath string `yaml:"messages_path"`
}

// MetricsConfig names the Prometheus collectors.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// Features toggles module functionality.
type Features struct {
	Logger            bool `yaml:"logger"`
	Metrics           bool `yaml:"metrics"`
	PayloadValidation bool `yaml:"payload_validation"`
	WordPressSyntax   bool `yaml:"wordpress_syntax"`
	NestedDirectives  bool `yaml:"nested_directives"`
	DebugJS           bool `yaml:"debug_js"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the stock settings: leaflet by default, all three
// providers available and the stock OpenLayers layer catalog.
func DefaultConfig() Config {
	return Config{
		DefaultService:    ServiceLeaflet,
		AvailableServices: slices.Clone(KnownServices),
		DefaultLocale:     "en",
		Width:             "auto",
		Height:            "350px",
		Zoom:              MinZoom,
		Leaflet: LeafletConfig{
			Scripts:     []string{"/maps/leaflet/leaflet.js", "/maps/leaflet/ext.leaflet.js"},
			Stylesheets: []string{"/maps/leaflet/leaflet.css"},
			APIKeys:     map[string]string{},
			Layers:      []string{"OpenStreetMap"},
		},
		OpenLayers: OpenLayersConfig{
			Scripts:           []string{"/maps/openlayers/OpenLayers.js", "/maps/openlayers/ext.openlayers.js"},
			Stylesheets:       []string{"/maps/openlayers/theme/default/style.css"},
			Layers:            []string{"osm-mapnik", "osm-cyclemap"},
			LayerGroups:       layers.DefaultGroups(),
			AvailableLayers:   layers.DefaultLayers(),
			LayerDependencies: layers.DefaultDependencies(),
		},
		GoogleMaps: GoogleMapsConfig{
			Type:   "roadmap",
			Types:  []string{"roadmap", "satellite", "hybrid", "terrain"},
			Script: "https://maps.googleapis.com/maps/api/js",
		},
		Files: FilesConfig{
			BaseURL: "",
			Group:   "files",
			Route:   "file",
			Path:    "/files/:name",
			Param:   "name",
		},
		Markdown: MarkdownConfig{
			Extensions: []string{"strikethrough", "linkify"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Size:       512,
			DefaultTTL: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Namespace: "maps",
			Subsystem: "render",
		},
		Features: Features{
			NestedDirectives: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Catalog builds the OpenLayers layer catalog from the config.
func (cfg Config) Catalog() layers.Catalog {
	return layers.NewCatalog(cfg.OpenLayers.LayerGroups, cfg.OpenLayers.AvailableLayers, cfg.OpenLayers.LayerDependencies)
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if len(cfg.AvailableServices) == 0 {
		return ErrAvailableServicesRequired
	}
	for _, service := range cfg.AvailableServices {
		if !slices.Contains(KnownServices, normalizeName(service)) {
			return fmt.Errorf("%w: %s", ErrServiceUnknown, service)
		}
	}
	if !cfg.ServiceAvailable(cfg.DefaultService) {
		return fmt.Errorf("%w: %s", ErrDefaultServiceUnknown, cfg.DefaultService)
	}
	if !ValidCSSLength(cfg.Width) {
		return fmt.Errorf("%w: width %q", ErrDimensionInvalid, cfg.Width)
	}
	if !ValidCSSLength(cfg.Height) {
		return fmt.Errorf("%w: height %q", ErrDimensionInvalid, cfg.Height)
	}
	if cfg.Zoom < MinZoom || cfg.Zoom > MaxZoom {
		return fmt.Errorf("%w: %d", ErrZoomInvalid, cfg.Zoom)
	}
	if cfg.ServiceAvailable(ServiceOpenLayers) {
		catalog := cfg.Catalog()
		for _, name := range cfg.OpenLayers.Layers {
			if _, isGroup := catalog.Group(name); isGroup {
				continue
			}
			if _, isLayer := catalog.Layer(name); !isLayer {
				return fmt.Errorf("%w: %s", ErrOpenLayersLayerUnknown, name)
			}
		}
	}
	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return fmt.Errorf("%w: %d", ErrCacheSizeInvalid, cfg.Cache.Size)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return fmt.Errorf("%w: %s", ErrCacheTTLInvalid, cfg.Cache.DefaultTTL)
	}
	if cfg.Markdown.MaxDepth < 0 {
		return fmt.Errorf("%w: %d", ErrMarkdownDepthInvalid, cfg.Markdown.MaxDepth)
	}
	if cfg.Features.Metrics && strings.TrimSpace(cfg.Metrics.Namespace) == "" {
		return ErrMetricsNamespaceRequired
	}
	if cfg.Features.Logger {
		provider := normalizeName(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// ServiceAvailable reports whether name is one of the available services.
func (cfg Config) ServiceAvailable(name string) bool {
	name = normalizeName(name)
	if name == "" {
		return false
	}
	for _, service := range cfg.AvailableServices {
		if normalizeName(service) == name {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
