package cmsmaps

import "github.com/goliatone/go-cms-maps/internal/runtimeconfig"

var (
	ErrAvailableServicesRequired = runtimeconfig.ErrAvailableServicesRequired
	ErrServiceUnknown            = runtimeconfig.ErrServiceUnknown
	ErrDefaultServiceUnknown     = runtimeconfig.ErrDefaultServiceUnknown
	ErrDimensionInvalid          = runtimeconfig.ErrDimensionInvalid
	ErrZoomInvalid               = runtimeconfig.ErrZoomInvalid
	ErrOpenLayersLayerUnknown    = runtimeconfig.ErrOpenLayersLayerUnknown
	ErrCacheSizeInvalid          = runtimeconfig.ErrCacheSizeInvalid
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrMarkdownDepthInvalid      = runtimeconfig.ErrMarkdownDepthInvalid
	ErrMetricsNamespaceRequired  = runtimeconfig.ErrMetricsNamespaceRequired
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	LeafletConfig    = runtimeconfig.LeafletConfig
	OpenLayersConfig = runtimeconfig.OpenLayersConfig
	GoogleMapsConfig = runtimeconfig.GoogleMapsConfig
	FilesConfig      = runtimeconfig.FilesConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	CacheConfig      = runtimeconfig.CacheConfig
	ValidationConfig = runtimeconfig.ValidationConfig
	I18nConfig       = runtimeconfig.I18nConfig
	MetricsConfig    = runtimeconfig.MetricsConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	Features         = runtimeconfig.Features
)

// Canonical mapping service names.
const (
	ServiceLeaflet    = runtimeconfig.ServiceLeaflet
	ServiceOpenLayers = runtimeconfig.ServiceOpenLayers
	ServiceGoogleMaps = runtimeconfig.ServiceGoogleMaps
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

// ParseConfig decodes YAML config bytes on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	return runtimeconfig.Parse(data)
}
