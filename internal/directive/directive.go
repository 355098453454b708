// Package directive turns the raw parameters of a map directive into the
// typed render parameters the map renderer consumes.
package directive

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/elements"
	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// InvalidCode tags every directive validation error.
const InvalidCode = "MAPS_DIRECTIVE_INVALID"

// PositionalParam is the key the shortcode parser gives the first unnamed
// parameter. It is read as the coordinates list.
const PositionalParam = "param1"

var (
	listParams = map[string]struct{}{"layers": {}, "types": {}, "controls": {}}
	boolParams = map[string]struct{}{
		"clustering": {}, "fullscreen": {}, "scrollwheelzoom": {}, "resizable": {},
		"copycoords": {}, "static": {}, "markercluster": {}, "searchmarkers": {},
	}
)

// ServiceNames resolves provider names and aliases.
type ServiceNames interface {
	Canonical(name string) (string, bool)
	Default() string
}

// Parser parses and validates directive parameters. It is immutable and safe
// for concurrent use.
type Parser struct {
	cfg      runtimeconfig.Config
	services ServiceNames
	logger   interfaces.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser builds a parser taking defaults from cfg.
func NewParser(cfg runtimeconfig.Config, services ServiceNames, opts ...Option) *Parser {
	p := &Parser{
		cfg:      cfg,
		services: services,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts raw directive parameters into render parameters. Inner
// content of a paired directive is read as coordinates when no coordinates
// parameter is given. Every problem found is reported in one validation
// error.
func (p *Parser) Parse(raw map[string]any, inner string) (map[string]any, error) {
	in := normalizeKeys(raw)
	if _, ok := in["coordinates"]; !ok {
		if positional, ok := in[PositionalParam]; ok {
			in["coordinates"] = positional
		} else if strings.TrimSpace(inner) != "" {
			in["coordinates"] = strings.TrimSpace(inner)
		}
	}
	delete(in, PositionalParam)

	errs := validation.Errors{}
	params := map[string]any{
		"width":       runtimeconfig.NormalizeCSSLength(p.cfg.Width),
		"height":      runtimeconfig.NormalizeCSSLength(p.cfg.Height),
		"zoom":        p.cfg.Zoom,
		"title":       "",
		"label":       "",
		"icon":        "",
		"visitedicon": "",
		"centre":      nil,
		"wmsoverlay":  nil,
	}

	service := p.services.Default()
	if name := stringValue(in["mappingservice"]); name != "" {
		canonical, ok := p.services.Canonical(name)
		if !ok {
			errs["mappingservice"] = validation.NewError("maps.directive.service_unknown",
				fmt.Sprintf("mapping service %q is not available", name))
		}
		service = canonical
	}
	params["mappingservice"] = service

	for key, value := range in {
		switch key {
		case "mappingservice":
		case "width", "height":
			params[key] = runtimeconfig.NormalizeCSSLength(stringValue(value))
		case "title", "label", "icon", "visitedicon":
			params[key] = stringValue(value)
		case "zoom":
			zoom, err := strconv.Atoi(stringValue(value))
			if err != nil {
				errs["zoom"] = validation.NewError("maps.directive.zoom_invalid", "zoom must be an integer")
				continue
			}
			params["zoom"] = zoom
		case "centre", "center":
			if text := stringValue(value); text != "" {
				point, err := ParsePoint(text)
				if err != nil {
					errs["centre"] = validation.NewError("maps.directive.centre_invalid", err.Error())
					continue
				}
				params["centre"] = elements.Location{Point: point}
			}
		case "wmsoverlay":
			if text := stringValue(value); text != "" {
				overlay, err := ParseWMSOverlay(text)
				if err != nil {
					errs["wmsoverlay"] = validation.NewError("maps.directive.wmsoverlay_invalid", err.Error())
					continue
				}
				params["wmsoverlay"] = overlay
			}
		case "coordinates":
			locations, err := ParseLocations(stringValue(value))
			if err != nil {
				errs["coordinates"] = validation.NewError("maps.directive.coordinates_invalid", err.Error())
				continue
			}
			params["coordinates"] = locations
		case "lines":
			addShapes(params, errs, key, stringValue(value), ParseLines)
		case "polygons":
			addShapes(params, errs, key, stringValue(value), ParsePolygons)
		case "circles":
			addShapes(params, errs, key, stringValue(value), ParseCircles)
		case "rectangles":
			addShapes(params, errs, key, stringValue(value), ParseRectangles)
		case "imageoverlays":
			addShapes(params, errs, key, stringValue(value), ParseImageOverlays)
		default:
			converted, err := passThrough(key, value)
			if err != nil {
				errs[key] = validation.NewError("maps.directive.param_invalid", err.Error())
				continue
			}
			params[key] = converted
		}
	}
	if _, ok := params["coordinates"]; !ok {
		params["coordinates"] = []elements.Location{}
	}

	if err := validateParams(params); err != nil {
		if nested, ok := err.(validation.Errors); ok {
			for key, value := range nested {
				if _, exists := errs[key]; !exists {
					errs[key] = value
				}
			}
		} else {
			errs["params"] = err
		}
	}

	if len(errs) > 0 {
		p.logger.Debug("maps.directive.invalid", "fields", errorKeys(errs), "error", errs)
		return nil, goerrors.Wrap(errs, goerrors.CategoryValidation, "invalid map directive").
			WithTextCode(InvalidCode)
	}
	return params, nil
}

type renderSettings struct {
	Width     string              `json:"width"`
	Height    string              `json:"height"`
	Zoom      int                 `json:"zoom"`
	Locations []elements.Location `json:"coordinates"`
}

func validateParams(params map[string]any) error {
	settings := renderSettings{
		Width:  stringValue(params["width"]),
		Height: stringValue(params["height"]),
	}
	settings.Zoom, _ = params["zoom"].(int)
	settings.Locations, _ = params["coordinates"].([]elements.Location)

	return validation.ValidateStruct(&settings,
		validation.Field(&settings.Width, validation.Required, validation.By(cssLength("width"))),
		validation.Field(&settings.Height, validation.Required, validation.By(cssLength("height"))),
		validation.Field(&settings.Zoom,
			validation.Min(runtimeconfig.MinZoom).Error(fmt.Sprintf("zoom must be between %d and %d", runtimeconfig.MinZoom, runtimeconfig.MaxZoom)),
			validation.Max(runtimeconfig.MaxZoom).Error(fmt.Sprintf("zoom must be between %d and %d", runtimeconfig.MinZoom, runtimeconfig.MaxZoom)),
		),
		validation.Field(&settings.Locations, validation.By(locationsInRange)),
	)
}

func cssLength(name string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if !runtimeconfig.ValidCSSLength(text) {
			return validation.NewError("maps.directive."+name+"_invalid",
				fmt.Sprintf("%s must be a CSS length", name))
		}
		return nil
	}
}

func locationsInRange(value any) error {
	locations, _ := value.([]elements.Location)
	for idx, loc := range locations {
		lat, lon := loc.Point.Lat(), loc.Point.Lon()
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return validation.NewError("maps.directive.coordinates_out_of_range",
				fmt.Sprintf("location %d (%g,%g) is outside the valid latitude/longitude range", idx+1, lat, lon))
		}
	}
	return nil
}

func addShapes[T any](params map[string]any, errs validation.Errors, key, raw string, parse func(string) ([]T, error)) {
	shapes, err := parse(raw)
	if err != nil {
		errs[key] = validation.NewError("maps.directive."+key+"_invalid", err.Error())
		return
	}
	params[key] = shapes
}

func passThrough(key string, value any) (any, error) {
	if _, ok := listParams[key]; ok {
		return splitList(value), nil
	}
	if _, ok := boolParams[key]; ok {
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return parseBool(stringValue(value))
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return value, nil
}

func splitList(value any) []string {
	var raw []string
	switch v := value.(type) {
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = strings.Split(stringValue(value), ",")
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if normalized == "" {
			continue
		}
		out[normalized] = value
	}
	return out
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func errorKeys(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
