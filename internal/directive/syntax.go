package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/goliatone/go-cms-maps/internal/elements"
)

const (
	itemSeparator  = ";"
	fieldSeparator = "~"
	pointSeparator = ":"
)

// Shape styling defaults applied when a directive leaves a field empty.
var (
	DefaultStroke = elements.Stroke{Color: "#FF0000", Opacity: 1, Weight: 2}
	DefaultFill   = elements.Fill{Color: "#FF0000", Opacity: 0.5}
)

// ParsePoint reads "lat,lon".
func ParsePoint(raw string) (orb.Point, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("coordinate %q must be lat,lon", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("latitude %q is not a number", parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("longitude %q is not a number", parts[1])
	}
	return orb.Point{lon, lat}, nil
}

// ParseLocations reads "lat,lon~title~text~icon~group~inlineLabel" items
// separated by ";".
func ParseLocations(raw string) ([]elements.Location, error) {
	var out []elements.Location
	for _, item := range items(raw) {
		fields := splitFields(item)
		point, err := ParsePoint(fields[0])
		if err != nil {
			return nil, err
		}
		loc := elements.Location{Point: point}
		loc.Title = field(fields, 1)
		loc.Text = field(fields, 2)
		loc.Icon = field(fields, 3)
		loc.Group = field(fields, 4)
		loc.InlineLabel = field(fields, 5)
		out = append(out, loc)
	}
	return out, nil
}

// ParseLines reads "lat,lon:lat,lon:...~title~text~strokeColor~strokeOpacity~strokeWeight".
func ParseLines(raw string) ([]elements.Line, error) {
	var out []elements.Line
	for _, item := range items(raw) {
		fields := splitFields(item)
		path, err := parsePath(fields[0], 2)
		if err != nil {
			return nil, err
		}
		stroke, err := parseStroke(fields, 3)
		if err != nil {
			return nil, err
		}
		out = append(out, elements.Line{
			Options: options(fields),
			Stroke:  stroke,
			Path:    path,
		})
	}
	return out, nil
}

// ParsePolygons reads lines plus "~fillColor~fillOpacity~showOnlyOnHover".
// The ring is closed when the last point differs from the first.
func ParsePolygons(raw string) ([]elements.Polygon, error) {
	var out []elements.Polygon
	for _, item := range items(raw) {
		fields := splitFields(item)
		path, err := parsePath(fields[0], 3)
		if err != nil {
			return nil, err
		}
		stroke, err := parseStroke(fields, 3)
		if err != nil {
			return nil, err
		}
		fill, err := parseFill(fields, 6)
		if err != nil {
			return nil, err
		}
		hover, err := parseBool(field(fields, 8))
		if err != nil {
			return nil, err
		}
		ring := orb.Ring(path)
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		out = append(out, elements.Polygon{
			Options:            options(fields),
			Stroke:             stroke,
			Fill:               fill,
			Ring:               ring,
			OnlyVisibleOnHover: hover,
		})
	}
	return out, nil
}

// ParseCircles reads "lat,lon:radius~title~text~strokeColor~strokeOpacity~strokeWeight~fillColor~fillOpacity".
func ParseCircles(raw string) ([]elements.Circle, error) {
	var out []elements.Circle
	for _, item := range items(raw) {
		fields := splitFields(item)
		geometry := strings.Split(fields[0], pointSeparator)
		if len(geometry) != 2 {
			return nil, fmt.Errorf("circle %q must be lat,lon:radius", fields[0])
		}
		centre, err := ParsePoint(geometry[0])
		if err != nil {
			return nil, err
		}
		radius, err := strconv.ParseFloat(strings.TrimSpace(geometry[1]), 64)
		if err != nil || radius <= 0 {
			return nil, fmt.Errorf("circle radius %q must be a positive number", geometry[1])
		}
		stroke, err := parseStroke(fields, 3)
		if err != nil {
			return nil, err
		}
		fill, err := parseFill(fields, 6)
		if err != nil {
			return nil, err
		}
		out = append(out, elements.Circle{
			Options: options(fields),
			Stroke:  stroke,
			Fill:    fill,
			Centre:  centre,
			Radius:  radius,
		})
	}
	return out, nil
}

// ParseRectangles reads "lat,lon:lat,lon~..." with circle styling.
func ParseRectangles(raw string) ([]elements.Rectangle, error) {
	var out []elements.Rectangle
	for _, item := range items(raw) {
		fields := splitFields(item)
		bound, err := parseBound(strings.Split(fields[0], pointSeparator))
		if err != nil {
			return nil, err
		}
		stroke, err := parseStroke(fields, 3)
		if err != nil {
			return nil, err
		}
		fill, err := parseFill(fields, 6)
		if err != nil {
			return nil, err
		}
		out = append(out, elements.Rectangle{
			Options: options(fields),
			Stroke:  stroke,
			Fill:    fill,
			Bound:   bound,
		})
	}
	return out, nil
}

// ParseImageOverlays reads "lat,lon:lat,lon:imageurl~title~text". The image
// reference may itself contain ":".
func ParseImageOverlays(raw string) ([]elements.ImageOverlay, error) {
	var out []elements.ImageOverlay
	for _, item := range items(raw) {
		fields := splitFields(item)
		geometry := strings.SplitN(fields[0], pointSeparator, 3)
		if len(geometry) != 3 || strings.TrimSpace(geometry[2]) == "" {
			return nil, fmt.Errorf("image overlay %q must be lat,lon:lat,lon:image", fields[0])
		}
		bound, err := parseBound(geometry[:2])
		if err != nil {
			return nil, err
		}
		out = append(out, elements.ImageOverlay{
			Options: options(fields),
			Bound:   bound,
			Image:   strings.TrimSpace(geometry[2]),
		})
	}
	return out, nil
}

// ParseWMSOverlay reads "url~layer~style".
func ParseWMSOverlay(raw string) (elements.WMSOverlay, error) {
	fields := splitFields(raw)
	overlay := elements.WMSOverlay{
		ServerURL: fields[0],
		Layer:     field(fields, 1),
		Style:     field(fields, 2),
	}
	if overlay.ServerURL == "" || overlay.Layer == "" {
		return elements.WMSOverlay{}, fmt.Errorf("wms overlay %q must be url~layer~style", raw)
	}
	return overlay, nil
}

func items(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, itemSeparator) {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitFields(item string) []string {
	fields := strings.Split(item, fieldSeparator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func field(fields []string, idx int) string {
	if idx < len(fields) {
		return fields[idx]
	}
	return ""
}

func options(fields []string) elements.Options {
	return elements.Options{
		Title: field(fields, 1),
		Text:  field(fields, 2),
	}
}

func parsePath(raw string, min int) (orb.LineString, error) {
	var path orb.LineString
	for _, part := range strings.Split(raw, pointSeparator) {
		point, err := ParsePoint(part)
		if err != nil {
			return nil, err
		}
		path = append(path, point)
	}
	if len(path) < min {
		return nil, fmt.Errorf("shape %q needs at least %d points", raw, min)
	}
	return path, nil
}

func parseBound(corners []string) (orb.Bound, error) {
	if len(corners) != 2 {
		return orb.Bound{}, fmt.Errorf("area %q must be lat,lon:lat,lon", strings.Join(corners, pointSeparator))
	}
	a, err := ParsePoint(corners[0])
	if err != nil {
		return orb.Bound{}, err
	}
	b, err := ParsePoint(corners[1])
	if err != nil {
		return orb.Bound{}, err
	}
	return orb.MultiPoint{a, b}.Bound(), nil
}

func parseStroke(fields []string, from int) (elements.Stroke, error) {
	stroke := DefaultStroke
	if color := field(fields, from); color != "" {
		stroke.Color = color
	}
	if raw := field(fields, from+1); raw != "" {
		opacity, err := parseOpacity(raw)
		if err != nil {
			return elements.Stroke{}, err
		}
		stroke.Opacity = opacity
	}
	if raw := field(fields, from+2); raw != "" {
		weight, err := strconv.Atoi(raw)
		if err != nil || weight < 0 {
			return elements.Stroke{}, fmt.Errorf("stroke weight %q must be a non-negative integer", raw)
		}
		stroke.Weight = weight
	}
	return stroke, nil
}

func parseFill(fields []string, from int) (elements.Fill, error) {
	fill := DefaultFill
	if color := field(fields, from); color != "" {
		fill.Color = color
	}
	if raw := field(fields, from+1); raw != "" {
		opacity, err := parseOpacity(raw)
		if err != nil {
			return elements.Fill{}, err
		}
		fill.Opacity = opacity
	}
	return fill, nil
}

func parseOpacity(raw string) (float64, error) {
	opacity, err := strconv.ParseFloat(raw, 64)
	if err != nil || opacity < 0 || opacity > 1 {
		return 0, fmt.Errorf("opacity %q must be between 0 and 1", raw)
	}
	return opacity, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false, nil
	case "1", "true", "yes", "on":
		return true, nil
	default:
		return false, fmt.Errorf("cannot convert %q to bool", raw)
	}
}
