package elements

import "github.com/paulmach/orb"

// Location is a point marker.
type Location struct {
	Options
	Point       orb.Point
	Altitude    float64
	Address     string
	Icon        string
	VisitedIcon string
	Group       string
	InlineLabel string
}

// NewLocation builds a location from latitude and longitude.
func NewLocation(lat, lon float64) Location {
	return Location{Point: orb.Point{lon, lat}}
}

// Record returns the location as is, without directive defaults. It also
// serves the centre parameter.
func (l Location) Record() Record {
	rec := Record{
		"lat":     l.Point.Lat(),
		"lon":     l.Point.Lon(),
		"alt":     l.Altitude,
		"address": l.Address,
	}
	l.Options.fill(rec)
	return rec
}

// MarkerDefaults holds the directive-level values a marker falls back to
// when it does not set its own. Text comes from the directive title (popup
// content) and Title from the directive label (hover text).
type MarkerDefaults struct {
	Text           string
	Title          string
	IconURL        string
	VisitedIconURL string
	Group          string
	InlineLabel    string
}

// MarkerRecord returns the marker record with defaults applied. Icon fields
// hold the raw per-marker references; the normalizer resolves them.
func (l Location) MarkerRecord(defaults MarkerDefaults) Record {
	rec := l.Record()
	rec["title"] = fallback(l.Title, defaults.Title)
	rec["text"] = fallback(l.Text, defaults.Text)
	rec["icon"] = fallback(l.Icon, defaults.IconURL)
	rec["visitedicon"] = fallback(l.VisitedIcon, defaults.VisitedIconURL)
	rec["group"] = fallback(l.Group, defaults.Group)
	rec["inlineLabel"] = fallback(l.InlineLabel, defaults.InlineLabel)
	return rec
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
