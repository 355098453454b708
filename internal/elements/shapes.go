package elements

import "github.com/paulmach/orb"

// Line is a polyline.
type Line struct {
	Options
	Stroke
	Path orb.LineString
}

func (l Line) Record() Record {
	rec := Record{"pos": positions(l.Path)}
	l.Options.fill(rec)
	l.Stroke.fill(rec)
	return rec
}

// Polygon is a closed area. OnlyVisibleOnHover hides the outline until the
// pointer enters the area.
type Polygon struct {
	Options
	Stroke
	Fill
	Ring               orb.Ring
	OnlyVisibleOnHover bool
}

func (p Polygon) Record() Record {
	rec := Record{
		"pos":                positions(orb.LineString(p.Ring)),
		"onlyVisibleOnHover": p.OnlyVisibleOnHover,
	}
	p.Options.fill(rec)
	p.Stroke.fill(rec)
	p.Fill.fill(rec)
	return rec
}

// Circle is an area around a centre point. Radius is in metres.
type Circle struct {
	Options
	Stroke
	Fill
	Centre orb.Point
	Radius float64
}

func (c Circle) Record() Record {
	rec := Record{
		"centre": LatLon(c.Centre),
		"radius": c.Radius,
	}
	c.Options.fill(rec)
	c.Stroke.fill(rec)
	c.Fill.fill(rec)
	return rec
}

// Rectangle is an axis aligned area between two corners.
type Rectangle struct {
	Options
	Stroke
	Fill
	Bound orb.Bound
}

func (r Rectangle) Record() Record {
	rec := Record{
		"ne": LatLon(r.Bound.Max),
		"sw": LatLon(r.Bound.Min),
	}
	r.Options.fill(rec)
	r.Stroke.fill(rec)
	r.Fill.fill(rec)
	return rec
}

// ImageOverlay stretches an image over a rectangle.
type ImageOverlay struct {
	Options
	Bound orb.Bound
	Image string
}

func (o ImageOverlay) Record() Record {
	rec := Record{
		"ne":    LatLon(o.Bound.Max),
		"sw":    LatLon(o.Bound.Min),
		"image": o.Image,
	}
	o.Options.fill(rec)
	return rec
}

// WMSOverlay points the client at a WMS server layer.
type WMSOverlay struct {
	ServerURL string
	Layer     string
	Style     string
}

func (w WMSOverlay) Record() Record {
	return Record{
		"wmsServerUrl": w.ServerURL,
		"wmsLayerName": w.Layer,
		"wmsStyleName": w.Style,
	}
}

func positions(path orb.LineString) []map[string]float64 {
	out := make([]map[string]float64, 0, len(path))
	for _, p := range path {
		out = append(out, LatLon(p))
	}
	return out
}
