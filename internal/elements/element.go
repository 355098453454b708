package elements

import (
	"maps"
	"reflect"

	"github.com/paulmach/orb"
)

// Record is the JSON-ready form of a drawable entity.
type Record map[string]any

// Element is implemented by every domain shape. Record returns the plain
// key/value form that is serialized into the map payload.
type Element interface {
	Record() Record
}

// Options carries the text shared by all elements.
type Options struct {
	Title string
	Text  string
	Link  string
}

func (o Options) fill(rec Record) {
	rec["title"] = o.Title
	rec["text"] = o.Text
	rec["link"] = o.Link
}

// Stroke describes the outline of a line or area.
type Stroke struct {
	Color   string
	Opacity float64
	Weight  int
}

func (s Stroke) fill(rec Record) {
	rec["strokeColor"] = s.Color
	rec["strokeOpacity"] = s.Opacity
	rec["strokeWeight"] = s.Weight
}

// Fill describes the interior of an area.
type Fill struct {
	Color   string
	Opacity float64
}

func (f Fill) fill(rec Record) {
	rec["fillColor"] = f.Color
	rec["fillOpacity"] = f.Opacity
}

// ToRecord converts an element or an existing plain record into a fresh
// Record. Anything else reports false.
func ToRecord(item any) (Record, bool) {
	switch v := item.(type) {
	case nil:
		return nil, false
	case Element:
		return v.Record(), true
	case Record:
		return maps.Clone(v), true
	case map[string]any:
		return Record(maps.Clone(v)), true
	default:
		return nil, false
	}
}

// Items flattens a shape collection of any slice type into []any. Nil and
// non-slice values report false.
func Items(collection any) ([]any, bool) {
	switch v := collection.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []Element:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []Record:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(collection)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// LatLon renders a point in the {lat, lon} form the client scripts expect.
// orb keeps points as [lon, lat].
func LatLon(p orb.Point) map[string]float64 {
	return map[string]float64{"lat": p.Lat(), "lon": p.Lon()}
}
