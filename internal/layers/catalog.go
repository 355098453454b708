package layers

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes one client-side layer: the constructor expression the
// provider script evaluates and, optionally, the key of the dependency that
// must be loaded before the constructor can run.
type Definition struct {
	Constructor string `json:"constructor"`
	Dependency  string `json:"dependency,omitempty"`
}

// UnmarshalYAML accepts the short scalar form
//
//	osm-mapnik: OpenLayers.Layer.OSM.Mapnik("OSM Mapnik")
//
// the sequence form [constructor, dependency], and a mapping with explicit
// constructor/dependency keys.
func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		d.Constructor = strings.TrimSpace(node.Value)
		d.Dependency = ""
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := node.Decode(&parts); err != nil {
			return err
		}
		*d = Definition{}
		if len(parts) > 0 {
			d.Constructor = strings.TrimSpace(parts[0])
		}
		if len(parts) > 1 {
			d.Dependency = strings.TrimSpace(parts[1])
		}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Constructor string `yaml:"constructor"`
			Dependency  string `yaml:"dependency"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		d.Constructor = strings.TrimSpace(raw.Constructor)
		d.Dependency = strings.TrimSpace(raw.Dependency)
		return nil
	default:
		return fmt.Errorf("layers: unsupported layer definition at line %d", node.Line)
	}
}

// Valid reports whether the definition can produce a constructor expression.
func (d Definition) Valid() bool {
	return strings.TrimSpace(d.Constructor) != ""
}

// Catalog is the immutable lookup table driving layer resolution. Keys are
// lower-cased on construction so lookups are case-insensitive.
type Catalog struct {
	groups       map[string][]string
	available    map[string]Definition
	dependencies map[string]string
}

// NewCatalog copies the supplied tables. Nil maps are treated as empty.
func NewCatalog(groups map[string][]string, available map[string]Definition, dependencies map[string]string) Catalog {
	c := Catalog{
		groups:       make(map[string][]string, len(groups)),
		available:    make(map[string]Definition, len(available)),
		dependencies: make(map[string]string, len(dependencies)),
	}
	for name, members := range groups {
		normalized := make([]string, 0, len(members))
		for _, member := range members {
			if key := normalize(member); key != "" {
				normalized = append(normalized, key)
			}
		}
		c.groups[normalize(name)] = normalized
	}
	for name, def := range available {
		c.available[normalize(name)] = Definition{
			Constructor: strings.TrimSpace(def.Constructor),
			Dependency:  strings.TrimSpace(def.Dependency),
		}
	}
	for key, url := range dependencies {
		c.dependencies[normalize(key)] = strings.TrimSpace(url)
	}
	return c
}

// Group returns the members of a layer group.
func (c Catalog) Group(name string) ([]string, bool) {
	members, ok := c.groups[normalize(name)]
	return members, ok
}

// Layer returns the definition of a single layer.
func (c Catalog) Layer(name string) (Definition, bool) {
	def, ok := c.available[normalize(name)]
	return def, ok
}

// Dependency returns the script reference registered under key.
func (c Catalog) Dependency(key string) (string, bool) {
	url, ok := c.dependencies[normalize(key)]
	return url, ok && url != ""
}

// Empty reports whether the catalog has no layers at all.
func (c Catalog) Empty() bool {
	return len(c.available) == 0
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
