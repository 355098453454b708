package layers

import (
	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Resolution is the outcome of resolving a requested layer list.
type Resolution struct {
	// Names holds the resolved layer names, lower-cased, in first-seen order.
	Names []string
	// Constructors holds one "new <Constructor>" expression per name.
	Constructors []string
	// Dependencies holds the script references the layers need, deduplicated.
	Dependencies []string
}

// Resolver expands layer groups into concrete constructor expressions.
type Resolver struct {
	catalog Catalog
	logger  interfaces.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches the logger used for skipped or unknown entries.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver over an immutable catalog.
func NewResolver(catalog Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		catalog: catalog,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog exposes the resolver's lookup tables.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}

// Resolve walks requested in order. A group contributes every member not
// seen yet, a single layer contributes itself if not seen yet, anything else
// is ignored. Matching is case-insensitive.
func (r *Resolver) Resolve(requested []string) Resolution {
	res := Resolution{
		Names:        []string{},
		Constructors: []string{},
	}
	seen := make(map[string]struct{}, len(requested))

	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		def, ok := r.catalog.Layer(name)
		if !ok || !def.Valid() {
			r.logger.Debug("maps.layers.definition_skipped", "layer", name)
			return
		}
		seen[name] = struct{}{}
		res.Names = append(res.Names, name)
		res.Constructors = append(res.Constructors, "new "+def.Constructor)
	}

	for _, raw := range requested {
		name := normalize(raw)
		if name == "" {
			continue
		}
		if members, ok := r.catalog.Group(name); ok {
			for _, member := range members {
				add(member)
			}
			continue
		}
		if _, ok := r.catalog.Layer(name); ok {
			add(name)
			continue
		}
		r.logger.Debug("maps.layers.unknown_layer", "layer", raw)
	}

	res.Dependencies = r.Dependencies(res.Names)
	return res
}

// Dependencies returns the deduplicated script references required by the
// named layers. Layers without a dependency key, or whose key is not in the
// dependency table, contribute nothing.
func (r *Resolver) Dependencies(names []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, name := range names {
		def, ok := r.catalog.Layer(name)
		if !ok || def.Dependency == "" {
			continue
		}
		url, ok := r.catalog.Dependency(def.Dependency)
		if !ok {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}
