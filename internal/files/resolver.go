// Package files turns icon and image references used in map directives into
// URLs through a go-urlkit route.
package files

import (
	"context"
	"fmt"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

const fileURLFailedCode = "MAPS_FILE_URL_FAILED"

var namespacePrefixes = []string{"file:", "image:", "media:"}

// ResolverOptions configures the go-urlkit backed resolver.
type ResolverOptions struct {
	Manager *urlkit.RouteManager
	Group   string
	Route   string
	Param   string
}

// Resolver implements interfaces.FileResolver with a go-urlkit route
// manager. References that already are URLs or absolute paths are returned
// unchanged.
type Resolver struct {
	manager *urlkit.RouteManager
	group   string
	route   string
	param   string

	mu     sync.RWMutex
	cached *urlkit.Group
}

// NewResolver constructs a resolver backed by go-urlkit.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Param == "" {
		opts.Param = "name"
	}
	return &Resolver{
		manager: opts.Manager,
		group:   strings.TrimSpace(opts.Group),
		route:   strings.TrimSpace(opts.Route),
		param:   strings.TrimSpace(opts.Param),
	}
}

// NewResolverFromConfig builds the route manager described by cfg.
func NewResolverFromConfig(cfg runtimeconfig.FilesConfig) *Resolver {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    cfg.Group,
				BaseURL: cfg.BaseURL,
				Paths: map[string]string{
					cfg.Route: cfg.Path,
				},
			},
		},
	})
	return NewResolver(ResolverOptions{
		Manager: manager,
		Group:   cfg.Group,
		Route:   cfg.Route,
		Param:   cfg.Param,
	})
}

// FileURL resolves reference. File namespace prefixes are dropped and spaces
// become underscores, the way wiki file names are stored.
func (r *Resolver) FileURL(_ context.Context, reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", nil
	}
	if isURL(reference) {
		return reference, nil
	}
	if r == nil || r.manager == nil || r.group == "" || r.route == "" {
		return reference, nil
	}

	name := FileName(reference)
	if name == "" {
		return "", nil
	}

	group, err := r.routeGroup()
	if err != nil {
		return "", wrap(err, reference)
	}
	builder, err := safeBuilder(group, r.route)
	if err != nil {
		return "", wrap(err, reference)
	}
	builder.WithParam(r.param, name)
	url, err := builder.Build()
	if err != nil {
		return "", wrap(err, reference)
	}
	return url, nil
}

// FileName normalizes a file reference into the stored file name.
func FileName(reference string) string {
	name := strings.TrimSpace(reference)
	lower := strings.ToLower(name)
	for _, prefix := range namespacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}
	return strings.ReplaceAll(name, " ", "_")
}

func (r *Resolver) routeGroup() (*urlkit.Group, error) {
	r.mu.RLock()
	group := r.cached
	r.mu.RUnlock()
	if group != nil {
		return group, nil
	}

	group, err := lookupGroup(r.manager, r.group)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.cached = group
	r.mu.Unlock()
	return group, nil
}

func isURL(reference string) bool {
	lower := strings.ToLower(reference)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "/")
}

func wrap(err error, reference string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("resolve file url for %q", reference)).
		WithTextCode(fileURLFailedCode)
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("files: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("files: urlkit route %q not found: %v", route, rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("files: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("files: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	if group == nil && err == nil {
		err = fmt.Errorf("files: route group %q not found", name)
	}
	return group, err
}
