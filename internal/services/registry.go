package services

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

var (
	// ErrInvalidService is returned when a service has no name.
	ErrInvalidService = errors.New("services: service name is required")
	// ErrDuplicateService is returned when a name or alias is already taken.
	ErrDuplicateService = errors.New("services: service name or alias already registered")
	// ErrDefaultServiceMissing is returned when the default service is not registered.
	ErrDefaultServiceMissing = errors.New("services: default service is not registered")
)

// Registry is the thread-safe lookup of mapping providers by name or alias.
type Registry struct {
	mu          sync.RWMutex
	services    map[string]Service
	aliases     map[string]string
	defaultName string
}

// NewRegistry returns an empty registry falling back to defaultName.
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		services:    map[string]Service{},
		aliases:     map[string]string{},
		defaultName: normalize(defaultName),
	}
}

// NewDefaultRegistry registers the built-in providers listed as available
// in cfg.
func NewDefaultRegistry(cfg runtimeconfig.Config) (*Registry, error) {
	shared := SharedFromConfig(cfg)
	registry := NewRegistry(cfg.DefaultService)
	builtins := []Service{
		NewLeaflet(cfg.Leaflet, shared),
		NewOpenLayers(cfg.OpenLayers, shared),
		NewGoogleMaps(cfg.GoogleMaps, shared),
	}
	for _, service := range builtins {
		if !cfg.ServiceAvailable(service.Name()) {
			continue
		}
		if err := registry.Register(service); err != nil {
			return nil, err
		}
	}
	if _, ok := registry.Get(cfg.DefaultService); !ok {
		return nil, ErrDefaultServiceMissing
	}
	return registry, nil
}

// Register stores a service under its name and aliases.
func (r *Registry) Register(service Service) error {
	if service == nil {
		return ErrInvalidService
	}
	name := normalize(service.Name())
	if name == "" {
		return ErrInvalidService
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(name) {
		return ErrDuplicateService
	}
	aliases := make([]string, 0, len(service.Aliases()))
	for _, alias := range service.Aliases() {
		alias = normalize(alias)
		if alias == "" || alias == name {
			continue
		}
		if r.taken(alias) {
			return ErrDuplicateService
		}
		aliases = append(aliases, alias)
	}

	r.services[name] = service
	for _, alias := range aliases {
		r.aliases[alias] = name
	}
	return nil
}

// Get returns the service registered under name or one of its aliases.
func (r *Registry) Get(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(normalize(name))
}

// Resolve returns the named service, or the default one when name is empty
// or unknown.
func (r *Registry) Resolve(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if service, ok := r.lookup(normalize(name)); ok {
		return service, true
	}
	return r.lookup(r.defaultName)
}

// Canonical maps a name or alias to the registered service name.
func (r *Registry) Canonical(name string) (string, bool) {
	service, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return service.Name(), true
}

// Default returns the default service name.
func (r *Registry) Default() string {
	return r.defaultName
}

// Names returns the registered service names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (Service, bool) {
	if name == "" {
		return nil, false
	}
	if service, ok := r.services[name]; ok {
		return service, true
	}
	if canonical, ok := r.aliases[name]; ok {
		service, ok := r.services[canonical]
		return service, ok
	}
	return nil, false
}

func (r *Registry) taken(name string) bool {
	if _, ok := r.services[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
