package shortcode

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Registry keeps directive definitions keyed by lower-case name, with an
// alias table pointing at the owning definition.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]interfaces.ShortcodeDefinition
	aliases     map[string]string
	validator   DefinitionValidator
}

// DefinitionValidator checks a definition before it is stored.
type DefinitionValidator interface {
	ValidateDefinition(def interfaces.ShortcodeDefinition) error
}

// NewRegistry constructs a registry. A nil validator skips validation.
func NewRegistry(validator DefinitionValidator) *Registry {
	return &Registry{
		definitions: make(map[string]interfaces.ShortcodeDefinition),
		aliases:     make(map[string]string),
		validator:   validator,
	}
}

func directiveKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register stores def under its name and every alias. Duplicate aliases and
// aliases equal to the name are folded away.
func (r *Registry) Register(def interfaces.ShortcodeDefinition) error {
	name := directiveKey(def.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if r.validator != nil {
		if err := r.validator.ValidateDefinition(def); err != nil {
			return err
		}
	}

	aliases := make([]string, 0, len(def.Aliases))
	for _, alias := range def.Aliases {
		key := directiveKey(alias)
		if key == "" || key == name || slices.Contains(aliases, key) {
			continue
		}
		aliases = append(aliases, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range append([]string{name}, aliases...) {
		if r.taken(key) {
			return fmt.Errorf("%w: %s", ErrDuplicateDefinition, key)
		}
	}

	def.Aliases = aliases
	r.definitions[name] = def
	for _, alias := range aliases {
		r.aliases[alias] = name
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	if _, ok := r.definitions[key]; ok {
		return true
	}
	_, ok := r.aliases[key]
	return ok
}

// Get resolves a name or alias.
func (r *Registry) Get(name string) (interfaces.ShortcodeDefinition, bool) {
	key := directiveKey(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if owner, ok := r.aliases[key]; ok {
		key = owner
	}
	def, ok := r.definitions[key]
	return def, ok
}

// List returns the definitions in name order.
func (r *Registry) List() []interfaces.ShortcodeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]interfaces.ShortcodeDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return directiveKey(result[i].Name) < directiveKey(result[j].Name)
	})
	return result
}

// Names returns every registered name and alias, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions)+len(r.aliases))
	for name := range r.definitions {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Remove drops an alias on its own, or a definition together with its
// aliases.
func (r *Registry) Remove(name string) {
	key := directiveKey(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.aliases[key]; ok {
		delete(r.aliases, key)
		if def, exists := r.definitions[owner]; exists {
			def.Aliases = slices.DeleteFunc(slices.Clone(def.Aliases), func(alias string) bool { return alias == key })
			r.definitions[owner] = def
		}
		return
	}

	def, ok := r.definitions[key]
	if !ok {
		return
	}
	for _, alias := range def.Aliases {
		delete(r.aliases, alias)
	}
	delete(r.definitions, key)
}

var _ interfaces.ShortcodeRegistry = (*Registry)(nil)
