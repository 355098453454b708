package shortcode

import (
	"fmt"
	"slices"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// RegisterBuiltIns registers display_map on registry. names narrows the
// aliases that are exposed; display_map itself is always registered and an
// empty list keeps every alias.
func RegisterBuiltIns(registry interfaces.ShortcodeRegistry, handler interfaces.ShortcodeHandler, names []string) error {
	if registry == nil {
		return goerrors.New("directive registry is required", goerrors.CategoryInternal).WithTextCode(DefinitionCode)
	}
	if handler == nil {
		return goerrors.New("map handler is required", goerrors.CategoryInternal).WithTextCode(DefinitionCode)
	}

	def := MapDefinition(handler)
	if len(names) > 0 {
		aliases, err := selectAliases(names)
		if err != nil {
			return err
		}
		def.Aliases = aliases
	}
	return registry.Register(def)
}

func selectAliases(names []string) ([]string, error) {
	var aliases []string
	for _, name := range names {
		key := directiveKey(name)
		switch {
		case key == "" || key == MapDirectiveName:
			continue
		case slices.Contains(MapDirectiveAliases, key):
			aliases = append(aliases, key)
		default:
			return nil, fmt.Errorf("%w: built-in %q", ErrUnknownDirective, name)
		}
	}
	return aliases, nil
}
