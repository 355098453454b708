// Package services holds the mapping providers a map directive can render
// with and the registry resolving provider names and aliases.
package services

import (
	"fmt"
	"maps"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/internal/runtimeconfig"
)

// Service is a mapping provider. Implementations are immutable after
// construction; everything a render adds goes to the page output.
type Service interface {
	Name() string
	Aliases() []string
	// MapID returns the next element id for a map of this provider on page.
	MapID(page *output.Page) string
	ConfigVariables() map[string]any
	AddDependencies(page *output.Page)
	AddLayerDependencies(page *output.Page, dependencies []string)
	// HandleLayers rewrites params["layers"] into what the provider script
	// expects and registers the dependencies the layers need.
	HandleLayers(page *output.Page, params map[string]any, resolver *layers.Resolver)
}

// Shared holds the settings every provider exposes to the client.
type Shared struct {
	DebugJS   bool
	Available []string
}

// SharedFromConfig extracts the shared provider settings.
func SharedFromConfig(cfg runtimeconfig.Config) Shared {
	return Shared{
		DebugJS:   cfg.Features.DebugJS,
		Available: append([]string(nil), cfg.AvailableServices...),
	}
}

type base struct {
	name        string
	aliases     []string
	scripts     []string
	stylesheets []string
	shared      Shared
}

func (b base) Name() string {
	return b.name
}

func (b base) Aliases() []string {
	return append([]string(nil), b.aliases...)
}

func (b base) MapID(page *output.Page) string {
	n := 1
	if page != nil {
		n = page.NextMapSequence(b.name)
	}
	return fmt.Sprintf("map_%s_%d", mapIDComponent(b.name), n)
}

func (b base) AddDependencies(page *output.Page) {
	if page == nil {
		return
	}
	for _, href := range b.stylesheets {
		page.AddStylesheet(href)
	}
	for _, src := range b.scripts {
		page.AddScript(src)
	}
}

// AddLayerDependencies registers script URLs as scripts and ready-made tags
// as raw head items.
func (b base) AddLayerDependencies(page *output.Page, dependencies []string) {
	if page == nil {
		return
	}
	for _, dep := range dependencies {
		dep = strings.TrimSpace(dep)
		if strings.HasPrefix(dep, "<") {
			page.AddHeadItem(dep)
			continue
		}
		page.AddScript(dep)
	}
}

func (b base) variables(extra map[string]any) map[string]any {
	vars := map[string]any{
		"egMapsDebugJS":           b.shared.DebugJS,
		"egMapsAvailableServices": append([]string(nil), b.shared.Available...),
	}
	maps.Copy(vars, extra)
	return vars
}

func mapIDComponent(name string) string {
	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		normalized = strings.ToLower(name)
	}
	return strings.ReplaceAll(normalized, "-", "_")
}

// StringList reads a list parameter that may hold a []string, a []any or a
// comma separated string. Blank entries are dropped.
func StringList(value any) []string {
	var raw []string
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	case string:
		raw = strings.Split(v, ",")
	default:
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
