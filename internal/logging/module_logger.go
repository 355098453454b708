package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

const (
	rootModule       = "maps"
	displayModule    = "maps.display"
	layersModule     = "maps.layers"
	directiveModule  = "maps.directive"
	textRenderModule = "maps.textrender"
	commandModule    = "maps.commands"
)

// ModuleLogger asks provider for the named logger and tags it with a module
// field. A nil provider or a nil logger yields NoOp.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(module)
	}
	if logger == nil {
		logger = NoOp()
	}
	return logger.WithFields(map[string]any{"module": module})
}

// DisplayLogger returns the logger namespace reserved for the map render orchestrator.
func DisplayLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, displayModule)
}

// LayersLogger returns the logger namespace reserved for layer resolution.
func LayersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, layersModule)
}

// DirectiveLogger returns the logger namespace reserved for directive parsing.
func DirectiveLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, directiveModule)
}

// TextRenderLogger returns the logger namespace reserved for map text rendering.
func TextRenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, textRenderModule)
}

// CommandLogger returns the logger for a command group such as "render".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return WithFields(ModuleLogger(provider, commandModule+"."+group), map[string]any{
		"component":      "command",
		"command_module": group,
	})
}

// WithMapContext tags logger with the mapping service, map ID and page title.
// Blank values are skipped.
func WithMapContext(logger interfaces.Logger, service, mapID, pageTitle string) interfaces.Logger {
	fields := map[string]any{}
	for key, value := range map[string]string{
		"map_service": service,
		"map_id":      mapID,
		"page_title":  pageTitle,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			fields[key] = trimmed
		}
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
