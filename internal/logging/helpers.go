package logging

import (
	"maps"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// WithFields returns logger scoped to a copy of fields. Nil loggers and empty
// maps pass through unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	return logger.WithFields(maps.Clone(fields))
}
