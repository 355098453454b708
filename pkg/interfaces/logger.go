package interfaces

import "context"

// Logger is the leveled logging contract used by every maps module. It matches
// the method set of github.com/goliatone/go-logger so a glog logger can be
// passed through the gologger adapter without extra glue.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers (maps.display, maps.layers, ...).
type LoggerProvider interface {
	GetLogger(name string) Logger
}
