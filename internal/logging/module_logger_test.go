package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "maps.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = DisplayLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != displayModule {
		t.Fatalf("expected module %s, got %v", displayModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != displayModule {
		t.Fatalf("expected module field %s, got %v", displayModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithMapContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}

	_ = WithMapContext(rec, "leaflet", " ", "Main Page")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got["map_service"] != "leaflet" || got["page_title"] != "Main Page" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got["map_id"]; ok {
		t.Fatalf("expected blank map id to be skipped, got %v", got)
	}
}

func TestCommandLoggerTagsGroup(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = CommandLogger(provider, " render ")

	if len(provider.requested) != 1 || provider.requested[0] != "maps.commands.render" {
		t.Fatalf("expected maps.commands.render, got %v", provider.requested)
	}
	if len(rec.fields) != 2 {
		t.Fatalf("expected module and command fields, got %v", rec.fields)
	}
	if rec.fields[1]["component"] != "command" || rec.fields[1]["command_module"] != "render" {
		t.Fatalf("unexpected command fields %v", rec.fields[1])
	}
}

func TestContextWithFieldsMergesExisting(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})
	ctx = ContextWithFields(ctx, map[string]any{"page_title": "Berlin"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r-1" || fields["page_title"] != "Berlin" {
		t.Fatalf("expected merged fields, got %v", fields)
	}

	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "r-1" {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
