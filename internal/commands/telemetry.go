package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Report describes one finished command run.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Outcome   Outcome
	Err       error
}

// Telemetry is called once per command run, after the outcome is known.
type Telemetry[T command.Message] func(ctx context.Context, msg T, report Report)

// CommandMetrics records command durations by outcome.
type CommandMetrics interface {
	ObserveCommand(command, outcome string, duration time.Duration)
}

// LogTelemetry writes one entry per run: info on success, error otherwise.
func LogTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, r Report) {
		entry := logging.WithFields(logger, r.Fields)
		args := []any{"duration_ms", r.Duration.Milliseconds(), "outcome", string(r.Outcome)}
		if r.Outcome == OutcomeSucceeded {
			entry.Info("maps.command.succeeded", args...)
			return
		}
		entry.Error("maps.command.failed", append(args, "error", r.Err)...)
	}
}

// MetricsTelemetry forwards every run to metrics.
func MetricsTelemetry[T command.Message](metrics CommandMetrics) Telemetry[T] {
	return func(_ context.Context, _ T, r Report) {
		if metrics != nil {
			metrics.ObserveCommand(r.Command, string(r.Outcome), r.Duration)
		}
	}
}

// ChainTelemetry calls each non-nil telemetry in order.
func ChainTelemetry[T command.Message](fns ...Telemetry[T]) Telemetry[T] {
	return func(ctx context.Context, msg T, r Report) {
		for _, fn := range fns {
			if fn != nil {
				fn(ctx, msg, r)
			}
		}
	}
}
