// Package commands wraps go-command handlers with the concerns every render
// command shares: message validation, a deadline, structured logging and
// categorised errors.
package commands

import (
	"context"
	"maps"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// DefaultCommandTimeout bounds a run unless WithTimeout says otherwise.
const DefaultCommandTimeout = 30 * time.Second

// HandlerOption configures a Handler.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler satisfies command.Commander[T] around a plain CommandFunc.
type Handler[T command.Message] struct {
	run       command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	telemetry Telemetry[T]
}

// NewHandler panics when fn is nil.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		run:     fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.telemetry == nil {
		h.telemetry = LogTelemetry[T](h.logger)
	}
	return h
}

// Execute validates msg, then runs it under the handler deadline. Every run,
// rejected ones included, ends in exactly one telemetry call.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report := Report{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
	}
	report.Fields = h.messageFields(report, msg)

	if err := command.ValidateMessage(msg); err != nil {
		return h.finish(ctx, msg, report, OutcomeInvalid, err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return h.finish(ctx, msg, report, contextOutcome(err), err)
	}

	logging.WithFields(h.logger, report.Fields).Debug("maps.command.started")
	started := time.Now()
	err := h.run(ctx, msg)
	report.Duration = time.Since(started)

	switch {
	case err != nil && ctx.Err() != nil:
		return h.finish(ctx, msg, report, contextOutcome(ctx.Err()), err)
	case err != nil:
		return h.finish(ctx, msg, report, OutcomeFailed, err)
	case ctx.Err() != nil:
		return h.finish(ctx, msg, report, contextOutcome(ctx.Err()), ctx.Err())
	}
	return h.finish(ctx, msg, report, OutcomeSucceeded, nil)
}

func (h *Handler[T]) finish(ctx context.Context, msg T, report Report, outcome Outcome, err error) error {
	report.Outcome = outcome
	report.Err = categorise(outcome, err)
	h.telemetry(ctx, msg, report)
	return report.Err
}

func (h *Handler[T]) messageFields(report Report, msg T) map[string]any {
	fields := map[string]any{"command": report.Command}
	if report.Operation != "" {
		fields["operation"] = report.Operation
	}
	if h.fields != nil {
		maps.Copy(fields, h.fields(msg))
	}
	return fields
}

// WithTimeout overrides DefaultCommandTimeout. Zero or negative disables the
// deadline.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOperation names the run in every entry, e.g. maps.render.page.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields derives extra log fields from each message.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithTelemetry replaces the default LogTelemetry.
func WithTelemetry[T command.Message](fn Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = fn
	}
}
