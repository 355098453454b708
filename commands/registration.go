// Package commands exposes the map render command handlers to hosts that
// run them from a CLI, a dispatcher or a cron scheduler.
package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	cmsmaps "github.com/goliatone/go-cms-maps"
	rendercmd "github.com/goliatone/go-cms-maps/internal/commands/render"
)

// CommandRegistry records handlers for CLI or cron exposure.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes handlers to a message dispatcher.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar schedules a handler under its cron config.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions selects the integrations handlers are registered with.
// Every field is optional.
type RegistrationOptions struct {
	Registry      CommandRegistry
	Dispatcher    CommandDispatcher
	CronRegistrar CronRegistrar
	// Rebuild schedules a site render when OutputDir is set.
	Rebuild cmsmaps.RenderSiteCommand
	// RebuildCron overrides the @hourly default of the scheduled rebuild.
	RebuildCron string
}

// RegistrationResult lists the handlers built and the dispatcher
// subscriptions to tear down on shutdown.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterModuleCommands builds the page and site handlers of module, plus a
// scheduled rebuild when requested, and hands each to the configured
// integrations. Integration failures are joined; registration continues.
func RegisterModuleCommands(module *cmsmaps.Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if module == nil {
		return result, nil
	}

	set, err := module.RegisterCommands(nil)
	if err != nil {
		return result, err
	}

	handlers := []any{set.Page, set.Site}
	if strings.TrimSpace(opts.Rebuild.OutputDir) != "" {
		handlers = append(handlers, rendercmd.NewScheduledSiteHandler(set.Site, opts.Rebuild,
			rendercmd.ScheduleWithCronExpression(opts.RebuildCron),
		))
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	var errs error
	for _, handler := range handlers {
		result.Handlers = append(result.Handlers, handler)
		errs = errors.Join(errs, opts.register(handler, result))
	}
	return result, errs
}

func (opts RegistrationOptions) register(handler any, result *RegistrationResult) error {
	var errs error
	if opts.Registry != nil {
		errs = errors.Join(errs, opts.Registry.RegisterCommand(handler))
	}
	if opts.Dispatcher != nil {
		sub, err := opts.Dispatcher.RegisterCommand(handler)
		errs = errors.Join(errs, err)
		if err == nil && sub != nil {
			result.Subscriptions = append(result.Subscriptions, sub)
		}
	}
	if cron, ok := handler.(command.CronCommand); ok && opts.CronRegistrar != nil {
		errs = errors.Join(errs, opts.CronRegistrar(cron.CronOptions(), cron.CronHandler()))
	}
	return errs
}
