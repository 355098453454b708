package commands

import (
	"errors"
	"testing"

	command "github.com/goliatone/go-command"

	cmsmaps "github.com/goliatone/go-cms-maps"
	rendercmd "github.com/goliatone/go-cms-maps/internal/commands/render"
)

func newModule(t *testing.T) *cmsmaps.Module {
	t.Helper()
	module, err := cmsmaps.New(cmsmaps.DefaultConfig(), cmsmaps.WithPagesPath(t.TempDir()))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func TestRegisterModuleCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}
	cron := &recordingCron{}

	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{
		Registry:      registry,
		Dispatcher:    dispatcher,
		CronRegistrar: cron.Registrar(),
		Rebuild:       cmsmaps.RenderSiteCommand{Directory: ".", OutputDir: t.TempDir()},
		RebuildCron:   "@weekly",
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 3 {
		t.Fatalf("expected page, site and scheduled handlers, got %d", len(result.Handlers))
	}
	if len(result.Handlers) != len(registry.handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(dispatcher.subscriptions) != 3 {
		t.Fatalf("expected dispatcher subscriptions when dispatcher provided, got %d", len(dispatcher.subscriptions))
	}
	if len(cron.registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(cron.registrations))
	}
	if got := cron.registrations[0].config.Expression; got != "@weekly" {
		t.Fatalf("expected rebuild cron expression override, got %q", got)
	}
	if cron.registrations[0].handler == nil {
		t.Fatal("expected cron handler function")
	}
	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("scheduled rebuild: %v", err)
	}
}

func TestRegisterModuleCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("expected handlers to be built even without registrars, got %d", len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
	for _, handler := range result.Handlers {
		if _, ok := handler.(*rendercmd.ScheduledSiteHandler); ok {
			t.Fatal("expected no scheduled rebuild without an output directory")
		}
	}
}

func TestRegisterModuleCommandsJoinsErrors(t *testing.T) {
	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{
		Dispatcher: &recordingDispatcher{err: errors.New("closed")},
	})
	if err == nil {
		t.Fatal("expected dispatcher error to propagate")
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("expected handlers despite dispatcher error, got %d", len(result.Handlers))
	}
}

func TestRegisterModuleCommandsNilModule(t *testing.T) {
	result, err := RegisterModuleCommands(nil, RegistrationOptions{})
	if err != nil || len(result.Handlers) != 0 {
		t.Fatalf("expected empty result, got %+v %v", result, err)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
	err           error
}

func (c *recordingCron) Registrar() CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		if c.err != nil {
			return c.err
		}
		var fn func() error
		if h, ok := handler.(func() error); ok {
			fn = h
		}
		c.registrations = append(c.registrations, cronRegistration{
			config:  cfg,
			handler: fn,
		})
		return nil
	}
}

type recordingDispatcher struct {
	handlers      []any
	subscriptions []*recordingSubscription
	err           error
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.handlers = append(d.handlers, handler)
	sub := &recordingSubscription{handler: handler}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type recordingSubscription struct {
	handler      any
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() {
	s.unsubscribed = true
}
