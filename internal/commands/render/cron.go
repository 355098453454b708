package rendercmd

import (
	"context"
	"strings"

	command "github.com/goliatone/go-command"
)

const defaultRebuildExpression = "@hourly"

var (
	_ command.Commander[RenderSiteCommand] = (*ScheduledSiteHandler)(nil)
	_ command.CronCommand                  = (*ScheduledSiteHandler)(nil)
)

// ScheduledSiteHandler re-renders a fixed page directory on a cron schedule.
type ScheduledSiteHandler struct {
	site       *RenderSiteHandler
	msg        RenderSiteCommand
	cronConfig command.HandlerConfig
}

// ScheduleOption customises the scheduled rebuild.
type ScheduleOption func(*ScheduledSiteHandler)

// ScheduleWithCronExpression overrides the rebuild cron expression.
func ScheduleWithCronExpression(expression string) ScheduleOption {
	return func(h *ScheduledSiteHandler) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			h.cronConfig.Expression = trimmed
		}
	}
}

// ScheduleWithCronConfig replaces the cron registration options.
func ScheduleWithCronConfig(config command.HandlerConfig) ScheduleOption {
	return func(h *ScheduledSiteHandler) {
		h.cronConfig = config
	}
}

// NewScheduledSiteHandler binds msg to site so a cron runner can replay it.
func NewScheduledSiteHandler(site *RenderSiteHandler, msg RenderSiteCommand, opts ...ScheduleOption) *ScheduledSiteHandler {
	h := &ScheduledSiteHandler{
		site: site,
		msg:  msg,
		cronConfig: command.HandlerConfig{
			Expression: defaultRebuildExpression,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute satisfies command.Commander[RenderSiteCommand]. Zero fields of
// msg fall back to the scheduled command.
func (h *ScheduledSiteHandler) Execute(ctx context.Context, msg RenderSiteCommand) error {
	if msg.Directory == "" {
		msg.Directory = h.msg.Directory
	}
	if msg.OutputDir == "" {
		msg.OutputDir = h.msg.OutputDir
	}
	if msg.Recursive == nil {
		msg.Recursive = h.msg.Recursive
	}
	return h.site.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *ScheduledSiteHandler) CronHandler() func() error {
	return func() error {
		return h.site.Execute(context.Background(), h.msg)
	}
}

// CronOptions satisfies command.CronCommand.
func (h *ScheduledSiteHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the page handler to CLI integrations.
func (h *RenderPageHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for single page renders.
func (h *RenderPageHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"render", "page"},
		Group:       "render",
		Description: "Render one wiki page with its maps to HTML",
	}
}

// CLIHandler exposes the site handler to CLI integrations.
func (h *RenderSiteHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for directory renders.
func (h *RenderSiteHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"render", "site"},
		Group:       "render",
		Description: "Render a page directory into static HTML files; supports dry-run",
	}
}
