// Package app provides the top-level application lifecycle for the slip bot.
// It wires together exchange clients, pipelines, and the notification
// reporter, runs one orchestrated pass, and reports the outcome.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wlchen/slipbot/internal/config"
	"github.com/wlchen/slipbot/internal/notify"
	"github.com/wlchen/slipbot/internal/run"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point: wire dependencies, execute every enabled
// exchange's pipeline once, and push the summary. Per-exchange failures live
// in the summary; Run itself only fails on wiring problems.
func (a *App) Run(ctx context.Context) error {
	enabled := a.cfg.EnabledExchanges()
	a.logger.InfoContext(ctx, "starting run",
		slog.String("exchanges", strings.Join(enabled, ",")),
		slog.Bool("parallel", a.cfg.Trade.Parallel),
	)

	deps, cleanup, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	if len(deps.Pipelines) == 0 {
		a.logger.InfoContext(ctx, "no exchanges enabled, nothing to do")
		return nil
	}

	orchestrator := run.NewOrchestrator(deps.Pipelines, a.cfg.Trade.Parallel, a.logger)
	summary := orchestrator.Run(ctx)

	if deps.Reporter == nil {
		a.logger.InfoContext(ctx, "notification not configured, skipping",
			slog.String("summary", notify.FormatSummary(summary)),
		)
		return nil
	}

	// Delivery failure never marks the trading run itself as failed.
	if err := deps.Reporter.Report(ctx, summary); err != nil {
		a.logger.ErrorContext(ctx, "summary notification failed", slog.String("error", err.Error()))
	}
	return nil
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
