// Package run coordinates one bot invocation: it executes the round-trip
// pipeline of every enabled exchange and aggregates per-exchange outcomes
// into a single summary.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wlchen/slipbot/internal/domain"
)

// Pipeline is one exchange's round trip as the orchestrator sees it.
type Pipeline interface {
	// Name returns the exchange display name used in results and messages.
	Name() string
	// Execute runs the round trip to completion.
	Execute(ctx context.Context) error
}

// Orchestrator runs every pipeline and records a per-exchange result. A
// pipeline failure is contained to its own result: the remaining exchanges
// still run, and the summary always covers all of them.
type Orchestrator struct {
	pipelines []Pipeline
	parallel  bool
	now       func() time.Time
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given pipelines, in the
// order they should run. With parallel set, independent exchanges run
// concurrently; each pipeline stays internally sequential either way.
func NewOrchestrator(pipelines []Pipeline, parallel bool, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		pipelines: pipelines,
		parallel:  parallel,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "orchestrator")),
	}
}

// Run executes all pipelines and returns the summary. Results keep the
// configured pipeline order regardless of execution mode. With zero
// pipelines the summary is empty and nothing runs.
func (o *Orchestrator) Run(ctx context.Context) domain.ExecutionSummary {
	results := make([]domain.ExecutionResult, len(o.pipelines))

	if o.parallel {
		var g errgroup.Group
		for i, p := range o.pipelines {
			i, p := i, p
			g.Go(func() error {
				results[i] = o.execute(ctx, p)
				return nil
			})
		}
		// Workers never return errors; outcomes live in results.
		_ = g.Wait()
	} else {
		for i, p := range o.pipelines {
			results[i] = o.execute(ctx, p)
		}
	}

	return domain.ExecutionSummary{Results: results, Timestamp: o.now()}
}

// execute runs one pipeline and converts any error or panic into a failed
// result. This is the only layer that absorbs pipeline failures.
func (o *Orchestrator) execute(ctx context.Context, p Pipeline) (result domain.ExecutionResult) {
	result = domain.ExecutionResult{Exchange: p.Name()}

	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "pipeline panicked",
				slog.String("exchange", p.Name()),
				slog.String("panic", fmt.Sprint(r)),
			)
			result.Success = false
		}
	}()

	o.logger.InfoContext(ctx, "pipeline starting", slog.String("exchange", p.Name()))

	if err := p.Execute(ctx); err != nil {
		o.logger.ErrorContext(ctx, "pipeline failed",
			slog.String("exchange", p.Name()),
			slog.String("error", err.Error()),
		)
		return result
	}

	o.logger.InfoContext(ctx, "pipeline finished", slog.String("exchange", p.Name()))
	result.Success = true
	return result
}
