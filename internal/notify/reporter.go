package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wlchen/slipbot/internal/domain"
)

const (
	// maxAttempts bounds delivery at one initial try plus one retry.
	maxAttempts = 2
	retryDelay  = 2 * time.Second
)

// Sender is the push-transport a Reporter delivers through.
type Sender interface {
	// Send delivers one text message.
	Send(ctx context.Context, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "line").
	Name() string
}

// Reporter formats an execution summary and delivers it with bounded retry.
// Delivery failures surface to the caller but are kept separate from trading
// outcomes: a run is never marked failed because its notification was.
type Reporter struct {
	sender Sender
	sleep  func(context.Context, time.Duration) error
	logger *slog.Logger
}

// NewReporter creates a Reporter delivering through the given sender.
func NewReporter(sender Sender, logger *slog.Logger) *Reporter {
	return &Reporter{
		sender: sender,
		sleep:  sleepContext,
		logger: logger.With(slog.String("component", "reporter")),
	}
}

// Report formats the summary and pushes it. An empty summary (no exchanges
// ran) skips delivery entirely. Oversized messages fail without truncation.
func (r *Reporter) Report(ctx context.Context, summary domain.ExecutionSummary) error {
	message := FormatSummary(summary)
	if message == "" {
		r.logger.InfoContext(ctx, "empty summary, skipping notification")
		return nil
	}
	if err := ValidateLength(message); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "sending run summary", slog.String("message", message))

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = r.sender.Send(ctx, message); err == nil {
			return nil
		}
		r.logger.ErrorContext(ctx, "notification delivery failed",
			slog.String("sender", r.sender.Name()),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
		if attempt < maxAttempts {
			if serr := r.sleep(ctx, retryDelay); serr != nil {
				return serr
			}
		}
	}
	return fmt.Errorf("notify: deliver after %d attempts: %w", maxAttempts, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
