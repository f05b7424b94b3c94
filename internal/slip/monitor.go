// Package slip implements the buy-then-sell round trip ("slip") that this
// bot runs on each exchange: order monitoring, balance reconciliation, and
// the reverse-order pipeline.
package slip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wlchen/slipbot/internal/domain"
	"github.com/wlchen/slipbot/internal/exchange"
)

const (
	// DefaultPollInterval is the delay between order-detail polls.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultMonitorTimeout bounds how long a single order is watched.
	DefaultMonitorTimeout = 60 * time.Second
)

// Monitor polls an order until it reaches a terminal status or the timeout
// elapses. The timeout is soft: a still-pending order is returned as-is so
// the caller can decide not to run the dependent sell leg. The clock and
// sleep functions are injectable so tests can simulate multi-poll and
// timeout scenarios without wall-clock waits.
type Monitor struct {
	client   exchange.Client
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
	logger   *slog.Logger
}

// NewMonitor creates a Monitor for the given exchange client. Non-positive
// interval or timeout fall back to the defaults.
func NewMonitor(client exchange.Client, interval, timeout time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultMonitorTimeout
	}
	return &Monitor{
		client:   client,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		sleep:    sleepContext,
		logger:   logger.With(slog.String("component", "monitor")),
	}
}

// Await polls the order until it is terminal or the timeout elapses, and
// returns the last-observed order. Errors from the exchange propagate; a
// timeout does not.
func (m *Monitor) Await(ctx context.Context, orderID string, currency domain.Currency) (domain.Order, error) {
	started := m.now()
	var last domain.Order

	for {
		order, err := m.client.GetOrderDetail(ctx, orderID, currency)
		if err != nil {
			return domain.Order{}, fmt.Errorf("monitor order %s: %w", orderID, err)
		}
		if order.Status != last.Status {
			m.logger.InfoContext(ctx, "order status",
				slog.String("order_id", orderID),
				slog.String("status", string(order.Status)),
			)
		}
		last = order

		if order.Status.Terminal() {
			return last, nil
		}

		if m.now().Sub(started) > m.timeout {
			m.logger.InfoContext(ctx, "order monitoring timed out",
				slog.String("order_id", orderID),
				slog.String("status", string(last.Status)),
				slog.Duration("timeout", m.timeout),
			)
			return last, nil
		}

		if err := m.sleep(ctx, m.interval); err != nil {
			return last, err
		}
	}
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
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
