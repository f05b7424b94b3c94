package slip

import (
	"io"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlchen/slipbot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeExchange replays scripted responses. Depths and balances are consumed
// in order; the last scripted status repeats forever so an "always pending"
// exchange is a single-element script.
type fakeExchange struct {
	depths      []domain.MarketDepth
	balances    []decimal.Decimal
	statuses    []domain.OrderStatus
	placed      []domain.OrderRequest
	detailErr   error
	detailCalls int
}

func (f *fakeExchange) Name() string { return "Fake" }

func (f *fakeExchange) FetchMarketDepth(context.Context, domain.Currency) (domain.MarketDepth, error) {
	d := f.depths[0]
	if len(f.depths) > 1 {
		f.depths = f.depths[1:]
	}
	return d, nil
}

func (f *fakeExchange) FetchWalletBalance(context.Context, domain.Currency) (decimal.Decimal, error) {
	b := f.balances[0]
	if len(f.balances) > 1 {
		f.balances = f.balances[1:]
	}
	return b, nil
}

func (f *fakeExchange) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.Order, error) {
	f.placed = append(f.placed, req)
	return domain.Order{ID: strconv.Itoa(len(f.placed)), Status: domain.OrderStatusPending}, nil
}

func (f *fakeExchange) GetOrderDetail(_ context.Context, orderID string, _ domain.Currency) (domain.Order, error) {
	f.detailCalls++
	if f.detailErr != nil {
		return domain.Order{}, f.detailErr
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return domain.Order{ID: orderID, Status: s}, nil
}

// testMonitor wires a Monitor to a fake clock: every sleep advances the
// clock by the poll interval, so tests run without wall-clock waits.
func testMonitor(client *fakeExchange, interval, timeout time.Duration) (*Monitor, *int) {
	m := NewMonitor(client, interval, timeout, discardLogger())
	now := time.Unix(1700000000, 0)
	sleeps := new(int)
	m.now = func() time.Time { return now }
	m.sleep = func(context.Context, time.Duration) error {
		*sleeps++
		now = now.Add(interval)
		return nil
	}
	return m, sleeps
}

func TestAwaitReturnsOnTerminalStatus(t *testing.T) {
	fake := &fakeExchange{statuses: []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusPending,
		domain.OrderStatusCompleted,
	}}
	m, sleeps := testMonitor(fake, 500*time.Millisecond, time.Minute)

	order, err := m.Await(context.Background(), "42", "usdt")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.Equal(t, 3, fake.detailCalls)
	assert.Equal(t, 2, *sleeps, "terminal status must not cost extra poll intervals")
}

func TestAwaitReturnsOnCancelled(t *testing.T) {
	fake := &fakeExchange{statuses: []domain.OrderStatus{domain.OrderStatusCancelled}}
	m, _ := testMonitor(fake, 500*time.Millisecond, time.Minute)

	order, err := m.Await(context.Background(), "42", "usdt")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	assert.Equal(t, 1, fake.detailCalls)
}

func TestAwaitSoftTimeoutOnForeverPending(t *testing.T) {
	fake := &fakeExchange{statuses: []domain.OrderStatus{domain.OrderStatusPending}}
	m, sleeps := testMonitor(fake, 500*time.Millisecond, 2*time.Second)

	order, err := m.Await(context.Background(), "42", "usdt")
	require.NoError(t, err, "timeout is soft, not an error")
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	// 2 s timeout at 500 ms per poll: the loop must stop right after the
	// deadline passes, not hang.
	assert.Equal(t, 5, *sleeps)
	assert.Equal(t, 6, fake.detailCalls)
}

func TestAwaitPropagatesExchangeError(t *testing.T) {
	fake := &fakeExchange{detailErr: errors.New("boom")}
	m, _ := testMonitor(fake, 500*time.Millisecond, time.Minute)

	_, err := m.Await(context.Background(), "42", "usdt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor order 42")
}

func TestAwaitStopsWhenContextCancelled(t *testing.T) {
	fake := &fakeExchange{statuses: []domain.OrderStatus{domain.OrderStatusPending}}
	m := NewMonitor(fake, 500*time.Millisecond, time.Minute, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Await(ctx, "42", "usdt")
	assert.ErrorIs(t, err, context.Canceled)
}
