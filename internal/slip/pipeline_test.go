package slip

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlchen/slipbot/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func depth(asks, bids []string) domain.MarketDepth {
	var d domain.MarketDepth
	for _, p := range asks {
		d.Asks = append(d.Asks, domain.PriceLevel{Price: dec(p), Amount: dec("1")})
	}
	for _, p := range bids {
		d.Bids = append(d.Bids, domain.PriceLevel{Price: dec(p), Amount: dec("1")})
	}
	return d
}

func testParams() Params {
	return Params{
		Currency:        "usdt",
		FeeRate:         dec("0.002"),
		TargetFeeCost:   dec("0.252"),
		PriceOffset:     dec("0.002"),
		SettlementDelay: time.Second,
	}
}

func testPipeline(fake *fakeExchange, params Params) *Pipeline {
	monitor, _ := testMonitor(fake, 10*time.Millisecond, time.Minute)
	p := NewPipeline(fake, monitor, params, discardLogger())
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestExecuteRoundTrip(t *testing.T) {
	fake := &fakeExchange{
		depths: []domain.MarketDepth{
			depth([]string{"30.65", "30.71"}, []string{"30.4"}),
			depth([]string{"30.7"}, []string{"30.60", "30.55"}),
		},
		balances: []decimal.Decimal{dec("10.00001"), dec("10.00029")},
		statuses: []domain.OrderStatus{domain.OrderStatusCompleted},
	}

	err := testPipeline(fake, testParams()).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.placed, 2)

	buy := fake.placed[0]
	assert.Equal(t, domain.OrderSideBuy, buy.Side)
	// 0.252 / 30.65 / 0.002 = 4.11092..., rounded up to 4 places.
	assert.True(t, buy.Volume.Equal(dec("4.111")), "buy volume %s", buy.Volume)
	assert.True(t, buy.Price.Equal(dec("30.652")), "buy price %s", buy.Price)

	sell := fake.placed[1]
	assert.Equal(t, domain.OrderSideSell, sell.Side)
	// Raw delta 0.00028 floors to 0.0002: never sell more than was received.
	assert.True(t, sell.Volume.Equal(dec("0.0002")), "sell volume %s", sell.Volume)
	assert.True(t, sell.Price.Equal(dec("30.6")), "sell price %s", sell.Price)
}

func TestExecuteSkipsSellWhenBuyNotCompleted(t *testing.T) {
	fake := &fakeExchange{
		depths:   []domain.MarketDepth{depth([]string{"30.65"}, []string{"30.4"})},
		balances: []decimal.Decimal{dec("10")},
		statuses: []domain.OrderStatus{domain.OrderStatusCancelled},
	}

	err := testPipeline(fake, testParams()).Execute(context.Background())
	require.NoError(t, err, "an unfilled buy is an early exit, not a failure")
	assert.Len(t, fake.placed, 1)
}

func TestExecuteSkipsSellWhenNoBalanceDelta(t *testing.T) {
	fake := &fakeExchange{
		depths:   []domain.MarketDepth{depth([]string{"30.65"}, []string{"30.4"})},
		balances: []decimal.Decimal{dec("10"), dec("10")},
		statuses: []domain.OrderStatus{domain.OrderStatusCompleted},
	}

	err := testPipeline(fake, testParams()).Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, fake.placed, 1)
}

func TestExecuteSkipsSellWhenDeltaFloorsToZero(t *testing.T) {
	fake := &fakeExchange{
		depths:   []domain.MarketDepth{depth([]string{"30.65"}, []string{"30.4"})},
		balances: []decimal.Decimal{dec("10"), dec("10.00009")},
		statuses: []domain.OrderStatus{domain.OrderStatusCompleted},
	}

	err := testPipeline(fake, testParams()).Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, fake.placed, 1, "a sub-scale delta must not produce a zero-volume sell")
}

func TestExecuteFailsOnEmptyAsks(t *testing.T) {
	fake := &fakeExchange{
		depths: []domain.MarketDepth{depth(nil, []string{"30.4"})},
	}

	err := testPipeline(fake, testParams()).Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoLiquidity)
	assert.Empty(t, fake.placed)
}

func TestExecuteFailsOnEmptyBidsAtSell(t *testing.T) {
	fake := &fakeExchange{
		depths: []domain.MarketDepth{
			depth([]string{"30.65"}, []string{"30.4"}),
			depth([]string{"30.7"}, nil),
		},
		balances: []decimal.Decimal{dec("10"), dec("10.5")},
		statuses: []domain.OrderStatus{domain.OrderStatusCompleted},
	}

	err := testPipeline(fake, testParams()).Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoLiquidity)
	assert.Len(t, fake.placed, 1, "the buy leg already ran when the sell book was empty")
}
