package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func level(price string) PriceLevel {
	return PriceLevel{
		Price:  decimal.RequireFromString(price),
		Amount: decimal.RequireFromString("1"),
	}
}

func TestLowestAsk(t *testing.T) {
	depth := MarketDepth{
		Asks: []PriceLevel{level("30.71"), level("30.65"), level("30.80")},
		Bids: []PriceLevel{level("30.60")},
	}

	price, ok := depth.LowestAsk()
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("30.65")), "got %s", price)
}

func TestHighestBid(t *testing.T) {
	depth := MarketDepth{
		Asks: []PriceLevel{level("30.71")},
		Bids: []PriceLevel{level("30.55"), level("30.62"), level("30.58")},
	}

	price, ok := depth.HighestBid()
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("30.62")), "got %s", price)
}

func TestEmptySidesReportUnavailable(t *testing.T) {
	var depth MarketDepth

	_, ok := depth.LowestAsk()
	assert.False(t, ok)

	_, ok = depth.HighestBid()
	assert.False(t, ok)
}

func TestSingleLevel(t *testing.T) {
	depth := MarketDepth{
		Asks: []PriceLevel{level("31.00")},
		Bids: []PriceLevel{level("30.00")},
	}

	ask, ok := depth.LowestAsk()
	require.True(t, ok)
	assert.True(t, ask.Equal(decimal.RequireFromString("31.00")))

	bid, ok := depth.HighestBid()
	require.True(t, ok)
	assert.True(t, bid.Equal(decimal.RequireFromString("30.00")))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusOther.Terminal())
}
