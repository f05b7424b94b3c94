// Package exchange defines the capability contract every exchange adapter
// implements. The slip pipeline and run orchestrator depend only on this
// interface; vendor wire formats, signing, and status mapping live in the
// per-vendor sub-packages.
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/domain"
)

// Client is the uniform capability set the core requires from an exchange.
type Client interface {
	// Name returns the display name used in execution summaries (e.g. "Max").
	Name() string

	// FetchMarketDepth returns the current order book snapshot for the
	// currency against the deployment's quote currency.
	FetchMarketDepth(ctx context.Context, currency domain.Currency) (domain.MarketDepth, error)

	// FetchWalletBalance returns the available (not locked or staked) balance
	// for the currency.
	FetchWalletBalance(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)

	// PlaceOrder submits a limit order and returns immediately with the
	// exchange-assigned ID and initial status; it does not wait for a fill.
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)

	// GetOrderDetail returns the current status snapshot of an order.
	GetOrderDetail(ctx context.Context, orderID string, currency domain.Currency) (domain.Order, error)
}
