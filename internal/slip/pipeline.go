package slip

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/domain"
	"github.com/wlchen/slipbot/internal/exchange"
)

// volumeScale is the decimal precision exchanges accept for volumes and
// prices in this deployment.
const volumeScale = 4

// Params are the sizing knobs of a round trip. The fee-rate and offset
// constants are deployment policy, so they come from configuration rather
// than code.
type Params struct {
	// Currency is the base currency to trade.
	Currency domain.Currency
	// FeeRate is the exchange's taker fee rate (e.g. 0.002).
	FeeRate decimal.Decimal
	// TargetFeeCost is the fee spend the buy is sized to: the buy volume is
	// TargetFeeCost / lowestAsk / FeeRate, so the post-fee notional clears
	// the exchange minimum.
	TargetFeeCost decimal.Decimal
	// PriceOffset is added to the lowest ask when pricing the buy so it
	// fills against current liquidity.
	PriceOffset decimal.Decimal
	// SettlementDelay is the pause after a completed buy before re-reading
	// the wallet, letting the exchange's balance ledger catch up.
	SettlementDelay time.Duration
}

// Pipeline runs one buy-then-conditionally-sell round trip on a single
// exchange. Any error escapes to the orchestrator, which is the only layer
// that converts failures into results.
type Pipeline struct {
	client  exchange.Client
	monitor *Monitor
	params  Params
	sleep   func(context.Context, time.Duration) error
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline over the given exchange client and monitor.
func NewPipeline(client exchange.Client, monitor *Monitor, params Params, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		monitor: monitor,
		params:  params,
		sleep:   sleepContext,
		logger:  logger.With(slog.String("component", "pipeline"), slog.String("exchange", client.Name())),
	}
}

// Name returns the exchange display name.
func (p *Pipeline) Name() string { return p.client.Name() }

// Execute runs the round trip:
//
//	depth → size+place buy → monitor → settle → balance delta →
//	size+place sell at the current best bid → monitor.
//
// A buy that does not complete, or a non-positive balance delta, ends the
// trip early without error. The buy volume and price round up while the
// sell price and the balance delta round down; the floor on the delta
// guarantees the sell never exceeds what was actually received.
func (p *Pipeline) Execute(ctx context.Context) error {
	currency := p.params.Currency

	depth, err := p.client.FetchMarketDepth(ctx, currency)
	if err != nil {
		return err
	}
	lowestAsk, ok := depth.LowestAsk()
	if !ok {
		return fmt.Errorf("%w: no asks for %s", domain.ErrNoLiquidity, currency)
	}
	p.logger.InfoContext(ctx, "lowest ask price", slog.String("price", lowestAsk.String()))

	before, err := p.client.FetchWalletBalance(ctx, currency)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "wallet balance before buy", slog.String("balance", before.String()))

	buyVolume := p.params.TargetFeeCost.Div(lowestAsk).Div(p.params.FeeRate).RoundCeil(volumeScale)
	buyPrice := lowestAsk.Add(p.params.PriceOffset).RoundCeil(volumeScale)

	buyOrder, err := p.client.PlaceOrder(ctx, domain.OrderRequest{
		Currency: currency,
		Side:     domain.OrderSideBuy,
		Volume:   buyVolume,
		Price:    buyPrice,
	})
	if err != nil {
		return err
	}

	buyDetail, err := p.monitor.Await(ctx, buyOrder.ID, currency)
	if err != nil {
		return err
	}
	if buyDetail.Status != domain.OrderStatusCompleted {
		p.logger.InfoContext(ctx, "buy order did not complete, skipping sell",
			slog.String("order_id", buyOrder.ID),
			slog.String("status", string(buyDetail.Status)),
		)
		return nil
	}

	if err := p.sleep(ctx, p.params.SettlementDelay); err != nil {
		return err
	}

	after, err := p.client.FetchWalletBalance(ctx, currency)
	if err != nil {
		return err
	}

	// Floor, never round: fees are deducted in the traded currency, and
	// selling more than was received would fail or dip into prior holdings.
	delta := after.Sub(before).RoundFloor(volumeScale)
	if !delta.IsPositive() {
		p.logger.InfoContext(ctx, "no balance difference detected to sell",
			slog.String("delta", delta.String()),
		)
		return nil
	}
	p.logger.InfoContext(ctx, "acquired volume", slog.String("delta", delta.String()))

	latest, err := p.client.FetchMarketDepth(ctx, currency)
	if err != nil {
		return err
	}
	highestBid, ok := latest.HighestBid()
	if !ok {
		return fmt.Errorf("%w: no bids for %s", domain.ErrNoLiquidity, currency)
	}
	p.logger.InfoContext(ctx, "highest bid price", slog.String("price", highestBid.String()))

	sellOrder, err := p.client.PlaceOrder(ctx, domain.OrderRequest{
		Currency: currency,
		Side:     domain.OrderSideSell,
		Volume:   delta,
		Price:    highestBid.RoundFloor(volumeScale),
	})
	if err != nil {
		return err
	}

	sellDetail, err := p.monitor.Await(ctx, sellOrder.ID, currency)
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "round trip finished",
		slog.String("sell_order_id", sellDetail.ID),
		slog.String("sell_status", string(sellDetail.Status)),
	)
	return nil
}
