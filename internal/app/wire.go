package app

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/config"
	"github.com/wlchen/slipbot/internal/domain"
	"github.com/wlchen/slipbot/internal/exchange"
	"github.com/wlchen/slipbot/internal/exchange/bito"
	"github.com/wlchen/slipbot/internal/exchange/hoya"
	"github.com/wlchen/slipbot/internal/exchange/max"
	"github.com/wlchen/slipbot/internal/notify"
	"github.com/wlchen/slipbot/internal/run"
	"github.com/wlchen/slipbot/internal/slip"
)

// Dependencies bundles everything one orchestrated pass needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Pipelines, one per enabled exchange, in execution order.
	Pipelines []run.Pipeline
	// Reporter is nil when LINE credentials are not configured; a run
	// without notification is still a valid run.
	Reporter *notify.Reporter
}

// Wire constructs the exchange clients and pipelines for every enabled
// exchange and returns them together with a cleanup function that should be
// called on shutdown to release resources.
func Wire(cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	params, err := tradeParams(cfg.Trade)
	if err != nil {
		return nil, nil, fmt.Errorf("wire: trade params: %w", err)
	}

	var clients []exchange.Client
	if cfg.Max.Enabled {
		clients = append(clients, max.NewClient(
			cfg.Max.BaseURL, cfg.Trade.QuoteCurrency,
			cfg.Max.AccessKey, cfg.Max.SecretKey, logger,
		))
	}
	if cfg.Bito.Enabled {
		clients = append(clients, bito.NewClient(
			cfg.Bito.BaseURL, cfg.Trade.QuoteCurrency,
			cfg.Bito.AccessKey, cfg.Bito.SecretKey, logger,
		))
	}
	if cfg.Hoya.Enabled {
		h := hoya.NewClient(
			cfg.Hoya.BaseURL, cfg.Trade.QuoteCurrency,
			cfg.Hoya.Account, cfg.Hoya.Password, cfg.Hoya.TOTPSecret,
			cfg.Hoya.Headless, logger,
		)
		closers = append(closers, h.Close)
		clients = append(clients, h)
	}

	deps := &Dependencies{}
	for _, client := range clients {
		monitor := slip.NewMonitor(client,
			cfg.Trade.MonitorInterval.Duration,
			cfg.Trade.MonitorTimeout.Duration,
			logger,
		)
		deps.Pipelines = append(deps.Pipelines, slip.NewPipeline(client, monitor, params, logger))
	}

	if cfg.Line.ChannelToken != "" && cfg.Line.Recipient != "" {
		sender := notify.NewLineSender(cfg.Line.ChannelToken, cfg.Line.Recipient)
		deps.Reporter = notify.NewReporter(sender, logger)
	} else {
		logger.Warn("line credentials not configured, run summary will not be delivered")
	}

	return deps, cleanup, nil
}

// tradeParams converts the validated string-typed trade policy into exact
// decimal pipeline parameters.
func tradeParams(t config.TradeConfig) (slip.Params, error) {
	feeRate, err := decimal.NewFromString(t.FeeRate)
	if err != nil {
		return slip.Params{}, fmt.Errorf("fee_rate %q: %w", t.FeeRate, err)
	}
	targetFeeCost, err := decimal.NewFromString(t.TargetFeeCost)
	if err != nil {
		return slip.Params{}, fmt.Errorf("target_fee_cost %q: %w", t.TargetFeeCost, err)
	}
	priceOffset, err := decimal.NewFromString(t.PriceOffset)
	if err != nil {
		return slip.Params{}, fmt.Errorf("price_offset %q: %w", t.PriceOffset, err)
	}

	return slip.Params{
		Currency:        domain.Currency(t.Currency),
		FeeRate:         feeRate,
		TargetFeeCost:   targetFeeCost,
		PriceOffset:     priceOffset,
		SettlementDelay: t.SettleDelay.Duration,
	}, nil
}
