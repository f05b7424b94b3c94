package hoya

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/domain"
)

// mapStatus converts the UI status label to the shared vocabulary.
func mapStatus(label string) domain.OrderStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "open", "pending", "partially filled":
		return domain.OrderStatusPending
	case "filled", "completed":
		return domain.OrderStatusCompleted
	case "cancelled", "canceled":
		return domain.OrderStatusCancelled
	default:
		return domain.OrderStatusOther
	}
}

// parseAmount parses a scraped numeric cell, tolerating thousands separators
// and surrounding whitespace.
func parseAmount(text string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

func parseLevels(rows [][]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("malformed depth row %v", row)
		}
		price, err := parseAmount(row[0])
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", row[0], err)
		}
		amount, err := parseAmount(row[1])
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", row[1], err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Amount: amount})
	}
	return levels, nil
}
