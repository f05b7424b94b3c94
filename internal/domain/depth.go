package domain

import "github.com/shopspring/decimal"

// Currency is a tradable base currency symbol, lower-case (e.g. "usdt").
// The quote currency is fixed per deployment and lives in configuration.
type Currency string

// String returns the symbol as a plain string.
func (c Currency) String() string { return string(c) }

// PriceLevel is a single price+amount rung in an order book.
type PriceLevel struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// MarketDepth is a snapshot of outstanding ask and bid levels for one market.
// Either side may be empty; the derived-price accessors report availability
// explicitly instead of returning a sentinel.
type MarketDepth struct {
	Asks []PriceLevel
	Bids []PriceLevel
}

// LowestAsk returns the minimum ask price. ok is false when the ask side is
// empty.
func (d MarketDepth) LowestAsk() (price decimal.Decimal, ok bool) {
	if len(d.Asks) == 0 {
		return decimal.Decimal{}, false
	}
	price = d.Asks[0].Price
	for _, lvl := range d.Asks[1:] {
		if lvl.Price.LessThan(price) {
			price = lvl.Price
		}
	}
	return price, true
}

// HighestBid returns the maximum bid price. ok is false when the bid side is
// empty.
func (d MarketDepth) HighestBid() (price decimal.Decimal, ok bool) {
	if len(d.Bids) == 0 {
		return decimal.Decimal{}, false
	}
	price = d.Bids[0].Price
	for _, lvl := range d.Bids[1:] {
		if lvl.Price.GreaterThan(price) {
			price = lvl.Price
		}
	}
	return price, true
}
