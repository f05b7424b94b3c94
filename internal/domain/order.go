package domain

import "github.com/shopspring/decimal"

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus is the normalized order lifecycle state shared by every
// exchange adapter. Vendor-specific states are mapped into this vocabulary;
// anything unrecognized becomes OrderStatusOther.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusOther     OrderStatus = "other"
)

// Terminal reports whether no further status change is expected.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderRequest describes a limit order to be placed on an exchange.
type OrderRequest struct {
	Currency Currency
	Side     OrderSide
	Volume   decimal.Decimal
	Price    decimal.Decimal
}

// Order is the normalized view of an exchange order: the exchange-assigned
// identifier and the current lifecycle status. It is held only transiently
// while an order is being monitored.
type Order struct {
	ID     string
	Status OrderStatus
}
