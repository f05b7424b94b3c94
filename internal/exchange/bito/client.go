// Package bito is the REST adapter for the BitoPro exchange. Signed
// endpoints carry a base64 JSON payload authenticated with HMAC-SHA384
// headers; the payload is the request body for POSTs and a bare nonce
// document for GETs.
package bito

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/crypto"
	"github.com/wlchen/slipbot/internal/domain"
	"github.com/wlchen/slipbot/internal/exchange"
)

// Client is the BitoPro REST client.
type Client struct {
	baseURL       string
	quoteCurrency string
	auth          *crypto.HMACAuth
	httpClient    *http.Client
	logger        *slog.Logger
}

var _ exchange.Client = (*Client)(nil)

// NewClient creates a BitoPro client. baseURL is the API root, e.g.
// "https://api.bitopro.com/v3".
func NewClient(baseURL, quoteCurrency, accessKey, secretKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		quoteCurrency: quoteCurrency,
		auth:          &crypto.HMACAuth{AccessKey: accessKey, SecretKey: secretKey},
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "bito")),
	}
}

// Name returns the display name used in execution summaries.
func (c *Client) Name() string { return "Bito" }

// FetchMarketDepth returns the order book snapshot for currency against the
// quote currency. The order-book endpoint is public and unsigned.
func (c *Client) FetchMarketDepth(ctx context.Context, currency domain.Currency) (domain.MarketDepth, error) {
	u := fmt.Sprintf("%s/order-book/%s?limit=5", c.baseURL, url.PathEscape(c.marketPair(currency)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("bito: build depth request: %w", err)
	}

	var resp depthResponse
	if err := c.do(req, &resp); err != nil {
		c.logger.ErrorContext(ctx, "fetch market depth failed", slog.String("error", err.Error()))
		return domain.MarketDepth{}, fmt.Errorf("bito: fetch market depth: %w", err)
	}

	asks, err := parseLevels(resp.Asks)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("bito: parse asks: %w", err)
	}
	bids, err := parseLevels(resp.Bids)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("bito: parse bids: %w", err)
	}

	return domain.MarketDepth{Asks: asks, Bids: bids}, nil
}

// FetchWalletBalance returns the available balance for currency.
func (c *Client) FetchWalletBalance(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	req, err := c.signedGet(ctx, "/accounts/balance")
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("bito: build balance request: %w", err)
	}

	var resp balanceResponse
	if err := c.do(req, &resp); err != nil {
		c.logger.ErrorContext(ctx, "fetch wallet balance failed", slog.String("error", err.Error()))
		return decimal.Decimal{}, fmt.Errorf("bito: fetch wallet balance: %w", err)
	}

	for _, item := range resp.Data {
		if item.Currency == currency.String() {
			available, err := decimal.NewFromString(item.Available)
			if err != nil {
				return decimal.Decimal{}, fmt.Errorf("bito: parse balance %q: %w", item.Available, err)
			}
			return available, nil
		}
	}

	return decimal.Zero, nil
}

// PlaceOrder submits a limit order and returns the exchange-assigned ID with
// the initial status.
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (domain.Order, error) {
	pair := c.marketPair(order.Currency)
	body := orderRequest{
		Market: pair,
		Side:   string(order.Side),
		Volume: order.Volume.String(),
		Price:  order.Price.String(),
		Type:   "limit",
		Nonce:  nonce(),
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return domain.Order{}, fmt.Errorf("bito: marshal order: %w", err)
	}

	u := fmt.Sprintf("%s/orders/%s", c.baseURL, url.PathEscape(pair))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bodyJSON))
	if err != nil {
		return domain.Order{}, fmt.Errorf("bito: build order request: %w", err)
	}
	c.applyHeaders(req, bodyJSON)

	var detail orderDetail
	if err := c.do(req, &detail); err != nil {
		c.logger.ErrorContext(ctx, "place order failed",
			slog.String("side", string(order.Side)),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("bito: place order: %w", err)
	}

	c.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", detail.ID),
		slog.String("side", string(order.Side)),
		slog.String("volume", order.Volume.String()),
		slog.String("price", order.Price.String()),
	)

	return toOrder(detail), nil
}

// GetOrderDetail returns the current status snapshot of an order.
func (c *Client) GetOrderDetail(ctx context.Context, orderID string, currency domain.Currency) (domain.Order, error) {
	path := fmt.Sprintf("/orders/%s/%s", url.PathEscape(c.marketPair(currency)), url.PathEscape(orderID))

	req, err := c.signedGet(ctx, path)
	if err != nil {
		return domain.Order{}, fmt.Errorf("bito: build order detail request: %w", err)
	}

	var detail orderDetail
	if err := c.do(req, &detail); err != nil {
		c.logger.ErrorContext(ctx, "fetch order detail failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("bito: fetch order detail: %w", err)
	}

	return toOrder(detail), nil
}

// signedGet builds a GET request signed over a bare nonce payload.
func (c *Client) signedGet(ctx context.Context, path string) (*http.Request, error) {
	payloadJSON, err := json.Marshal(map[string]any{"nonce": nonce()})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.applyHeaders(req, payloadJSON)
	return req, nil
}

func (c *Client) applyHeaders(req *http.Request, payloadJSON []byte) {
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.auth.BitoHeaders(payloadJSON) {
		req.Header.Set(k, v)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d: %s", domain.ErrUnauthorized, resp.StatusCode, body)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) marketPair(currency domain.Currency) string {
	return currency.String() + "_" + c.quoteCurrency
}

// mapState converts BitoPro order states to the shared vocabulary.
func mapState(state string) domain.OrderStatus {
	switch state {
	case "pending":
		return domain.OrderStatusPending
	case "completed":
		return domain.OrderStatusCompleted
	case "cancelled":
		return domain.OrderStatusCancelled
	default:
		return domain.OrderStatusOther
	}
}

func toOrder(detail orderDetail) domain.Order {
	return domain.Order{
		ID:     strconv.FormatInt(detail.ID, 10),
		Status: mapState(detail.State),
	}
}

func parseLevels(raw [][]string) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			return nil, fmt.Errorf("malformed price level %v", pair)
		}
		price, err := decimal.NewFromString(pair[0])
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", pair[0], err)
		}
		amount, err := decimal.NewFromString(pair[1])
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", pair[1], err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Amount: amount})
	}
	return levels, nil
}

func nonce() int64 {
	return time.Now().UnixMilli()
}
