// Package max is the REST adapter for the Max exchange. Signed endpoints
// carry a base64 JSON payload with a millisecond nonce and the request path,
// authenticated with HMAC-SHA256 headers.
package max

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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/crypto"
	"github.com/wlchen/slipbot/internal/domain"
	"github.com/wlchen/slipbot/internal/exchange"
)

const (
	depthPath   = "/api/v3/depth"
	balancePath = "/api/v3/wallet/spot/accounts"
	orderPath   = "/api/v3/wallet/spot/order"
	detailPath  = "/api/v3/order"
)

// Client is the Max REST client.
type Client struct {
	baseURL       string
	quoteCurrency string
	auth          *crypto.HMACAuth
	httpClient    *http.Client
	logger        *slog.Logger
}

var _ exchange.Client = (*Client)(nil)

// NewClient creates a Max client. baseURL is the API root, e.g.
// "https://max-api.maicoin.com". quoteCurrency is the deployment's quote
// currency (e.g. "twd").
func NewClient(baseURL, quoteCurrency, accessKey, secretKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		quoteCurrency: quoteCurrency,
		auth:          &crypto.HMACAuth{AccessKey: accessKey, SecretKey: secretKey},
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With(slog.String("component", "max")),
	}
}

// Name returns the display name used in execution summaries.
func (c *Client) Name() string { return "Max" }

// FetchMarketDepth returns the top of the order book for currency against
// the quote currency. The depth endpoint is public and unsigned.
func (c *Client) FetchMarketDepth(ctx context.Context, currency domain.Currency) (domain.MarketDepth, error) {
	params := url.Values{}
	params.Set("market", c.marketPair(currency))
	params.Set("limit", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+depthPath+"?"+params.Encode(), nil)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("max: build depth request: %w", err)
	}

	var resp depthResponse
	if err := c.do(req, &resp); err != nil {
		c.logger.ErrorContext(ctx, "fetch market depth failed", slog.String("error", err.Error()))
		return domain.MarketDepth{}, fmt.Errorf("max: fetch market depth: %w", err)
	}

	asks, err := parseLevels(resp.Asks)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("max: parse asks: %w", err)
	}
	bids, err := parseLevels(resp.Bids)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("max: parse bids: %w", err)
	}

	return domain.MarketDepth{Asks: asks, Bids: bids}, nil
}

// FetchWalletBalance returns the available spot balance for currency.
func (c *Client) FetchWalletBalance(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	payload := map[string]any{
		"nonce":    nonce(),
		"path":     balancePath,
		"currency": currency.String(),
	}

	req, err := c.signedRequest(ctx, http.MethodGet, balancePath, payload)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("max: build balance request: %w", err)
	}

	var items []walletBalanceItem
	if err := c.do(req, &items); err != nil {
		c.logger.ErrorContext(ctx, "fetch wallet balance failed", slog.String("error", err.Error()))
		return decimal.Decimal{}, fmt.Errorf("max: fetch wallet balance: %w", err)
	}

	for _, item := range items {
		if item.Currency == currency.String() {
			balance, err := decimal.NewFromString(item.Balance)
			if err != nil {
				return decimal.Decimal{}, fmt.Errorf("max: parse balance %q: %w", item.Balance, err)
			}
			return balance, nil
		}
	}

	// The account exists but holds none of this currency.
	return decimal.Zero, nil
}

// PlaceOrder submits a limit order and returns the exchange-assigned ID with
// the initial status.
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (domain.Order, error) {
	payload := map[string]any{
		"nonce":      nonce(),
		"path":       orderPath,
		"market":     c.marketPair(order.Currency),
		"side":       string(order.Side),
		"volume":     order.Volume.String(),
		"price":      order.Price.String(),
		"ord_type":   "limit",
		"client_oid": uuid.NewString(),
	}

	req, err := c.signedRequest(ctx, http.MethodPost, orderPath, payload)
	if err != nil {
		return domain.Order{}, fmt.Errorf("max: build order request: %w", err)
	}

	var detail orderDetail
	if err := c.do(req, &detail); err != nil {
		c.logger.ErrorContext(ctx, "place order failed",
			slog.String("side", string(order.Side)),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("max: place order: %w", err)
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
func (c *Client) GetOrderDetail(ctx context.Context, orderID string, _ domain.Currency) (domain.Order, error) {
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return domain.Order{}, fmt.Errorf("max: parse order id %q: %w", orderID, err)
	}

	payload := map[string]any{
		"nonce": nonce(),
		"path":  detailPath,
		"id":    id,
	}

	req, err := c.signedRequest(ctx, http.MethodGet, detailPath, payload)
	if err != nil {
		return domain.Order{}, fmt.Errorf("max: build order detail request: %w", err)
	}

	var detail orderDetail
	if err := c.do(req, &detail); err != nil {
		c.logger.ErrorContext(ctx, "fetch order detail failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("max: fetch order detail: %w", err)
	}

	return toOrder(detail), nil
}

// signedRequest builds a request whose payload is both the message body (for
// POST) or query string (for GET) and the signed X-MAX-PAYLOAD header.
func (c *Client) signedRequest(ctx context.Context, method, path string, payload map[string]any) (*http.Request, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if method == http.MethodGet {
		params := url.Values{}
		for k, v := range payload {
			params.Set(k, fmt.Sprintf("%v", v))
		}
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+params.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payloadJSON))
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.auth.MaxHeaders(payloadJSON) {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do executes the request and decodes a JSON response into out. Non-2xx
// responses become errors carrying the response body; 401/403 wrap
// domain.ErrUnauthorized.
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
	return currency.String() + c.quoteCurrency
}

// mapState converts Max order states to the shared vocabulary.
func mapState(state string) domain.OrderStatus {
	switch state {
	case "wait":
		return domain.OrderStatusPending
	case "done":
		return domain.OrderStatusCompleted
	case "cancel":
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
