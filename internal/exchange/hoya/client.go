// Package hoya drives the Hoya exchange through its web UI. Hoya has no
// public trading API, so the adapter automates a headless browser: it logs
// in with account, password, and a Google-Authenticator TOTP code, then
// scrapes the trade page and drives the order form. It exposes the same
// capability interface as the REST adapters.
package hoya

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pquerna/otp/totp"
	"github.com/shopspring/decimal"

	"github.com/wlchen/slipbot/internal/domain"
	"github.com/wlchen/slipbot/internal/exchange"
)

// Client automates the Hoya web UI through a headless Chrome session. The
// session is created lazily on first use and reused across calls; Close
// must be called to release the browser.
type Client struct {
	baseURL       string
	quoteCurrency string
	account       string
	password      string
	totpSecret    string
	headless      bool
	logger        *slog.Logger

	browserCtx context.Context
	cancels    []context.CancelFunc
	loggedIn   bool
}

var _ exchange.Client = (*Client)(nil)

// NewClient creates a Hoya web-UI client. totpSecret is the Google
// Authenticator seed registered for the account. Disabling headless keeps
// the browser window visible, which helps when the login flow changes.
func NewClient(baseURL, quoteCurrency, account, password, totpSecret string, headless bool, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		quoteCurrency: quoteCurrency,
		account:       account,
		password:      password,
		totpSecret:    totpSecret,
		headless:      headless,
		logger:        logger.With(slog.String("component", "hoya")),
	}
}

// Name returns the display name used in execution summaries.
func (c *Client) Name() string { return "Hoya" }

// Close shuts the browser session down. Safe to call when no session was
// ever started.
func (c *Client) Close() {
	for i := len(c.cancels) - 1; i >= 0; i-- {
		c.cancels[i]()
	}
	c.cancels = nil
	c.browserCtx = nil
	c.loggedIn = false
}

// FetchMarketDepth scrapes the ask and bid tables on the trade page.
func (c *Client) FetchMarketDepth(ctx context.Context, currency domain.Currency) (domain.MarketDepth, error) {
	if err := c.ensureSession(ctx); err != nil {
		return domain.MarketDepth{}, fmt.Errorf("hoya: fetch market depth: %w", err)
	}

	var askRows, bidRows [][]string
	err := c.run(ctx,
		chromedp.Navigate(c.tradeURL(currency)),
		chromedp.WaitVisible(`#order-book`, chromedp.ByID),
		chromedp.Evaluate(depthRowsJS(".order-book__asks tr"), &askRows),
		chromedp.Evaluate(depthRowsJS(".order-book__bids tr"), &bidRows),
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "fetch market depth failed", slog.String("error", err.Error()))
		return domain.MarketDepth{}, fmt.Errorf("hoya: fetch market depth: %w", err)
	}

	asks, err := parseLevels(askRows)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("hoya: parse asks: %w", err)
	}
	bids, err := parseLevels(bidRows)
	if err != nil {
		return domain.MarketDepth{}, fmt.Errorf("hoya: parse bids: %w", err)
	}

	return domain.MarketDepth{Asks: asks, Bids: bids}, nil
}

// FetchWalletBalance reads the available balance cell on the wallet page.
func (c *Client) FetchWalletBalance(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	if err := c.ensureSession(ctx); err != nil {
		return decimal.Decimal{}, fmt.Errorf("hoya: fetch wallet balance: %w", err)
	}

	var text string
	sel := fmt.Sprintf(`#wallet-row-%s .available`, strings.ToLower(currency.String()))
	err := c.run(ctx,
		chromedp.Navigate(c.baseURL+"/wallet"),
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.Text(sel, &text, chromedp.ByQuery),
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "fetch wallet balance failed", slog.String("error", err.Error()))
		return decimal.Decimal{}, fmt.Errorf("hoya: fetch wallet balance: %w", err)
	}

	balance, err := parseAmount(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("hoya: parse balance %q: %w", text, err)
	}
	return balance, nil
}

// PlaceOrder fills and submits the limit-order form, then reads the new
// order's ID from the first row of the open-orders table.
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (domain.Order, error) {
	if err := c.ensureSession(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("hoya: place order: %w", err)
	}

	sideTab := `#order-form .tab-buy`
	if order.Side == domain.OrderSideSell {
		sideTab = `#order-form .tab-sell`
	}

	var orderID, status string
	err := c.run(ctx,
		chromedp.Navigate(c.tradeURL(order.Currency)),
		chromedp.WaitVisible(`#order-form`, chromedp.ByID),
		chromedp.Click(sideTab, chromedp.ByQuery),
		chromedp.SetValue(`#order-form input[name="price"]`, order.Price.String(), chromedp.ByQuery),
		chromedp.SetValue(`#order-form input[name="volume"]`, order.Volume.String(), chromedp.ByQuery),
		chromedp.Click(`#order-form button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#open-orders tbody tr`, chromedp.ByQuery),
		chromedp.Text(`#open-orders tbody tr:first-child .order-id`, &orderID, chromedp.ByQuery),
		chromedp.Text(`#open-orders tbody tr:first-child .order-status`, &status, chromedp.ByQuery),
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "place order failed",
			slog.String("side", string(order.Side)),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("hoya: place order: %w", err)
	}

	c.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", orderID),
		slog.String("side", string(order.Side)),
		slog.String("volume", order.Volume.String()),
		slog.String("price", order.Price.String()),
	)

	return domain.Order{ID: strings.TrimSpace(orderID), Status: mapStatus(status)}, nil
}

// GetOrderDetail looks the order up in the open-orders table first and falls
// back to the order-history table once it has left the book.
func (c *Client) GetOrderDetail(ctx context.Context, orderID string, currency domain.Currency) (domain.Order, error) {
	if err := c.ensureSession(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("hoya: fetch order detail: %w", err)
	}

	var status string
	err := c.run(ctx,
		chromedp.Navigate(c.tradeURL(currency)),
		chromedp.WaitVisible(`#order-book`, chromedp.ByID),
		chromedp.Evaluate(orderStatusJS(orderID), &status),
	)
	if err != nil {
		c.logger.ErrorContext(ctx, "fetch order detail failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		return domain.Order{}, fmt.Errorf("hoya: fetch order detail: %w", err)
	}
	if status == "" {
		return domain.Order{}, fmt.Errorf("hoya: order %s not found in open orders or history", orderID)
	}

	return domain.Order{ID: orderID, Status: mapStatus(status)}, nil
}

// ensureSession starts the headless browser and performs the TOTP-assisted
// login once per client lifetime.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.browserCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", c.headless),
		)
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
		c.cancels = append(c.cancels, cancelAlloc, cancelBrowser)
		c.browserCtx = browserCtx
	}
	if c.loggedIn {
		return nil
	}

	code, err := totp.GenerateCode(c.totpSecret, time.Now())
	if err != nil {
		return fmt.Errorf("generate totp code: %w", err)
	}

	c.logger.InfoContext(ctx, "logging in", slog.String("account", c.account))

	err = c.run(ctx,
		chromedp.Navigate(c.baseURL+"/login"),
		chromedp.WaitVisible(`#login-form`, chromedp.ByID),
		chromedp.SetValue(`#login-form input[name="account"]`, c.account, chromedp.ByQuery),
		chromedp.SetValue(`#login-form input[name="password"]`, c.password, chromedp.ByQuery),
		chromedp.Click(`#login-form button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#totp-form`, chromedp.ByID),
		chromedp.SetValue(`#totp-form input[name="code"]`, code, chromedp.ByQuery),
		chromedp.Click(`#totp-form button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#account-menu`, chromedp.ByID),
	)
	if err != nil {
		return fmt.Errorf("%w: login: %v", domain.ErrUnauthorized, err)
	}

	c.loggedIn = true
	return nil
}

// run executes browser actions under the caller's deadline while keeping the
// long-lived browser session.
func (c *Client) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.browserCtx, 30*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()

	select {
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (c *Client) tradeURL(currency domain.Currency) string {
	return fmt.Sprintf("%s/trade/%s_%s", c.baseURL, strings.ToLower(currency.String()), c.quoteCurrency)
}

// depthRowsJS extracts [price, amount] string pairs from an order-book table.
func depthRowsJS(rowSelector string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(tr => [
		tr.querySelector('.price').textContent.trim(),
		tr.querySelector('.amount').textContent.trim(),
	])`, rowSelector)
}

// orderStatusJS finds an order row by ID in the open-orders table, then in
// the order-history table, and returns its status text ("" when absent).
func orderStatusJS(orderID string) string {
	return fmt.Sprintf(`(() => {
		for (const table of ['#open-orders', '#order-history']) {
			for (const tr of document.querySelectorAll(table + ' tbody tr')) {
				const id = tr.querySelector('.order-id');
				if (id && id.textContent.trim() === %q) {
					return tr.querySelector('.order-status').textContent.trim();
				}
			}
		}
		return '';
	})()`, orderID)
}
