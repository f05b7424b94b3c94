package max

import (
	"io"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlchen/slipbot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchMarketDepth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, depthPath, r.URL.Path)
		assert.Equal(t, "usdttwd", r.URL.Query().Get("market"))

		json.NewEncoder(w).Encode(depthResponse{
			Asks: [][]string{{"30.71", "1000"}, {"30.65", "500"}},
			Bids: [][]string{{"30.55", "200"}, {"30.60", "800"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "twd", "ak", "sk", discardLogger())
	depth, err := c.FetchMarketDepth(context.Background(), "usdt")
	require.NoError(t, err)

	ask, ok := depth.LowestAsk()
	require.True(t, ok)
	assert.True(t, ask.Equal(decimal.RequireFromString("30.65")))

	bid, ok := depth.HighestBid()
	require.True(t, ok)
	assert.True(t, bid.Equal(decimal.RequireFromString("30.60")))
}

func TestFetchWalletBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, balancePath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-MAX-ACCESSKEY"))
		assert.NotEmpty(t, r.Header.Get("X-MAX-PAYLOAD"))
		assert.NotEmpty(t, r.Header.Get("X-MAX-SIGNATURE"))

		json.NewEncoder(w).Encode([]walletBalanceItem{
			{Currency: "twd", Balance: "120.5", Locked: "0"},
			{Currency: "usdt", Balance: "10.0001", Locked: "3"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "twd", "ak", "sk", discardLogger())
	balance, err := c.FetchWalletBalance(context.Background(), "usdt")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10.0001")))
}

func TestFetchWalletBalanceMissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]walletBalanceItem{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "twd", "ak", "sk", discardLogger())
	balance, err := c.FetchWalletBalance(context.Background(), "usdt")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestPlaceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, orderPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "usdttwd", payload["market"])
		assert.Equal(t, "buy", payload["side"])
		assert.Equal(t, "limit", payload["ord_type"])
		assert.NotEmpty(t, payload["client_oid"])

		json.NewEncoder(w).Encode(orderDetail{ID: 987654, State: "wait"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "twd", "ak", "sk", discardLogger())
	order, err := c.PlaceOrder(context.Background(), domain.OrderRequest{
		Currency: "usdt",
		Side:     domain.OrderSideBuy,
		Volume:   decimal.RequireFromString("63.1"),
		Price:    decimal.RequireFromString("30.652"),
	})
	require.NoError(t, err)
	assert.Equal(t, "987654", order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestGetOrderDetailStateMapping(t *testing.T) {
	cases := []struct {
		state string
		want  domain.OrderStatus
	}{
		{"wait", domain.OrderStatusPending},
		{"done", domain.OrderStatusCompleted},
		{"cancel", domain.OrderStatusCancelled},
		{"convert", domain.OrderStatusOther},
	}

	for _, tc := range cases {
		t.Run(tc.state, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, detailPath, r.URL.Path)
				assert.Equal(t, "987654", r.URL.Query().Get("id"))
				json.NewEncoder(w).Encode(orderDetail{ID: 987654, State: tc.state})
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "twd", "ak", "sk", discardLogger())
			order, err := c.GetOrderDetail(context.Background(), "987654", "usdt")
			require.NoError(t, err)
			assert.Equal(t, tc.want, order.Status)
		})
	}
}

func TestUnauthorizedWrapsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid signature"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "twd", "ak", "sk", discardLogger())
	_, err := c.FetchWalletBalance(context.Background(), "usdt")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
