package ritapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

func jsonDecode(r *http.Request, out interface{}) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&Config{
		BaseURL:      server.URL,
		APIKey:       "test-key",
		Timeout:      2 * time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		Logger:       zap.NewNop(),
	})
}

func TestListTendersSendsAPIKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenders", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"tender_id": 7, "ticker": "CRZY", "quantity": 10000, "action": "BUY", "price": 50.0, "expires": 300}]`))
	})

	tenders, err := client.ListTenders(context.Background())
	require.NoError(t, err)
	require.Len(t, tenders, 1)
	assert.Equal(t, 7, tenders[0].TenderID)
	assert.Equal(t, types.SideBuy, tenders[0].Side)
}

func TestAcceptAndDeclineUseVerbForIntent(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.AcceptTender(context.Background(), 7))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/tenders/7", gotPath)

	require.NoError(t, client.DeclineTender(context.Background(), 8))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/tenders/8", gotPath)
}

func TestGetBookPassesTickerAndDepth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CRZY", r.URL.Query().Get("ticker"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"bids": [{"price": 49.95, "quantity": 5000}], "asks": [{"price": 50.05, "quantity": 4000}]}`))
	})

	book, err := client.GetBook(context.Background(), "CRZY", 5)
	require.NoError(t, err)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 49.95, book.Bids[0].Price)
}

func TestSubmitOrderValidatesLocally(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.SubmitOrder(context.Background(), "CRZY", types.OrderTypeLimit, 1000, types.SideBuy, 0)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindValidation, types.KindOf(err))

	_, err = client.SubmitOrder(context.Background(), "CRZY", types.OrderTypeMarket, 0, types.SideBuy, 0)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindValidation, types.KindOf(err))

	assert.False(t, called, "invalid orders must be rejected before any network call")
}

func TestSubmitOrderOmitsPriceForMarketOrders(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &gotBody))
		_, _ = w.Write([]byte(`{"order_id": 42, "ticker": "CRZY", "quantity": 1000, "action": "SELL", "status": "OPEN"}`))
	})

	order, err := client.SubmitOrder(context.Background(), "CRZY", types.OrderTypeMarket, 1000, types.SideSell, 0)
	require.NoError(t, err)
	assert.Equal(t, 42, order.OrderID)

	_, hasPrice := gotBody["price"]
	assert.False(t, hasPrice, "market orders must not carry a price")
	assert.Equal(t, "SELL", gotBody["action"])
}

func TestRetriesRateLimitHonoringRetryAfter(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.ListTenders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoesNotRetryValidationErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "INVALID", "message": "bad ticker"}`))
	})

	_, err := client.GetSecurities(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, types.ErrKindValidation, apiErr.Kind)
	assert.Equal(t, "bad ticker", apiErr.Message)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   types.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, types.ErrKindAuth},
		{"not-found", http.StatusNotFound, types.ErrKindNotFound},
		{"server-error", http.StatusInternalServerError, types.ErrKindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.GetCaseStatus(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, types.KindOf(err))
		})
	}
}

func TestAuthFailureIsFatalForTheSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetCaseStatus(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsFatalSession(err))
}

func TestCancelAllOrdersScopesByTicker(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"cancelled_order_ids": [1, 2, 3]}`))
	})

	result, err := client.CancelAllOrders(context.Background(), "CRZY")
	require.NoError(t, err)
	assert.Equal(t, "ticker=CRZY", gotQuery)
	assert.Len(t, result.CancelledOrderIDs, 3)

	_, err = client.CancelAllOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "all=1", gotQuery)
}
