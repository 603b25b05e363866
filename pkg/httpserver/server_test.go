package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/engine"
	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/internal/lifecycle"
	"github.com/mselser95/rit-tender-bot/internal/testutil"
	"github.com/mselser95/rit-tender-bot/pkg/cache"
	"github.com/mselser95/rit-tender-bot/pkg/healthprobe"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

func testEngine() *engine.Engine {
	client := testutil.NewMockMarketClient()
	clock := testutil.NewFakeClock(time.Now())
	manager := lifecycle.New(lifecycle.Config{
		Client: client,
		Clock:  clock,
		Logger: zap.NewNop(),
	})
	return engine.New(engine.Config{
		Client:    client,
		Lifecycle: manager,
		Clock:     clock,
		Logger:    zap.NewNop(),
	})
}

func newQuoteCache(t *testing.T) *cache.QuoteCache {
	t.Helper()
	backing, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewRistrettoCache: %v", err)
	}
	return cache.NewQuoteCache(backing, time.Minute)
}

func TestHealthEndpoints(t *testing.T) {
	checker := healthprobe.New()

	rec := httptest.NewRecorder()
	checker.Health()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	checker.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status before SetReady = %d, want 503", rec.Code)
	}

	checker.SetReady(true)
	rec = httptest.NewRecorder()
	checker.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status after SetReady = %d, want 200", rec.Code)
	}
}

func TestHandleState(t *testing.T) {
	handler := NewStateHandler(testEngine(), nil, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.HandleState(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap engine.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.State != engine.StateStarting {
		t.Errorf("state = %s, want STARTING for an unstarted engine", snap.State)
	}
}

func TestHandleQuote(t *testing.T) {
	quotes := newQuoteCache(t)
	defer quotes.Close()
	quotes.SetSecurity(&types.Security{Ticker: "CRZY", Bid: 49.95, Ask: 50.05})
	time.Sleep(50 * time.Millisecond) // let the write settle

	handler := NewStateHandler(testEngine(), quotes, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.HandleQuote(rec, httptest.NewRequest(http.MethodGet, "/api/quote?ticker=CRZY", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp QuoteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Security == nil || resp.Security.Bid != 49.95 {
		t.Errorf("security = %+v, want cached bid 49.95", resp.Security)
	}

	rec = httptest.NewRecorder()
	handler.HandleQuote(rec, httptest.NewRequest(http.MethodGet, "/api/quote?ticker=NOPE", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status for uncached ticker = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleQuote(rec, httptest.NewRequest(http.MethodGet, "/api/quote", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status without ticker = %d, want 400", rec.Code)
	}
}

func TestEventFeedStreamsPublishedEvents(t *testing.T) {
	bus := events.NewBus(16, zap.NewNop())
	defer bus.Close()

	handler := NewEventsHandler(bus, zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(handler.HandleEvents))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Subscription races the publish; give the handler a moment.
	time.Sleep(100 * time.Millisecond)
	bus.Publish(events.New(events.TypeTenderAccepted, "CRZY", map[string]interface{}{"tender_id": 7}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event events.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != events.TypeTenderAccepted || event.Ticker != "CRZY" {
		t.Errorf("event = %+v, want tender_accepted for CRZY", event)
	}
}
