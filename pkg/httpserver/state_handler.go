package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/engine"
	"github.com/mselser95/rit-tender-bot/pkg/cache"
	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// StateHandler serves the engine snapshot and cached quotes.
type StateHandler struct {
	engine *engine.Engine
	quotes *cache.QuoteCache
	logger *zap.Logger
}

// NewStateHandler creates a new state handler.
func NewStateHandler(eng *engine.Engine, quotes *cache.QuoteCache, logger *zap.Logger) *StateHandler {
	return &StateHandler{
		engine: eng,
		quotes: quotes,
		logger: logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QuoteResponse is the cached market view for one ticker.
type QuoteResponse struct {
	Ticker   string              `json:"ticker"`
	Security *types.Security     `json:"security,omitempty"`
	Book     *types.BookSnapshot `json:"book,omitempty"`
}

// HandleState handles GET /api/state requests.
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// HandleQuote handles GET /api/quote?ticker=<ticker> requests. Quotes come
// from the short-TTL cache populated by the control loop; an unknown or
// expired ticker is a 404, not a venue round trip.
func (h *StateHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		h.writeError(w, "missing required query parameter: ticker", http.StatusBadRequest)
		return
	}

	if h.quotes == nil {
		h.writeError(w, "quote cache not enabled", http.StatusNotFound)
		return
	}

	response := QuoteResponse{Ticker: ticker}
	if sec, found := h.quotes.GetSecurity(ticker); found {
		response.Security = sec
	}
	if book, found := h.quotes.GetBook(ticker); found {
		response.Book = book
	}
	if response.Security == nil && response.Book == nil {
		h.writeError(w, "no cached quote for ticker", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *StateHandler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *StateHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}
