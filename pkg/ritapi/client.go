package ritapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/rit-tender-bot/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for the RIT trading API. Every call carries a
// bounded timeout; rate-limited calls are retried within the configured
// retry budget, honoring the venue's Retry-After hint.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// NewClient creates a new RIT API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: timeout},
		maxRetries:   maxRetries,
		retryBackoff: backoff,
		logger:       cfg.Logger,
	}
}

// ListTenders retrieves all currently active tenders.
func (c *Client) ListTenders(ctx context.Context) ([]types.Tender, error) {
	var tenders []types.Tender
	err := c.do(ctx, http.MethodGet, "/tenders", nil, nil, &tenders)
	if err != nil {
		return nil, err
	}
	return tenders, nil
}

// AcceptTender accepts a tender by ID.
func (c *Client) AcceptTender(ctx context.Context, tenderID int) error {
	endpoint := fmt.Sprintf("/tenders/%d", tenderID)
	return c.do(ctx, http.MethodPost, endpoint, nil, nil, nil)
}

// DeclineTender declines a tender by ID.
func (c *Client) DeclineTender(ctx context.Context, tenderID int) error {
	endpoint := fmt.Sprintf("/tenders/%d", tenderID)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}

// GetSecurities returns all securities, or a single one when ticker is
// non-empty. Positions and P&L come back on each security.
func (c *Client) GetSecurities(ctx context.Context, ticker string) ([]types.Security, error) {
	params := url.Values{}
	if ticker != "" {
		params.Set("ticker", ticker)
	}

	var securities []types.Security
	err := c.do(ctx, http.MethodGet, "/securities", params, nil, &securities)
	if err != nil {
		return nil, err
	}
	return securities, nil
}

// GetBook fetches a fresh order book snapshot for a ticker, up to depth
// levels per side.
func (c *Client) GetBook(ctx context.Context, ticker string, depth int) (*types.BookSnapshot, error) {
	params := url.Values{}
	params.Set("ticker", ticker)
	if depth > 0 {
		params.Set("limit", strconv.Itoa(depth))
	}

	var book types.BookSnapshot
	err := c.do(ctx, http.MethodGet, "/securities/book", params, nil, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SubmitOrder submits a new order. Price is required for LIMIT orders and
// rejected locally before any network call when missing.
func (c *Client) SubmitOrder(ctx context.Context, ticker string, orderType types.OrderType, quantity int, side types.Side, price float64) (*types.Order, error) {
	if orderType == types.OrderTypeLimit && price <= 0 {
		return nil, &types.APIError{
			Kind:    types.ErrKindValidation,
			Message: "price required for LIMIT orders",
		}
	}
	if quantity <= 0 {
		return nil, &types.APIError{
			Kind:    types.ErrKindValidation,
			Message: fmt.Sprintf("invalid order quantity %d", quantity),
		}
	}

	body := map[string]interface{}{
		"ticker":   ticker,
		"type":     orderType,
		"quantity": quantity,
		"action":   side,
	}
	if orderType == types.OrderTypeLimit {
		body["price"] = price
	}

	var order types.Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, body, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder cancels a single order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID int) error {
	endpoint := fmt.Sprintf("/orders/%d", orderID)
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}

// CancelAllOrders cancels every open order, or only those for ticker when
// ticker is non-empty.
func (c *Client) CancelAllOrders(ctx context.Context, ticker string) (*types.BulkCancelResult, error) {
	params := url.Values{}
	if ticker != "" {
		params.Set("ticker", ticker)
	} else {
		params.Set("all", "1")
	}

	var result types.BulkCancelResult
	err := c.do(ctx, http.MethodPost, "/commands/cancel", params, nil, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOpenOrders returns orders filtered by status ("" means all).
func (c *Client) GetOpenOrders(ctx context.Context, status types.OrderStatus) ([]types.Order, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", string(status))
	}

	var orders []types.Order
	err := c.do(ctx, http.MethodGet, "/orders", params, nil, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetCaseStatus returns the state of the trading session.
func (c *Client) GetCaseStatus(ctx context.Context) (*types.CaseStatus, error) {
	var status types.CaseStatus
	err := c.do(ctx, http.MethodGet, "/case", nil, nil, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// do performs a request with retry on rate limits and transport failures.
// Responses are decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body interface{}, out interface{}) error {
	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return &types.APIError{Kind: types.ErrKindValidation, Message: fmt.Sprintf("encode request: %v", err)}
		}
	}

	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoffFor(lastErr, attempt)
			select {
			case <-ctx.Done():
				return &types.APIError{Kind: types.ErrKindTransport, Message: ctx.Err().Error()}
			case <-time.After(wait):
			}
		}

		start := time.Now()
		err := c.doOnce(ctx, method, requestURL, bodyBytes, out)
		RequestDurationSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

		if err == nil {
			return nil
		}

		lastErr = err
		kind := types.KindOf(err)
		RequestErrorsTotal.WithLabelValues(endpoint, string(kind)).Inc()

		// Only rate limits and transport failures are worth retrying.
		if kind != types.ErrKindRateLimit && kind != types.ErrKindTransport {
			return err
		}

		c.logger.Debug("api-request-retrying",
			zap.String("endpoint", endpoint),
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt+1))
	}

	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, requestURL string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return &types.APIError{Kind: types.ErrKindTransport, Message: err.Error()}
	}

	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &types.APIError{Kind: types.ErrKindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return classifyStatus(resp)
	}

	if out == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return &types.APIError{Kind: types.ErrKindTransport, Message: fmt.Sprintf("decode response: %v", err)}
	}

	return nil
}

// backoffFor returns the wait before the next attempt: Retry-After when the
// venue provided one, exponential backoff otherwise.
func (c *Client) backoffFor(err error, attempt int) time.Duration {
	if apiErr, ok := err.(*types.APIError); ok && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return c.retryBackoff * time.Duration(1<<(attempt-1))
}

func classifyStatus(resp *http.Response) error {
	apiErr := &types.APIError{StatusCode: resp.StatusCode}

	// The venue wraps error details in {"code": ..., "message": ...}.
	var detail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if len(raw) > 0 && json.Unmarshal(raw, &detail) == nil && detail.Message != "" {
		apiErr.Message = detail.Message
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Kind = types.ErrKindAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Kind = types.ErrKindRateLimit
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
	case resp.StatusCode == http.StatusBadRequest:
		apiErr.Kind = types.ErrKindValidation
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = types.ErrKindNotFound
	case resp.StatusCode >= 500:
		apiErr.Kind = types.ErrKindServer
	default:
		apiErr.Kind = types.ErrKindTransport
	}

	return apiErr
}
