package cache

import (
	"fmt"
	"time"

	"github.com/mselser95/rit-tender-bot/pkg/types"
)

// QuoteCache is a typed facade over Cache for market data snapshots served
// to operator surfaces. Trading decisions never read from here: the core
// always fetches fresh data.
type QuoteCache struct {
	cache Cache
	ttl   time.Duration
}

// NewQuoteCache wraps a cache with quote-specific keys and a single TTL.
func NewQuoteCache(cache Cache, ttl time.Duration) *QuoteCache {
	return &QuoteCache{cache: cache, ttl: ttl}
}

// SetSecurity stores a security quote.
func (q *QuoteCache) SetSecurity(sec *types.Security) {
	q.cache.Set(securityKey(sec.Ticker), sec, q.ttl)
}

// GetSecurity retrieves a cached security quote.
func (q *QuoteCache) GetSecurity(ticker string) (*types.Security, bool) {
	value, found := q.cache.Get(securityKey(ticker))
	if !found {
		return nil, false
	}
	sec, ok := value.(*types.Security)
	return sec, ok
}

// SetBook stores a book snapshot.
func (q *QuoteCache) SetBook(ticker string, book *types.BookSnapshot) {
	q.cache.Set(bookKey(ticker), book, q.ttl)
}

// GetBook retrieves a cached book snapshot.
func (q *QuoteCache) GetBook(ticker string) (*types.BookSnapshot, bool) {
	value, found := q.cache.Get(bookKey(ticker))
	if !found {
		return nil, false
	}
	book, ok := value.(*types.BookSnapshot)
	return book, ok
}

// Close releases the backing cache.
func (q *QuoteCache) Close() {
	q.cache.Close()
}

func securityKey(ticker string) string {
	return fmt.Sprintf("security:%s", ticker)
}

func bookKey(ticker string) string {
	return fmt.Sprintf("book:%s", ticker)
}
