package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Type identifies the kind of event published on the bus.
type Type string

const (
	TypeTenderAccepted Type = "tender_accepted"
	TypeTenderDeclined Type = "tender_declined"
	TypeOrderSubmitted Type = "order_submitted"
	TypeOrderRepriced  Type = "order_repriced"
	TypeOrderFallback  Type = "order_fallback"
	TypeLiquidation    Type = "liquidation"
	TypeHealthAlert    Type = "health_alert"
	TypeSessionEnded   Type = "session_ended"
)

// Event is a single decision or order action emitted by the core.
type Event struct {
	ID     string                 `json:"id"`
	Type   Type                   `json:"type"`
	At     time.Time              `json:"at"`
	Ticker string                 `json:"ticker,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// New builds an event with a fresh ID and timestamp.
func New(eventType Type, ticker string, fields map[string]interface{}) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		At:     time.Now(),
		Ticker: ticker,
		Fields: fields,
	}
}

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// that falls behind loses events rather than stalling the trading loop.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
	bufferSize  int
	logger      *zap.Logger
}

// NewBus creates an event bus with the given per-subscriber buffer.
func NewBus(bufferSize int, logger *zap.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		subscribers: make(map[int]chan Event),
		bufferSize:  bufferSize,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes its channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, b.bufferSize)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	PublishedTotal.WithLabelValues(string(event.Type)).Inc()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			DroppedTotal.Inc()
			b.logger.Debug("event-subscriber-full", zap.String("event-type", string(event.Type)))
		}
	}
}

// Close removes all subscribers and closes their channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
