package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/events"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// EventsHandler streams the decision and order event feed over a websocket.
type EventsHandler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewEventsHandler creates a new websocket event feed handler.
func NewEventsHandler(bus *events.Bus, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Operator tooling connects from anywhere on the lab network.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleEvents handles GET /ws/events requests. Each client gets its own
// bus subscription; a slow client loses events rather than slowing trading.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket-upgrade-failed", zap.Error(err))
		return
	}

	sub, cancel := h.bus.Subscribe()
	h.logger.Info("event-feed-client-connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writeLoop(conn, sub, cancel)
	go h.readLoop(conn)
}

// writeLoop pushes events and keepalive pings until the subscription or the
// connection dies.
func (h *EventsHandler) writeLoop(conn *websocket.Conn, sub <-chan events.Event, cancel func()) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
		h.logger.Info("event-feed-client-disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()

	for {
		select {
		case event, ok := <-sub:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close messages are processed.
func (h *EventsHandler) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			_ = conn.Close()
			return
		}
	}
}
