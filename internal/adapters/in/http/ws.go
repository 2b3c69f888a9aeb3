package http

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"dispatch/internal/tracking"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin subscriptions are allowed; tracking data is scoped by
	// orderId and the service carries no auth logic.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsSubscriber adapts one WebSocket connection to tracking.Subscriber.
// The write mutex serializes concurrent broadcasts onto the connection,
// which gorilla/websocket requires.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSubscriber) Send(event tracking.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(event)
}

// TrackDelivery handles GET /api/delivery/track?orderId=...
// Upgrades the connection to WebSocket and streams the order's tracking
// events until the client disconnects. A failed upgrade or missing orderId
// never touches the hub.
func (s *Server) TrackDelivery(ctx echo.Context) error {
	orderID := ctx.QueryParam("orderId")
	if orderID == "" {
		return badRequest(ctx, "orderId query parameter is required")
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	subscriber := &wsSubscriber{conn: conn}
	s.hub.Subscribe(orderID, subscriber)

	s.logger.Debug("tracking subscriber connected",
		slog.String("orderId", orderID),
		slog.String("remote", conn.RemoteAddr().String()))

	// Read pump: the client sends no application data, but reading is how we
	// learn about disconnects and answer control frames.
	go func() {
		defer func() {
			s.hub.Unsubscribe(orderID, subscriber)
			_ = conn.Close()
			s.logger.Debug("tracking subscriber disconnected",
				slog.String("orderId", orderID))
		}()

		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	return nil
}
