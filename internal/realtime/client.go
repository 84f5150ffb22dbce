package realtime

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 512
	sendQueueSize  = 16
)

// Client is one WebSocket connection watching a trip
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Handler upgrades trip viewers to WebSocket connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a handler that accepts browsers from allowedOrigins.
// "*" accepts any origin; requests without an Origin header are always accepted.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	anyOrigin := slices.Contains(allowedOrigins, "*")
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Routes returns the router for the realtime endpoint
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeWS)

	return r
}

// ServeWS handles GET /trips/{tripId}/ws
// @Summary      Subscribe to trip balances
// @Description  Upgrades to a WebSocket that receives {"type":"balances"} messages after every expense or settlement change
// @Tags         realtime
// @Param        tripId path string true "Trip ID"
// @Success      101 {string} string "Switching Protocols"
// @Failure      403 {object} response.APIResponse
// @Router       /trips/{tripId}/ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Debug().Err(err).Str("trip_id", tripID).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
	h.hub.Register(tripID, client)

	go client.writePump()
	client.readPump(h.hub, tripID)
}

// readPump discards client messages and notices when the connection goes away
func (c *Client) readPump(hub *Hub, tripID string) {
	defer hub.Unregister(tripID, c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes to the connection. It exits when the send queue
// is closed by the hub or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
