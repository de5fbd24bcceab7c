package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cesargomez89/youaudio/internal/logger"
)

// Handler upgrades HTTP requests to WebSocket connections and keeps them
// registered with the hub for progress fan-out.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHandler creates a WebSocket handler bound to hub
func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-user local service, all origins accepted
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log.WithComponent("ws"),
	}
}

// ServeWS handles GET /ws. Client messages carry no command protocol; they
// are echoed back as keep-alive acknowledgements.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	h.hub.Register(conn)
	defer func() {
		h.hub.Unregister(conn)
		conn.Close()
	}()

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			h.logger.Debug("WebSocket read ended", "error", err)
			return
		}
		if err := h.hub.Echo(conn, msgType, message); err != nil {
			h.logger.Debug("WebSocket echo failed", "error", err)
			return
		}
	}
}
