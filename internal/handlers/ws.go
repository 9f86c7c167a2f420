package handlers

import (
	"encoding/json"
	"net/http"

	"battle-royale-backend/internal/battle"
	"battle-royale-backend/internal/ws"

	"github.com/decred/slog"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub      *ws.Hub
	registry *battle.Registry
	buffer   int
	log      slog.Logger
}

func NewWSHandler(hub *ws.Hub, registry *battle.Registry, buffer int, log slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, registry: registry, buffer: buffer, log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type clientMessage struct {
	Type string `json:"type"`
}

// HandleWebSocket godoc
// @Summary      WebSocket connection for battle events
// @Description  Streams the events of a battle, starting with a current_state snapshot. Send {"type":"sync"} to get a fresh snapshot.
// @Tags         websocket
// @Param        code path string true "Battle code"
// @Failure      404 {object} ErrorResponse
// @Router       /ws/battle/{code} [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	code := c.Param("code")
	s, err := h.registry.Get(code)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn, h.buffer)
	h.hub.Subscribe(code, client, s.CurrentState)
	defer h.hub.Unsubscribe(code, client)

	go client.WritePump()

	client.ReadPump(func(msg []byte) {
		var m clientMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			h.log.Debugf("ignoring malformed message on session %s: %v", code, err)
			return
		}
		if m.Type == "sync" {
			h.hub.Resync(code, client, s.CurrentState())
		}
	})
}
