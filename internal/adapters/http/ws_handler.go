package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/infrastructure/realtime"
)

// WebSocketHandler upgrades authenticated requests onto the change feed
type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewWebSocketHandler creates a new websocket handler. allowOrigin decides
// which browser origins may subscribe.
func NewWebSocketHandler(hub *realtime.Hub, allowOrigin func(origin string) bool, logger *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin(origin)
			},
		},
		logger: logger,
	}
}

// Subscribe streams job and team change events
// @Summary Change feed
// @Description Websocket stream of job.* and member.* events
// @Tags realtime
// @Security BearerAuth
// @Router /ws [get]
func (h *WebSocketHandler) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "error", err)
		return nil
	}

	userID, _ := c.Get("user").(string)
	client := realtime.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump()
	return nil
}
