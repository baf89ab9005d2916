package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/api/middleware"
	"github.com/threadly/threadly-api/internal/realtime"
)

// WSHandler upgrades GET /ws to a websocket connection. Browsers cannot set
// an Authorization header on the upgrade request, so the token rides in the
// query string instead.
type WSHandler struct {
	hub       *realtime.Hub
	jwtSecret string
	upgrader  websocket.Upgrader
	log       zerolog.Logger
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// Serve handles GET /ws?token=<jwt>.
func (h *WSHandler) Serve(c echo.Context) error {
	username, err := middleware.ParseToken(c.QueryParam("token"), h.jwtSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		h.log.Warn().Err(err).Str("username", username).Msg("websocket upgrade failed")
		return nil
	}

	client := realtime.NewClient(h.hub, conn, username)
	client.Register()
	h.log.Debug().Str("username", username).Msg("websocket connected")
	return nil
}
