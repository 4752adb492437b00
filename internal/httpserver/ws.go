package httpserver

import (
	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/socket"
	"github.com/labstack/echo/v4"
)

type SocketHTTP struct {
	Hub *socket.Hub
}

// Serve holds the request open for the lifetime of the websocket.
func (h *SocketHTTP) Serve(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ws")

	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.Hub.Serve(c.Response(), c.Request(), a.UserID); err != nil {
		// the upgrader has already answered the client
		l.Warn("ws_upgrade_error", "user_id", a.UserID, "error", err)
	}
	return nil
}
