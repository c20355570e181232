package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/labstack/echo/v4"
)

// WSHandler upgrades overlay and admin connections onto the hub.
type WSHandler struct {
	Handler
}

func NewWSHandler(s *server.Server) *WSHandler {
	return &WSHandler{Handler: NewHandler(s)}
}

// Serve blocks for the lifetime of the connection. ?channels=lower,quiz
// subscribes on connect.
func (h *WSHandler) Serve(c echo.Context) error {
	if err := h.server.Hub.ServeWS(c.Response(), c.Request()); err != nil {
		return errs.NewBadRequestError(err.Error(), true, nil, nil, nil)
	}
	return nil
}
