package handler

import (
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/labstack/echo/v4"
)

// ActionHandler is the Stream Deck surface: one POST per named action.
type ActionHandler struct {
	Handler
	actions *service.ActionService
}

func NewActionHandler(s *server.Server, actions *service.ActionService) *ActionHandler {
	return &ActionHandler{Handler: NewHandler(s), actions: actions}
}

// ActionResult wraps the dispatched action's result.
type ActionResult struct {
	Action string `json:"action"`
	Result any    `json:"result"`
}

func (h *ActionHandler) ListActions(c echo.Context, _ *model.EmptyPayload) ([]service.ActionInfo, error) {
	return h.actions.List(), nil
}

func (h *ActionHandler) Dispatch(c echo.Context, p *model.ActionPayload) (*ActionResult, error) {
	result, err := h.actions.Dispatch(c.Request().Context(), p.Action, p.Params)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Action: p.Action, Result: result}, nil
}
