package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/show"
	"github.com/iliyamo/auction-bin-tracker/internal/ws"
)

// LatestHandler serves the overlay surface: the polling endpoint and the
// websocket upgrade.  Both read the atomically replaced latest-assignment
// snapshot and never touch the ledger.
type LatestHandler struct {
	Engine *show.Engine
	Hub    *ws.Hub
}

func NewLatestHandler(e *show.Engine, hub *ws.Hub) *LatestHandler {
	if e == nil || hub == nil {
		panic("nil dependency passed to NewLatestHandler")
	}
	return &LatestHandler{Engine: e, Hub: hub}
}

// Latest handles GET /get_latest, the polling fallback for overlays that
// cannot hold a websocket open.
func (h *LatestHandler) Latest(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"data": h.Engine.Latest()})
}

// WebSocket handles GET /ws: upgrades the connection and hands it to the
// hub, which immediately pushes the current assignment.
func (h *LatestHandler) WebSocket(c echo.Context) error {
	return ws.Serve(h.Hub, c.Response(), c.Request())
}
