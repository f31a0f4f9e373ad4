package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

// ViewHandler serves the read-only projections over the ledger: the
// grouped transaction listing, search and the live bin board.  None of
// these touch allocator state.
type ViewHandler struct {
	Engine *show.Engine
}

func NewViewHandler(e *show.Engine) *ViewHandler {
	if e == nil {
		panic("nil engine passed to NewViewHandler")
	}
	return &ViewHandler{Engine: e}
}

// Bidders handles GET /v1/bidders?order=asc|desc: every transaction,
// grouped per bidder, newest first by default.
func (h *ViewHandler) Bidders(c echo.Context) error {
	order := strings.ToLower(c.QueryParam("order"))
	if order != "asc" {
		order = "desc"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order":   order,
		"bidders": h.Engine.TreeView(order),
	})
}

// Search handles GET /v1/bidders/search?q=.  An exact handle hit returns
// the bidder summary; otherwise matching transaction lines are returned.
func (h *ViewHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	return c.JSON(http.StatusOK, h.Engine.Search(q))
}

// Bins handles GET /v1/bins: the bin board, most recently touched bidder
// first, then descending by bin number.
func (h *ViewHandler) Bins(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"bins": h.Engine.BinDisplay()})
}
