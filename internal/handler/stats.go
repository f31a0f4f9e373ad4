package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

// StatsHandler serves the analytics pane: show totals, the top-buyers
// board and the average sell rate with fixed-duration projections.
type StatsHandler struct {
	Engine *show.Engine
}

func NewStatsHandler(e *show.Engine) *StatsHandler {
	if e == nil {
		panic("nil engine passed to NewStatsHandler")
	}
	return &StatsHandler{Engine: e}
}

// Stats handles GET /v1/stats.
func (h *StatsHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.Stats())
}

// TopBuyers handles GET /v1/stats/top-buyers.
func (h *StatsHandler) TopBuyers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"top_buyers": h.Engine.TopBuyers(3)})
}

// SellRate handles GET /v1/stats/sell-rate.  Below two transactions there
// is no pace to compute; that is reported as a message, not an error.
func (h *StatsHandler) SellRate(c echo.Context) error {
	rate, err := h.Engine.SellRate()
	if err != nil {
		if errors.Is(err, show.ErrInsufficientData) {
			return c.JSON(http.StatusOK, echo.Map{
				"sell_rate": nil,
				"message":   "Need at least two transactions.",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sell rate failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"sell_rate": rate,
		"text":      rate.Text(),
	})
}
