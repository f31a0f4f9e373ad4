package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

// TransactionHandler exposes the single mutating entry point of the
// ledger: recording a sale (or giveaway entry) for a bidder.
type TransactionHandler struct {
	Engine *show.Engine
}

func NewTransactionHandler(e *show.Engine) *TransactionHandler {
	if e == nil {
		panic("nil engine passed to NewTransactionHandler")
	}
	return &TransactionHandler{Engine: e}
}

type recordReq struct {
	Username string `json:"username"`
	Qty      string `json:"qty"` // raw user input; empty means 1
	Weight   string `json:"weight"`
	Giveaway bool   `json:"giveaway"`
}

// Record handles POST /v1/transactions.  A new handle gets the next bin,
// a known handle (case-insensitive) appends to its existing record.  The
// successful mutation is fanned out to the overlay and chat channels by
// the engine; this handler only reports the outcome.
func (h *TransactionHandler) Record(c echo.Context) error {
	var req recordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Engine.Record(req.Username, req.Qty, req.Weight, req.Giveaway)
	switch {
	case errors.Is(err, show.ErrInvalidIdentity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	case errors.Is(err, show.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qty must be a positive integer"})
	case errors.Is(err, show.ErrQuotaExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"username":     res.DisplayName,
		"bin":          res.Bin,
		"giveaway_num": res.Giveaway.Serial(),
		"total_items":  res.TotalItems,
		"latest":       res.Latest,
	})
}
