package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/middleware"
	"github.com/iliyamo/auction-bin-tracker/internal/model"
	"github.com/iliyamo/auction-bin-tracker/internal/repository"
	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

// SubscriptionHandler reads and changes the seller's tier.  A tier change
// only affects future bin allocations: bidders already holding a bin above
// a lowered quota keep it.
type SubscriptionHandler struct {
	Engine   *show.Engine
	Subs     *repository.SubscriptionRepo
	TierBins map[model.Tier]int
}

func NewSubscriptionHandler(e *show.Engine, subs *repository.SubscriptionRepo, tierBins map[model.Tier]int) *SubscriptionHandler {
	if e == nil || subs == nil || tierBins == nil {
		panic("nil dependency passed to NewSubscriptionHandler")
	}
	return &SubscriptionHandler{Engine: e, Subs: subs, TierBins: tierBins}
}

// Get handles GET /v1/subscription.
func (h *SubscriptionHandler) Get(c echo.Context) error {
	info := h.Engine.Info()
	return c.JSON(http.StatusOK, echo.Map{
		"tier":      info.Tier,
		"max_bins":  info.MaxBins,
		"used_bins": info.UsedBins,
	})
}

type tierReq struct {
	Tier string `json:"tier"`
}

// Update handles PUT /v1/subscription.  The new tier is persisted and
// applied to the live allocator.
func (h *SubscriptionHandler) Update(c echo.Context) error {
	var req tierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	tier, ok := model.ParseTier(req.Tier)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown tier"})
	}
	maxBins, ok := h.TierBins[tier]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown tier"})
	}

	uid := middleware.UserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Subs.Save(ctx, uid, tier); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save subscription failed"})
	}

	h.Engine.SetTier(tier, maxBins)
	return c.JSON(http.StatusOK, echo.Map{
		"tier":     string(tier),
		"max_bins": maxBins,
	})
}
