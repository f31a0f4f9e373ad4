package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

// AnnouncementHandler renders the copy-paste texts a seller drops into the
// stream chat: the giveaway announcement and top-buyer shoutouts.  The
// templates are configurable; placeholders use {name} syntax.
type AnnouncementHandler struct {
	Engine           *show.Engine
	GiveawayTemplate string
	ShoutoutTemplate string
}

func NewAnnouncementHandler(e *show.Engine, giveawayTpl, shoutoutTpl string) *AnnouncementHandler {
	if e == nil {
		panic("nil engine passed to NewAnnouncementHandler")
	}
	return &AnnouncementHandler{Engine: e, GiveawayTemplate: giveawayTpl, ShoutoutTemplate: shoutoutTpl}
}

// Giveaway handles GET /v1/announcements/giveaway: the announcement for
// the next giveaway to run (one past the count issued so far).
func (h *AnnouncementHandler) Giveaway(c echo.Context) error {
	num := h.Engine.GiveawayCount() + 1
	text := strings.ReplaceAll(h.GiveawayTemplate, "{number}", strconv.Itoa(num))
	return c.JSON(http.StatusOK, echo.Map{
		"number": num,
		"text":   text,
	})
}

// TopBuyer handles GET /v1/announcements/top-buyer/:rank for ranks 1-3.
func (h *AnnouncementHandler) TopBuyer(c echo.Context) error {
	rank, err := strconv.Atoi(c.Param("rank"))
	if err != nil || rank < 1 || rank > 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rank must be 1-3"})
	}
	top := h.Engine.TopBuyers(rank)
	if len(top) < rank {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no buyer at that rank yet"})
	}
	b := top[rank-1]
	text := strings.ReplaceAll(h.ShoutoutTemplate, "{username}", b.DisplayName)
	text = strings.ReplaceAll(text, "{count}", strconv.Itoa(b.TotalItems))
	return c.JSON(http.StatusOK, echo.Map{
		"username":    b.DisplayName,
		"total_items": b.TotalItems,
		"text":        text,
	})
}
