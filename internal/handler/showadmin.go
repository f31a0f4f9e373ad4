package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/history"
	"github.com/iliyamo/auction-bin-tracker/internal/model"
	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

// ShowHandler manages the show lifecycle: info, clearing into a new show,
// and the CSV export/import used to back up and restore a session.
type ShowHandler struct {
	Engine *show.Engine
	Store  *history.Store
}

func NewShowHandler(e *show.Engine, s *history.Store) *ShowHandler {
	if e == nil || s == nil {
		panic("nil dependency passed to NewShowHandler")
	}
	return &ShowHandler{Engine: e, Store: s}
}

// Info handles GET /v1/show.
func (h *ShowHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.Info())
}

type clearReq struct {
	Confirm bool `json:"confirm"`
}

// Clear handles POST /v1/show/clear.  The operation is destructive, so
// the caller must send {"confirm":true}; the summary of the ending show is
// archived before anything is dropped, and an archive failure aborts the
// reset.
func (h *ShowHandler) Clear(c echo.Context) error {
	var req clearReq
	if err := c.Bind(&req); err != nil || !req.Confirm {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirm must be true to start a new show"})
	}

	newID, err := h.Engine.Clear(func(sum model.ShowSummary) error {
		path, err := h.Store.WriteSummary(sum)
		if err != nil {
			return err
		}
		log.Printf("show: archived %s to %s (%d bidders, %d transactions)",
			sum.ShowID, path, sum.TotalBidders, sum.TotalTransactions)
		return nil
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to archive show: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"show_id": newID})
}

// Export handles POST /v1/export: appends every transaction of the
// current show to its bidder-history file.  Show id and rows come from
// one snapshot so the rows always land in the file of the show that
// produced them.
func (h *ShowHandler) Export(c echo.Context) error {
	showID, rows := h.Engine.ExportSnapshot()
	if len(rows) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"message": "no bidders to export"})
	}
	path, err := h.Store.AppendBidderHistory(showID, rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed: " + err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"path": path,
		"rows": len(rows),
	})
}

// Import handles POST /v1/import.  The CSV comes either as a multipart
// "file" field or as the raw request body.  The file is parsed and
// validated in full before the live session is replaced; any bad row or
// over-quota bin rejects the import and leaves the show untouched.
func (h *ShowHandler) Import(c echo.Context) error {
	var src io.ReadCloser
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
		}
		src = f
	} else {
		src = c.Request().Body
	}
	defer src.Close()

	rows, err := history.ReadBidderHistory(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	bidders, err := h.Engine.Import(rows)
	switch {
	case errors.Is(err, show.ErrQuotaViolationOnImport):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bidders": bidders,
		"rows":    len(rows),
	})
}
