package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auction-bin-tracker/internal/model"
	"github.com/iliyamo/auction-bin-tracker/internal/show"
)

func newRecordContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/v1/transactions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRecordAssignsBin(t *testing.T) {
	e := echo.New()
	eng := show.NewEngine(show.Options{Tier: model.TierGold, MaxBins: 300})
	h := NewTransactionHandler(eng)

	c, rec := newRecordContext(e, `{"username":"GlamBuyer22","qty":"2","weight":"M"}`)
	require.NoError(t, h.Record(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "GlamBuyer22", body["username"])
	assert.Equal(t, float64(1), body["bin"])
	assert.Equal(t, float64(0), body["giveaway_num"])
	assert.Equal(t, float64(2), body["total_items"])
	assert.Equal(t, "Username: GlamBuyer22 | Bin: 1", body["latest"])
}

func TestRecordEmptyQtyDefaultsToOne(t *testing.T) {
	e := echo.New()
	eng := show.NewEngine(show.Options{Tier: model.TierGold, MaxBins: 300})
	h := NewTransactionHandler(eng)

	c, rec := newRecordContext(e, `{"username":"bob"}`)
	require.NoError(t, h.Record(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["total_items"])
}

func TestRecordRejectsBadInput(t *testing.T) {
	e := echo.New()
	eng := show.NewEngine(show.Options{Tier: model.TierGold, MaxBins: 300})
	h := NewTransactionHandler(eng)

	c, rec := newRecordContext(e, `{"username":"   ","qty":"1"}`)
	require.NoError(t, h.Record(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRecordContext(e, `{"username":"bob","qty":"0"}`)
	require.NoError(t, h.Record(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordQuotaConflict(t *testing.T) {
	e := echo.New()
	eng := show.NewEngine(show.Options{Tier: model.TierBronze, MaxBins: 1})
	h := NewTransactionHandler(eng)

	c, rec := newRecordContext(e, `{"username":"a","qty":"1"}`)
	require.NoError(t, h.Record(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newRecordContext(e, `{"username":"b","qty":"1"}`)
	require.NoError(t, h.Record(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "Bronze tier allows 1 bins")
}

func TestSellRateInsufficientData(t *testing.T) {
	e := echo.New()
	eng := show.NewEngine(show.Options{Tier: model.TierGold, MaxBins: 300})
	h := NewStatsHandler(eng)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats/sell-rate", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.SellRate(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Nil(t, body["sell_rate"])
	assert.Equal(t, "Need at least two transactions.", body["message"])
}
