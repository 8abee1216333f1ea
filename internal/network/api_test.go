package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

func newAPIMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewAPI(newTestEngine(t), logger.Discard()).RegisterRoutes(mux)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestAPI_PurchaseFlow(t *testing.T) {
	mux := newAPIMux(t)

	rec := do(t, mux, http.MethodPost, "/api/generators/basicAdBotFarm/buy")
	assert.Equal(t, http.StatusConflict, rec.Code, "cannot afford")

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/click").Code)
	}

	rec = do(t, mux, http.MethodPost, "/api/generators/basicAdBotFarm/buy")
	require.Equal(t, http.StatusOK, rec.Code)
	var res ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Equal(t, "basicAdBotFarm", res.Target)

	rec = do(t, mux, http.MethodGet, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Currency   float64 `json:"currency"`
		Generators []struct {
			ID    string  `json:"id"`
			Owned int     `json:"owned"`
			Cost  float64 `json:"cost"`
		} `json:"generators"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, 0.0, state.Currency)
	require.NotEmpty(t, state.Generators)
	assert.Equal(t, "basicAdBotFarm", state.Generators[0].ID)
	assert.Equal(t, 11.0, state.Generators[0].Cost)

	assert.Equal(t, http.StatusConflict, do(t, mux, http.MethodPost, "/api/upgrades/adBotOverclock/buy").Code)
	assert.Equal(t, http.StatusConflict, do(t, mux, http.MethodPost, "/api/upgrades/unknown/buy").Code)
	assert.Equal(t, http.StatusConflict, do(t, mux, http.MethodPost, "/api/prestige").Code)
}

func TestAPI_NarrativeQueue(t *testing.T) {
	mux := newAPIMux(t)

	assert.Equal(t, http.StatusNoContent, do(t, mux, http.MethodGet, "/api/narrative/next").Code)

	for i := 0; i < 10; i++ {
		do(t, mux, http.MethodPost, "/api/click")
	}
	do(t, mux, http.MethodPost, "/api/generators/basicAdBotFarm/buy")

	rec := do(t, mux, http.MethodGet, "/api/narrative/next")
	require.Equal(t, http.StatusOK, rec.Code)
	var ev struct {
		ID     string `json:"id"`
		Viewed bool   `json:"is_viewed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, "first-bot-farm", ev.ID)
	assert.True(t, ev.Viewed)

	assert.Equal(t, http.StatusNoContent, do(t, mux, http.MethodGet, "/api/narrative/next").Code)
}

func TestAPI_SaveAndReset(t *testing.T) {
	mux := newAPIMux(t)

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/save/metadata").Code)

	do(t, mux, http.MethodPost, "/api/click")
	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/save").Code)

	rec := do(t, mux, http.MethodGet, "/api/save/metadata")
	require.Equal(t, http.StatusOK, rec.Code)
	var meta struct {
		Version   string `json:"version"`
		Timestamp int64  `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, save.Version, meta.Version)
	assert.Equal(t, epoch.UnixMilli(), meta.Timestamp)

	rec = do(t, mux, http.MethodPost, "/api/reset")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"save_cleared":true}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/save/metadata").Code)

	var state struct {
		Currency float64 `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(do(t, mux, http.MethodGet, "/api/state").Body.Bytes(), &state))
	assert.Equal(t, 0.0, state.Currency)
}

func TestAPI_MethodsAreEnforced(t *testing.T) {
	mux := newAPIMux(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodGet, "/api/click").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, mux, http.MethodPost, "/api/state").Code)
}
