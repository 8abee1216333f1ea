// Package network - api.go
// REST mirror of the WebSocket actions, for scripts and UIs without a socket.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

// SaveManager is the part of the engine behind the save endpoints.
type SaveManager interface {
	SaveNow(ctx context.Context) bool
	ResetProgress(ctx context.Context) bool
	SaveMetadata(ctx context.Context) (save.Metadata, bool)
}

// GameAPI is the engine surface the REST API needs.
type GameAPI interface {
	Game
	SaveManager
}

// API handles player actions over plain HTTP.
type API struct {
	game   GameAPI
	logger *logger.Logger
}

// NewAPI creates the REST action handler.
func NewAPI(game GameAPI, log *logger.Logger) *API {
	return &API{game: game, logger: log}
}

// RegisterRoutes sets up the action API routes.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", a.HandleState)
	mux.HandleFunc("POST /api/click", a.HandleClick)
	mux.HandleFunc("POST /api/generators/{id}/buy", a.HandleBuyGenerator)
	mux.HandleFunc("POST /api/upgrades/{id}/buy", a.HandleBuyUpgrade)
	mux.HandleFunc("POST /api/prestige", a.HandlePrestige)
	mux.HandleFunc("GET /api/narrative/next", a.HandleNextEvent)
	mux.HandleFunc("POST /api/save", a.HandleSave)
	mux.HandleFunc("POST /api/reset", a.HandleReset)
	mux.HandleFunc("GET /api/save/metadata", a.HandleSaveMetadata)
}

// HandleState returns the current UI projection.
// GET /api/state
func (a *API) HandleState(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, a.game.State())
}

// HandleClick grants one manual click.
// POST /api/click
func (a *API) HandleClick(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, ActionResult{Action: ActionClick, OK: true, Value: a.game.Click()})
}

// HandleBuyGenerator buys one unit of a generator.
// POST /api/generators/{id}/buy
func (a *API) HandleBuyGenerator(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a.result(w, ActionResult{Action: ActionBuyGenerator, Target: id, OK: a.game.BuyGenerator(id)})
}

// HandleBuyUpgrade buys an upgrade.
// POST /api/upgrades/{id}/buy
func (a *API) HandleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a.result(w, ActionResult{Action: ActionBuyUpgrade, Target: id, OK: a.game.BuyUpgrade(id)})
}

// HandlePrestige performs the prestige reset.
// POST /api/prestige
func (a *API) HandlePrestige(w http.ResponseWriter, r *http.Request) {
	a.result(w, ActionResult{Action: ActionPrestige, OK: a.game.Prestige()})
}

// HandleNextEvent pops the next pending narrative event.
// GET /api/narrative/next
func (a *API) HandleNextEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := a.game.NextPendingEvent()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	jsonSuccess(w, ev)
}

// HandleSave persists immediately.
// POST /api/save
func (a *API) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), actionSaveTimeout)
	defer cancel()

	if !a.game.SaveNow(ctx) {
		jsonError(w, "Save failed", http.StatusServiceUnavailable)
		return
	}
	jsonSuccess(w, ActionResult{Action: ActionSave, OK: true})
}

// HandleReset wipes all progress.
// POST /api/reset
func (a *API) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), actionSaveTimeout)
	defer cancel()

	cleared := a.game.ResetProgress(ctx)
	a.logger.Event("API_RESET", "PLAYER", "progress reset requested")
	// The in-memory game is reset even when the stored save could not be cleared.
	jsonSuccess(w, map[string]any{"ok": true, "save_cleared": cleared})
}

// HandleSaveMetadata describes the stored save without loading it.
// GET /api/save/metadata
func (a *API) HandleSaveMetadata(w http.ResponseWriter, r *http.Request) {
	meta, ok := a.game.SaveMetadata(r.Context())
	if !ok {
		jsonError(w, "No save", http.StatusNotFound)
		return
	}
	jsonSuccess(w, map[string]any{
		"version":   meta.Version,
		"timestamp": meta.Timestamp,
		"saved_at":  time.UnixMilli(meta.Timestamp).UTC().Format(time.RFC3339),
	})
}

// result maps a refused action to 409 so scripts can branch on status alone.
func (a *API) result(w http.ResponseWriter, res ActionResult) {
	if !res.OK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(res)
		return
	}
	jsonSuccess(w, res)
}

// jsonError sends an error response.
func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func jsonSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
