// Package network - history.go
// Read-only views of the audit log: the in-memory session history and the
// persisted career recap.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MRamiBalles/ContentCollapse/internal/events"
	"github.com/MRamiBalles/ContentCollapse/internal/infra/storage"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

const defaultHistoryLimit = 100

// HistoryHandler provides the history API.
type HistoryHandler struct {
	eventLog *events.EventLog
	recon    *storage.Reconstructor // nil without a database
	slot     string
	logger   *logger.Logger
}

// NewHistoryHandler creates a history handler. recon may be nil.
func NewHistoryHandler(el *events.EventLog, recon *storage.Reconstructor, slot string, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		eventLog: el,
		recon:    recon,
		slot:     slot,
		logger:   log,
	}
}

// HistoryEvent is an audit event formatted for display.
type HistoryEvent struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	Ago           string `json:"ago"`
	Type          string `json:"type"`
	Actor         string `json:"actor"`
	Target        string `json:"target,omitempty"`
	PrestigeLevel int    `json:"prestige_level"`
	Payload       any    `json:"payload,omitempty"`
}

// HistoryResponse is the API response for the history listing.
type HistoryResponse struct {
	TotalEvents int            `json:"total_events"`
	FilteredBy  string         `json:"filtered_by,omitempty"`
	GeneratedAt string         `json:"generated_at"`
	Events      []HistoryEvent `json:"events"`
}

// HandleHistory lists the newest session events, oldest first.
// GET /api/history?type=PRESTIGE&limit=50
func (hh *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	eventType := r.URL.Query().Get("type")
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		jsonError(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	var selected []events.GameEvent
	if eventType != "" {
		selected = hh.eventLog.GetByType(events.EventType(eventType))
		if len(selected) > limit {
			selected = selected[len(selected)-limit:]
		}
	} else {
		selected = hh.eventLog.Recent(limit)
	}

	now := time.Now()
	out := make([]HistoryEvent, 0, len(selected))
	for _, e := range selected {
		out = append(out, toHistoryEvent(e, now))
	}

	jsonSuccess(w, HistoryResponse{
		TotalEvents: len(out),
		FilteredBy:  eventType,
		GeneratedAt: now.Format(time.RFC3339),
		Events:      out,
	})
}

// HandleEventDetail returns one session event by ID.
// GET /api/history/event?id=XXX
func (hh *HistoryHandler) HandleEventDetail(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("id")
	if eventID == "" {
		jsonError(w, "Missing id", http.StatusBadRequest)
		return
	}

	for _, e := range hh.eventLog.Replay() {
		if e.ID == eventID {
			jsonSuccess(w, toHistoryEvent(e, time.Now()))
			return
		}
	}
	jsonError(w, "Event not found", http.StatusNotFound)
}

// HandleStats returns per-type counts for the current session.
// GET /api/history/stats
func (hh *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	all := hh.eventLog.Replay()

	counts := make(map[string]int)
	for _, e := range all {
		counts[string(e.Type)]++
	}

	jsonSuccess(w, map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"total_events": len(all),
		"by_type":      counts,
	})
}

// HandleCareer returns lifetime stats and a recap rebuilt from the database.
// GET /api/history/career?limit=20
func (hh *HistoryHandler) HandleCareer(w http.ResponseWriter, r *http.Request) {
	if hh.recon == nil {
		jsonError(w, "No event store configured", http.StatusServiceUnavailable)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		jsonError(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	stats, err := hh.recon.RebuildStats(r.Context(), hh.slot)
	if err != nil {
		hh.logger.Errorf("Career rebuild failed: %v", err)
		jsonError(w, "Event store unavailable", http.StatusServiceUnavailable)
		return
	}
	recap, err := hh.recon.GenerateRecap(r.Context(), hh.slot, limit)
	if err != nil {
		hh.logger.Errorf("Recap failed: %v", err)
		jsonError(w, "Event store unavailable", http.StatusServiceUnavailable)
		return
	}

	hh.logger.Event("CAREER_RECAP", "PLAYER", "slot:"+hh.slot+" events:"+strconv.Itoa(len(recap)))
	jsonSuccess(w, map[string]any{
		"slot":  hh.slot,
		"stats": stats,
		"recap": recap,
	})
}

// RegisterRoutes sets up the history API routes.
func (hh *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", hh.HandleHistory)
	mux.HandleFunc("GET /api/history/event", hh.HandleEventDetail)
	mux.HandleFunc("GET /api/history/stats", hh.HandleStats)
	mux.HandleFunc("GET /api/history/career", hh.HandleCareer)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func toHistoryEvent(e events.GameEvent, now time.Time) HistoryEvent {
	payload := e.Payload
	// Round-trip so clients see the same shape the database stores.
	if raw, err := json.Marshal(e.Payload); err == nil {
		var generic any
		if json.Unmarshal(raw, &generic) == nil {
			payload = generic
		}
	}

	return HistoryEvent{
		ID:            e.ID,
		Timestamp:     e.Timestamp.Format("15:04:05"),
		Ago:           humanize.RelTime(e.Timestamp, now, "ago", "from now"),
		Type:          string(e.Type),
		Actor:         e.ActorID,
		Target:        e.TargetID,
		PrestigeLevel: e.PrestigeLevel,
		Payload:       payload,
	}
}
