// Package storage - reconstructor.go
// Career stats and the "while you were away" recap, rebuilt from the event log.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/MRamiBalles/ContentCollapse/internal/events"
)

// Reconstructor derives read models from persisted audit events.
// Saves hold the current state; the event log holds how it got there.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// CareerStats are totals that survive prestige resets.
type CareerStats struct {
	GeneratorsBought int     `json:"generators_bought"`
	UpgradesBought   int     `json:"upgrades_bought"`
	Prestiges        int     `json:"prestiges"`
	NarrativeSeen    int     `json:"narrative_seen"`
	TasksCompleted   int     `json:"tasks_completed"`
	CurrencySpent    float64 `json:"currency_spent"`
	HighestPrestige  int     `json:"highest_prestige"`
}

// RecapEvent is a simplified event for the recap screen.
type RecapEvent struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"` // Human-readable description
	Impact    string `json:"impact"`  // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// RebuildStats folds a slot's full history into career totals.
func (r *Reconstructor) RebuildStats(ctx context.Context, slot string) (*CareerStats, error) {
	records, err := r.eventRepo.GetBySlot(ctx, slot, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get events for slot: %w", err)
	}

	var stats CareerStats
	for _, rec := range records {
		r.applyEventToStats(&stats, rec)
	}
	return &stats, nil
}

// GenerateRecap summarizes the newest limit events of a slot.
func (r *Reconstructor) GenerateRecap(ctx context.Context, slot string, limit int) ([]RecapEvent, error) {
	records, err := r.eventRepo.GetBySlot(ctx, slot, limit)
	if err != nil {
		return nil, err
	}

	recap := make([]RecapEvent, 0, len(records))
	for _, rec := range records {
		recap = append(recap, RecapEvent{
			Timestamp: humanize.Time(rec.Timestamp),
			EventType: rec.EventType,
			Summary:   r.summarizeEvent(rec),
			Impact:    r.determineImpact(rec),
		})
	}
	return recap, nil
}

func (r *Reconstructor) applyEventToStats(stats *CareerStats, rec EventRecord) {
	payload := decodePayload(rec)

	switch events.EventType(rec.EventType) {
	case events.EventTypeGeneratorPurchased:
		stats.GeneratorsBought++
		stats.CurrencySpent += number(payload, "cost")
	case events.EventTypeUpgradePurchased:
		stats.UpgradesBought++
		stats.CurrencySpent += number(payload, "cost")
	case events.EventTypePrestige:
		stats.Prestiges++
	case events.EventTypeNarrativeFired:
		stats.NarrativeSeen++
	case events.EventTypeTaskCompleted:
		stats.TasksCompleted++
	case events.EventTypeProgressReset:
		*stats = CareerStats{}
		return
	}

	if rec.PrestigeLevel > stats.HighestPrestige {
		stats.HighestPrestige = rec.PrestigeLevel
	}
}

// summarizeEvent creates a human-readable summary.
func (r *Reconstructor) summarizeEvent(rec EventRecord) string {
	payload := decodePayload(rec)

	switch events.EventType(rec.EventType) {
	case events.EventTypeGameStarted:
		return "The servers came online."
	case events.EventTypeGeneratorPurchased:
		return fmt.Sprintf("Bought a %s for %s.", rec.TargetID, humanize.Commaf(number(payload, "cost")))
	case events.EventTypeUpgradePurchased:
		return fmt.Sprintf("Installed %s.", rec.TargetID)
	case events.EventTypePrestige:
		return fmt.Sprintf("Rebranded after %s content units.", humanize.Commaf(number(payload, "currency")))
	case events.EventTypeNarrativeFired:
		if title, ok := payload["title"].(string); ok {
			return title
		}
		return "Something happened online."
	case events.EventTypeTaskCompleted:
		return fmt.Sprintf("Task paid out %s.", humanize.Commaf(number(payload, "reward")))
	case events.EventTypeProgressReset:
		return "Everything was wiped."
	default:
		return "Something happened."
	}
}

// determineImpact classifies the event impact.
func (r *Reconstructor) determineImpact(rec EventRecord) string {
	switch events.EventType(rec.EventType) {
	case events.EventTypeNarrativeFired:
		impact := number(decodePayload(rec), "stability_impact")
		switch {
		case impact < 0:
			return "NEGATIVE"
		case impact > 0:
			return "POSITIVE"
		}
		return "NEUTRAL"
	case events.EventTypePrestige, events.EventTypeTaskCompleted:
		return "POSITIVE"
	case events.EventTypeProgressReset:
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}

func decodePayload(rec EventRecord) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal([]byte(rec.Payload), &payload); err != nil {
		return nil
	}
	return payload
}

func number(payload map[string]any, key string) float64 {
	if v, ok := payload[key].(float64); ok {
		return v
	}
	return 0
}
