package engine

import (
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/generator"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/upgrade"
)

// UIState is the read-only projection published after every tick and action.
type UIState struct {
	Seq               uint64          `json:"seq"`
	Running           bool            `json:"running"`
	Timestamp         int64           `json:"timestamp"`
	Currency          float64         `json:"currency"`
	CurrencyFormatted string          `json:"currency_formatted"`
	LifetimeCurrency  float64         `json:"lifetime_currency"`
	ProductionRate    float64         `json:"production_rate"`
	RateFormatted     string          `json:"production_rate_formatted"`
	Resources         []ResourceView  `json:"resources"`
	Prestige          PrestigeView    `json:"prestige"`
	Generators        []GeneratorView `json:"generators"`
	Upgrades          []UpgradeView   `json:"upgrades"`
	Narrative         NarrativeView   `json:"narrative"`
	Task              TaskProgress    `json:"task"`
}

// ResourceView is one resource line.
type ResourceView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Amount     float64  `json:"amount"`
	Formatted  string   `json:"formatted"`
	Rate       float64  `json:"rate"`
	Max        *float64 `json:"max,omitempty"`
	Depletable bool     `json:"is_depletable"`
}

// PrestigeView is the derived prestige block.
type PrestigeView struct {
	Level            int     `json:"level"`
	GlobalMultiplier float64 `json:"global_multiplier"`
	Threshold        float64 `json:"threshold"`
	CanPrestige      bool    `json:"can_prestige"`
	NextMultiplier   float64 `json:"next_multiplier"`
}

// GeneratorView is a generator with its price and affordability.
type GeneratorView struct {
	generator.Generator
	Cost      float64 `json:"cost"`
	CanAfford bool    `json:"can_afford"`
	Stalled   bool    `json:"stalled"`
}

// UpgradeView is an upgrade with its purchase gates.
type UpgradeView struct {
	upgrade.Upgrade
	RequirementsMet bool `json:"requirements_met"`
	CanPurchase     bool `json:"can_purchase"`
}

// NarrativeView is the narrative block.
type NarrativeView struct {
	Stability     float64           `json:"stability"`
	PendingEvents []narrative.Event `json:"pending_events"`
	ViewedEvents  []string          `json:"viewed_events"`
}

// world is every piece of mutable game state. The engine owns exactly one.
type world struct {
	ledger     *resource.Ledger
	generators *generator.Catalog
	upgrades   *upgrade.Catalog
	prestige   *PrestigeSystem
	narrative  *narrative.Engine
	task       *TaskTimer
	production *ProductionSystem
}

// project builds a UIState from w. It only reads.
func project(w *world, running bool, now time.Time) UIState {
	report := w.production.Compute(w.ledger, w.generators, w.upgrades, w.prestige.Multiplier())
	primary := w.ledger.Primary()
	rate := report.Rate(primary)

	state := UIState{
		Running:           running,
		Timestamp:         now.UnixMilli(),
		Currency:          w.ledger.Current(),
		CurrencyFormatted: resource.FormatNumber(w.ledger.Current()),
		LifetimeCurrency:  w.ledger.Lifetime(),
		ProductionRate:    rate,
		RateFormatted:     resource.FormatNumber(rate),
		Prestige: PrestigeView{
			Level:            w.prestige.Level(),
			GlobalMultiplier: w.prestige.Multiplier(),
			Threshold:        w.prestige.Threshold(),
			CanPrestige:      w.prestige.CanPrestige(w.ledger),
			NextMultiplier:   w.prestige.NextMultiplier(),
		},
		Narrative: NarrativeView{
			Stability:     w.narrative.Stability(),
			PendingEvents: w.narrative.Pending(),
			ViewedEvents:  w.narrative.Viewed(),
		},
		Task: w.task.Progress(now),
	}

	for _, s := range w.ledger.States() {
		state.Resources = append(state.Resources, ResourceView{
			ID:         s.ID,
			Name:       s.Name,
			Amount:     s.Current,
			Formatted:  resource.FormatNumber(s.Current),
			Rate:       report.Rate(s.ID),
			Max:        s.Max,
			Depletable: s.Depletable,
		})
	}

	stalled := make(map[string]bool, len(report.Stalled))
	for _, id := range report.Stalled {
		stalled[id] = true
	}
	for _, g := range w.generators.All() {
		cost := g.Cost()
		state.Generators = append(state.Generators, GeneratorView{
			Generator: g,
			Cost:      cost,
			CanAfford: w.ledger.CanAfford(cost),
			Stalled:   stalled[g.ID],
		})
	}

	for _, u := range w.upgrades.All() {
		state.Upgrades = append(state.Upgrades, UpgradeView{
			Upgrade:         u,
			RequirementsMet: w.upgrades.RequirementsMet(u.ID),
			CanPurchase:     w.upgrades.CanPurchase(u.ID, w.ledger),
		})
	}

	return state
}
