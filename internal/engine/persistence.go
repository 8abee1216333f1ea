package engine

import (
	"context"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/events"
)

// Snapshot captures the persisted form of the current state.
func (e *Engine) Snapshot() save.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.captureLocked(e.clock.Now())
}

func (e *Engine) captureLocked(now time.Time) save.Snapshot {
	gens := make(map[string]save.GeneratorState)
	for id, owned := range e.w.generators.OwnedMap() {
		gens[id] = save.GeneratorState{Owned: owned}
	}

	var secondary, lifetimes map[string]float64
	for _, s := range e.w.ledger.States() {
		if s.ID == e.w.ledger.Primary() {
			continue
		}
		if secondary == nil {
			secondary = make(map[string]float64)
			lifetimes = make(map[string]float64)
		}
		secondary[s.ID] = s.Current
		lifetimes[s.ID] = e.w.ledger.LifetimeOf(s.ID)
	}

	return save.Snapshot{
		Version:              save.Version,
		Timestamp:            now.UnixMilli(),
		ContentUnits:         e.w.ledger.Current(),
		LifetimeContentUnits: e.w.ledger.Lifetime(),
		PrestigeLevel:        e.w.prestige.Level(),
		PrestigeMultiplier:   e.w.prestige.Multiplier(),
		Generators:           gens,
		PurchasedUpgrades:    e.w.upgrades.PurchasedIDs(),
		Narrative: save.NarrativeState{
			ViewedEvents:      e.w.narrative.Viewed(),
			SocietalStability: e.w.narrative.Stability(),
			GameStartTime:     e.w.narrative.StartTime().UnixMilli(),
		},
		HasTriggeredGameStart: e.hasTriggeredGameStart,
		TaskStartTime:         e.w.task.StartTime().UnixMilli(),
		LastContentUnitsCheck: e.lastContentUnitsCheck,
		Resources:             secondary,
		LifetimeResources:     lifetimes,
	}
}

// Restore replaces the game state with a snapshot. Unknown generator and
// upgrade IDs are ignored. Time spent while the game was not running is not credited.
func (e *Engine) Restore(snap save.Snapshot) {
	e.mu.Lock()
	now := e.clock.Now()
	l := e.w.ledger

	l.Wipe()
	l.Set(l.Primary(), snap.ContentUnits)
	l.SetLifetime(l.Primary(), snap.LifetimeContentUnits)
	for id, amount := range snap.Resources {
		if id != l.Primary() {
			l.Set(id, amount)
		}
	}
	for id, amount := range snap.LifetimeResources {
		if id != l.Primary() {
			l.SetLifetime(id, amount)
		}
	}

	e.w.prestige.SetLevel(snap.PrestigeLevel)

	e.w.generators.ResetAll()
	for id, g := range snap.Generators {
		e.w.generators.SetOwned(id, g.Owned)
	}
	e.w.upgrades.ResetAll()
	for _, id := range snap.PurchasedUpgrades {
		e.w.upgrades.MarkPurchased(id)
	}

	e.w.narrative.Restore(snap.Narrative.ViewedEvents, snap.Narrative.SocietalStability, time.UnixMilli(snap.Narrative.GameStartTime))
	e.w.task.Restart(time.UnixMilli(snap.TaskStartTime))

	// The latch is per process: a save cannot re-arm it.
	e.hasTriggeredGameStart = e.hasTriggeredGameStart || snap.HasTriggeredGameStart
	e.lastContentUnitsCheck = snap.LastContentUnitsCheck
	e.lastTick = now

	state := e.projectAt(e.ticker.Running(), now)
	e.mu.Unlock()

	e.publish(state)
}

// LoadSave restores from the gateway. False when there is no gateway or no valid save.
func (e *Engine) LoadSave(ctx context.Context) bool {
	if e.gateway == nil {
		return false
	}
	snap, ok := e.gateway.Load(ctx)
	e.metrics.RecordLoad(ok)
	if !ok {
		e.logger.Info("No valid save found, starting fresh.")
		return false
	}
	e.Restore(snap)
	e.logger.Infof("Save restored (version %s, prestige %d)", snap.Version, snap.PrestigeLevel)
	return true
}

// SaveNow persists the current state synchronously. Failures are reported as false.
func (e *Engine) SaveNow(ctx context.Context) bool {
	if e.gateway == nil {
		return false
	}
	snap := e.Snapshot()

	began := time.Now()
	ok := e.gateway.Save(ctx, snap)
	e.metrics.RecordSave(ok, time.Since(began))
	if !ok {
		e.logger.Warn("Save failed; continuing in memory.")
	}
	return ok
}

// Flush is the shutdown hook: it persists the current state.
func (e *Engine) Flush(ctx context.Context) bool {
	return e.SaveNow(ctx)
}

// ResetProgress clears the stored save and starts a fresh game in place.
// Lifetime totals and narrative progress are wiped too.
func (e *Engine) ResetProgress(ctx context.Context) bool {
	cleared := true
	if e.gateway != nil {
		cleared = e.gateway.Clear(ctx)
	}

	e.mu.Lock()
	now := e.clock.Now()
	e.w.ledger.Wipe()
	e.w.generators.ResetAll()
	e.w.upgrades.ResetAll()
	e.w.prestige.SetLevel(0)
	e.w.narrative.Reset(now)
	e.w.task.Restart(now)
	e.lastContentUnitsCheck = 0
	e.lastTick = now
	e.record(events.EventTypeProgressReset, events.ActorPlayer, "", nil)
	state := e.projectAt(e.ticker.Running(), now)
	e.mu.Unlock()

	e.logger.Event("RESET", "PLAYER", "progress wiped")
	e.publish(state)
	return cleared
}

func (e *Engine) autosave() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	e.SaveNow(ctx)
}

// SaveMetadata reports the version and timestamp of the stored save, if any.
func (e *Engine) SaveMetadata(ctx context.Context) (save.Metadata, bool) {
	if e.gateway == nil {
		return save.Metadata{}, false
	}
	return e.gateway.Metadata(ctx)
}
