package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoiron/sqlx"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/events"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "nested", "idle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() save.Snapshot {
	return save.Snapshot{
		Version:              save.Version,
		Timestamp:            now.UnixMilli(),
		ContentUnits:         1234.5,
		LifetimeContentUnits: 99999,
		PrestigeLevel:        2,
		PrestigeMultiplier:   1.5625,
		Generators:           map[string]save.GeneratorState{"basicAdBotFarm": {Owned: 12}},
		PurchasedUpgrades:    []string{"adBotOverclock"},
		Narrative: save.NarrativeState{
			ViewedEvents:      []string{"first-upload"},
			SocietalStability: 87,
			GameStartTime:     now.Add(-time.Hour).UnixMilli(),
		},
		HasTriggeredGameStart: true,
		TaskStartTime:         now.UnixMilli(),
		LastContentUnitsCheck: 1234,
		Resources:             map[string]float64{"computeCycles": 12},
	}
}

func TestSQLiteSaveGateway_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	gw := NewSQLiteSaveGateway(db, "default", clock.NewFake(now), logger.Discard())

	assert.False(t, gw.HasSave(ctx))
	_, ok := gw.Load(ctx)
	assert.False(t, ok)

	snap := sampleSnapshot()
	require.True(t, gw.Save(ctx, snap))
	require.True(t, gw.HasSave(ctx))

	loaded, ok := gw.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, snap, loaded)

	meta, ok := gw.Metadata(ctx)
	require.True(t, ok)
	assert.Equal(t, save.Metadata{Version: save.Version, Timestamp: snap.Timestamp}, meta)

	snap.ContentUnits = 1
	require.True(t, gw.Save(ctx, snap), "overwrites the slot")
	loaded, _ = gw.Load(ctx)
	assert.Equal(t, 1.0, loaded.ContentUnits)

	require.True(t, gw.Clear(ctx))
	assert.False(t, gw.HasSave(ctx))
}

func TestSQLiteSaveGateway_SlotsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	a := NewSQLiteSaveGateway(db, "a", clock.NewFake(now), logger.Discard())
	b := NewSQLiteSaveGateway(db, "b", clock.NewFake(now), logger.Discard())

	require.True(t, a.Save(ctx, sampleSnapshot()))
	assert.False(t, b.HasSave(ctx))
}

func TestSQLiteSaveGateway_DiscardsCorruptPayload(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	gw := NewSQLiteSaveGateway(db, "default", clock.NewFake(now), logger.Discard())

	_, err := db.Exec(`INSERT INTO saves (slot, version, timestamp, payload, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"default", save.Version, 1, `{"version":"1.2.0","timestamp":1,"contentUnits":-5}`, now)
	require.NoError(t, err)

	_, ok := gw.Load(ctx)
	assert.False(t, ok)
}

func TestSQLiteSaveGateway_UnavailableAfterClose(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "idle.db"))
	require.NoError(t, err)
	gw := NewSQLiteSaveGateway(db, "default", clock.NewFake(now), logger.Discard())
	db.Close()

	assert.False(t, gw.Save(context.Background(), sampleSnapshot()))

	_, err = gw.write(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMemoryGateway(t *testing.T) {
	ctx := context.Background()
	gw := NewMemoryGateway(clock.NewFake(now))

	require.True(t, gw.Save(ctx, sampleSnapshot()))
	loaded, ok := gw.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleSnapshot(), loaded)

	gw.Put([]byte(`{"version":"1.2.0"}`))
	_, ok = gw.Load(ctx)
	assert.False(t, ok, "missing required fields")

	gw.SetUnavailable(true)
	assert.False(t, gw.Save(ctx, sampleSnapshot()))
	assert.False(t, gw.HasSave(ctx))
	assert.False(t, gw.Clear(ctx))
}

func TestEventPersister_AndReconstructor(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteEventRepository(db)

	log := events.NewEventLog(NewEventPersister(repo, "default"))
	log.Append(events.GameEvent{Type: events.EventTypeGameStarted, ActorID: events.ActorSystem})
	log.Append(events.GameEvent{Type: events.EventTypeGeneratorPurchased, ActorID: events.ActorPlayer,
		TargetID: "basicAdBotFarm", Payload: map[string]any{"cost": 10.0, "owned": 1}})
	log.Append(events.GameEvent{Type: events.EventTypeNarrativeFired, ActorID: events.ActorSystem,
		TargetID: "first-bot-farm", Payload: map[string]any{"title": "Hello, Fellow Humans", "stability_impact": -1.0}})
	log.Append(events.GameEvent{Type: events.EventTypePrestige, ActorID: events.ActorPlayer,
		Payload: map[string]any{"currency": 1000.0}, PrestigeLevel: 1})
	log.Wait()

	all, err := repo.GetBySlot(ctx, "default", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, string(events.EventTypeGameStarted), all[0].EventType)

	newest, err := repo.GetBySlot(ctx, "default", 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, string(events.EventTypeNarrativeFired), newest[0].EventType, "oldest first")

	byType, err := repo.GetByEventType(ctx, "default", string(events.EventTypeGeneratorPurchased))
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "basicAdBotFarm", byType[0].TargetID)

	recon := NewReconstructor(repo)
	stats, err := recon.RebuildStats(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GeneratorsBought)
	assert.Equal(t, 1, stats.Prestiges)
	assert.Equal(t, 1, stats.NarrativeSeen)
	assert.Equal(t, 10.0, stats.CurrencySpent)
	assert.Equal(t, 1, stats.HighestPrestige)

	recap, err := recon.GenerateRecap(ctx, "default", 10)
	require.NoError(t, err)
	require.Len(t, recap, 4)
	assert.Equal(t, "Bought a basicAdBotFarm for 10.", recap[1].Summary)
	assert.Equal(t, "Hello, Fellow Humans", recap[2].Summary)
	assert.Equal(t, "NEGATIVE", recap[2].Impact)
	assert.Equal(t, "POSITIVE", recap[3].Impact)
}
