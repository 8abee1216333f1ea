package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/ContentCollapse/internal/content"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/events"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/config"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// memGateway is an in-test save.Gateway.
type memGateway struct {
	snap    *save.Snapshot
	failing bool
}

func (g *memGateway) Save(_ context.Context, s save.Snapshot) bool {
	if g.failing {
		return false
	}
	g.snap = &s
	return true
}

func (g *memGateway) Load(context.Context) (save.Snapshot, bool) {
	if g.snap == nil {
		return save.Snapshot{}, false
	}
	return *g.snap, true
}

func (g *memGateway) HasSave(context.Context) bool { return g.snap != nil }

func (g *memGateway) Clear(context.Context) bool {
	g.snap = nil
	return true
}

func (g *memGateway) Metadata(context.Context) (save.Metadata, bool) {
	if g.snap == nil {
		return save.Metadata{}, false
	}
	return save.Metadata{Version: g.snap.Version, Timestamp: g.snap.Timestamp}, true
}

func newTestEngine(t *testing.T) (*Engine, *clock.Fake, *memGateway) {
	t.Helper()
	clk := clock.NewFake(epoch)
	gw := &memGateway{}
	e := NewEngine(Options{
		Catalog: content.Default(),
		Config:  config.Default(),
		Clock:   clk,
		Gateway: gw,
	})
	return e, clk, gw
}

func TestBuyGenerator_ExactFunds(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.ledger.Add(10)

	require.True(t, e.BuyGenerator("basicAdBotFarm"))

	assert.Equal(t, 0.0, e.w.ledger.Current())
	assert.Equal(t, 1, e.w.generators.Owned("basicAdBotFarm"))
	assert.Equal(t, 11.0, e.w.generators.Cost("basicAdBotFarm"))
	assert.Contains(t, e.w.narrative.Viewed(), "first-bot-farm")
	assert.Len(t, e.EventLog().GetByType(events.EventTypeGeneratorPurchased), 1)
}

func TestBuyGenerator_Failures(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.ledger.Add(9)

	assert.False(t, e.BuyGenerator("basicAdBotFarm"))
	assert.False(t, e.BuyGenerator("doesNotExist"))
	assert.Equal(t, 9.0, e.w.ledger.Current())
	assert.Equal(t, 0, e.w.generators.Owned("basicAdBotFarm"))
	assert.Empty(t, e.EventLog().Replay())
}

func TestBuyUpgrade_RequiresOwnership(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.ledger.Add(1000)

	assert.False(t, e.BuyUpgrade("adBotOverclock"), "needs 5 farms")

	e.w.generators.SetOwned("basicAdBotFarm", 5)
	require.True(t, e.BuyUpgrade("adBotOverclock"))
	assert.Equal(t, 900.0, e.w.ledger.Current())
	assert.False(t, e.BuyUpgrade("adBotOverclock"), "already purchased")
}

func TestTick_ProducesOverElapsedTime(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	e.w.generators.SetOwned("basicAdBotFarm", 3)

	clk.Advance(2 * time.Second)
	e.Tick()

	assert.InDelta(t, 6.0, e.w.ledger.Current(), 1e-9)
	assert.InDelta(t, 6.0, e.w.ledger.Lifetime(), 1e-9)
}

func TestTick_FiresContentUnitsOnce(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	e.w.ledger.Add(150)

	var fired []string
	e.SubscribeNarrative(func(ev narrative.Event) { fired = append(fired, ev.ID) })

	clk.Advance(100 * time.Millisecond)
	e.Tick()
	clk.Advance(100 * time.Millisecond)
	e.Tick()

	assert.Equal(t, []string{"hundred-units"}, fired)
	assert.Equal(t, 150.0, e.lastContentUnitsCheck)
}

func TestTick_TimeElapsedAndTask(t *testing.T) {
	e, clk, _ := newTestEngine(t)

	clk.Advance(10 * time.Minute)
	e.Tick()

	assert.Contains(t, e.w.narrative.Viewed(), "ten-minutes")
	assert.Equal(t, 100.0, e.w.ledger.Current(), "task reward paid once")
	assert.Len(t, e.EventLog().GetByType(events.EventTypeTaskCompleted), 1)

	state := e.State()
	assert.Equal(t, int64(0), state.Task.ElapsedMs)
	assert.False(t, state.Task.IsComplete)
}

func TestClick_UsesPrestigeMultiplier(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.prestige.SetLevel(2)

	gain := e.Click()

	assert.InDelta(t, 1.5625, gain, 1e-9)
	assert.InDelta(t, 1.5625, e.w.ledger.Current(), 1e-9)
}

func TestPrestige_ResetProtocol(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.ledger.Add(500)
	e.w.generators.SetOwned("basicAdBotFarm", 5)
	e.w.upgrades.MarkPurchased("adBotOverclock")
	e.w.ledger.AddResource(content.ComputeCycles, 40)

	assert.False(t, e.Prestige(), "below threshold")

	e.w.ledger.Add(500)
	require.True(t, e.w.prestige.CanPrestige(e.w.ledger))

	var fired []string
	e.SubscribeNarrative(func(ev narrative.Event) { fired = append(fired, ev.ID) })
	require.True(t, e.Prestige())

	assert.Equal(t, 1, e.w.prestige.Level())
	assert.Equal(t, 10000.0, e.w.prestige.Threshold())
	assert.Equal(t, 0.0, e.w.ledger.Current())
	assert.Equal(t, 1000.0, e.w.ledger.Lifetime())
	assert.Equal(t, 0.0, e.w.ledger.Amount(content.ComputeCycles), "secondary resources reset too")
	assert.Equal(t, 40.0, e.w.ledger.LifetimeOf(content.ComputeCycles))
	assert.Equal(t, 0, e.w.generators.Owned("basicAdBotFarm"))
	assert.Empty(t, e.w.upgrades.PurchasedIDs())
	assert.Equal(t, 0.0, e.lastContentUnitsCheck)

	assert.Equal(t, []string{"first-rebrand"}, fired)
	assert.Contains(t, e.w.narrative.Viewed(), "first-rebrand", "viewed survives prestige")
	assert.Empty(t, e.w.narrative.Pending(), "pending queue cleared")
}

func TestNextPendingEvent_FIFO(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.ledger.Add(1000)
	e.Tick()

	first, ok := e.NextPendingEvent()
	require.True(t, ok)
	second, ok := e.NextPendingEvent()
	require.True(t, ok)
	assert.Equal(t, "hundred-units", first.ID, "catalog order on equal priority")
	assert.Equal(t, "thousand-units", second.ID)

	_, ok = e.NextPendingEvent()
	assert.False(t, ok)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	e.w.ledger.Add(20000)
	require.True(t, e.BuyGenerator("basicAdBotFarm"))
	require.True(t, e.BuyGenerator("serverRack"))
	e.w.generators.SetOwned("basicAdBotFarm", 5)
	require.True(t, e.BuyUpgrade("adBotOverclock"))
	clk.Advance(3 * time.Second)
	e.Tick()

	before := e.Snapshot()
	data, err := save.Encode(before)
	require.NoError(t, err)

	decoded, err := save.Decode(data, clk.Now())
	require.NoError(t, err)

	other, _, _ := newTestEngine(t)
	other.Restore(decoded)
	after := other.Snapshot()

	after.Timestamp = before.Timestamp
	assert.Equal(t, before, after)
	assert.Equal(t, e.w.narrative.Viewed(), other.w.narrative.Viewed())

	require.Greater(t, e.w.ledger.LifetimeOf(content.ComputeCycles), 0.0)
	for _, st := range e.w.ledger.States() {
		assert.Equal(t, e.w.ledger.Amount(st.ID), other.w.ledger.Amount(st.ID), st.ID)
		assert.Equal(t, e.w.ledger.LifetimeOf(st.ID), other.w.ledger.LifetimeOf(st.ID), st.ID)
	}
}

func TestRestore_ReplacesLifetimeTotals(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.w.ledger.AddResource(content.ComputeCycles, 75)

	e.Restore(save.Snapshot{
		Version:           save.Version,
		Generators:        map[string]save.GeneratorState{},
		LifetimeResources: map[string]float64{content.UserAttention: 12},
	})

	assert.Equal(t, 0.0, e.w.ledger.LifetimeOf(content.ComputeCycles), "absent from the save")
	assert.Equal(t, 12.0, e.w.ledger.LifetimeOf(content.UserAttention))
}

func TestSaveNowAndLoadSave(t *testing.T) {
	e, _, gw := newTestEngine(t)
	e.w.ledger.Add(42)

	require.True(t, e.SaveNow(context.Background()))
	require.NotNil(t, gw.snap)
	assert.Equal(t, 42.0, gw.snap.ContentUnits)

	fresh := NewEngine(Options{Catalog: content.Default(), Clock: clock.NewFake(epoch), Gateway: gw})
	require.True(t, fresh.LoadSave(context.Background()))
	assert.Equal(t, 42.0, fresh.w.ledger.Current())

	gw.failing = true
	assert.False(t, e.Flush(context.Background()))
}

func TestResetProgress(t *testing.T) {
	e, _, gw := newTestEngine(t)
	e.w.ledger.Add(5000)
	e.w.prestige.SetLevel(3)
	e.Tick()
	require.True(t, e.SaveNow(context.Background()))

	require.True(t, e.ResetProgress(context.Background()))

	assert.Nil(t, gw.snap)
	assert.Equal(t, 0.0, e.w.ledger.Current())
	assert.Equal(t, 0.0, e.w.ledger.Lifetime())
	assert.Equal(t, 0, e.w.prestige.Level())
	assert.Empty(t, e.w.narrative.Viewed())
	assert.Equal(t, narrative.InitialStability, e.w.narrative.Stability())
}

func TestStart_GameStartFiresOncePerProcess(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	e.Start(ctx)
	assert.True(t, e.Running())
	e.Stop()
	assert.False(t, e.Running())
	e.Start(ctx)
	e.Stop()

	assert.Len(t, e.EventLog().GetByType(events.EventTypeGameStarted), 1)
	assert.Equal(t, []string{"first-upload"}, e.w.narrative.Viewed())
}

func TestSubscribe_ReceivesProjection(t *testing.T) {
	e, _, _ := newTestEngine(t)

	var got []UIState
	e.Subscribe(func(s UIState) { got = append(got, s) })

	e.w.ledger.Add(10)
	e.BuyGenerator("basicAdBotFarm")

	require.Len(t, got, 1)
	state := got[0]
	assert.Equal(t, 0.0, state.Currency)
	assert.Equal(t, "0.00", state.CurrencyFormatted)
	assert.InDelta(t, 1.0, state.ProductionRate, 1e-9)
	assert.Equal(t, 1, state.Generators[0].Owned)
	assert.Equal(t, 11.0, state.Generators[0].Cost)
	assert.Equal(t, 1000.0, state.Prestige.Threshold)
	assert.InDelta(t, 1.25, state.Prestige.NextMultiplier, 1e-9)
	assert.Len(t, state.Resources, 3)
}

func TestPublish_DropsStaleProjections(t *testing.T) {
	e, clk, _ := newTestEngine(t)

	var seqs []uint64
	e.Subscribe(func(s UIState) { seqs = append(seqs, s.Seq) })

	e.w.ledger.Add(10)
	stale := e.State()
	require.True(t, e.BuyGenerator("basicAdBotFarm"))
	clk.Advance(time.Second)
	e.Tick()

	// A projection taken before the purchase arrives late.
	e.publish(stale)

	require.Len(t, seqs, 2)
	assert.Less(t, seqs[0], seqs[1])
	assert.Greater(t, seqs[0], stale.Seq)
}
