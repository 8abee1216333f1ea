// Package test - balance.go
// Headless balance scenarios: the engine driven by a fake clock and an
// in-memory save slot, checked against pacing and ordering expectations.
package test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MRamiBalles/ContentCollapse/internal/content"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/generator"
	"github.com/MRamiBalles/ContentCollapse/internal/engine"
	"github.com/MRamiBalles/ContentCollapse/internal/infra/storage"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/config"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

// scenarioStart anchors every simulated run.
var scenarioStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// TestResult captures the outcome of each scenario.
type TestResult struct {
	ScenarioName string
	Passed       bool
	Reason       string
	SimTime      time.Duration
}

// Scenario is one headless run.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, h *Harness) TestResult
}

// Harness is a fresh engine on a fake clock.
type Harness struct {
	Engine  *engine.Engine
	Clock   *clock.Fake
	Gateway *storage.MemoryGateway
	Catalog content.Catalog
	Config  *config.Config
}

// NewHarness builds an engine over catalog.
func NewHarness(catalog content.Catalog) *Harness {
	clk := clock.NewFake(scenarioStart)
	gw := storage.NewMemoryGateway(clk)
	cfg := config.Default()
	return &Harness{
		Engine:  newEngine(catalog, cfg, clk, gw),
		Clock:   clk,
		Gateway: gw,
		Catalog: catalog,
		Config:  cfg,
	}
}

func newEngine(catalog content.Catalog, cfg *config.Config, clk clock.Clock, gw *storage.MemoryGateway) *engine.Engine {
	return engine.NewEngine(engine.Options{
		Catalog: catalog,
		Config:  cfg,
		Clock:   clk,
		Gateway: gw,
	})
}

// Advance moves simulated time forward by d in one tick.
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Advance(d)
	h.Engine.Tick()
}

// Play simulates a player for up to limit: one click and one tick per second,
// buying input-free producers of the primary currency up to maxOwned, until done reports true.
func (h *Harness) Play(ctx context.Context, limit time.Duration, maxOwned int, done func(engine.UIState) bool) (time.Duration, bool) {
	var elapsed time.Duration
	for elapsed < limit {
		if ctx.Err() != nil {
			return elapsed, false
		}
		h.Engine.Click()
		h.Advance(time.Second)
		elapsed += time.Second

		state := h.Engine.State()
		if done(state) {
			return elapsed, true
		}
		for _, gen := range state.Generators {
			if h.buysStock(gen.Generator) && gen.Owned < maxOwned && gen.CanAfford {
				h.Engine.BuyGenerator(gen.ID)
			}
		}
	}
	return elapsed, false
}

func (h *Harness) buysStock(gen generator.Generator) bool {
	if len(gen.Inputs) > 0 {
		return false
	}
	for _, out := range gen.Outputs {
		if out.ResourceID == h.Catalog.Primary {
			return true
		}
	}
	return false
}

// Scenarios returns the default balance suite.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "First generator within a minute", Run: firstGenerator},
		{Name: "First prestige within two hours", Run: firstPrestige},
		{Name: "Narrative beats queue in firing order", Run: narrativeOrder},
		{Name: "Save survives a restart without offline credit", Run: saveRestart},
	}
}

func firstGenerator(ctx context.Context, h *Harness) TestResult {
	res := TestResult{ScenarioName: "First generator within a minute"}
	first := h.Catalog.Generators[0]

	var bought bool
	res.SimTime, bought = h.Play(ctx, time.Minute, 1, func(s engine.UIState) bool {
		return s.Generators[0].Owned > 0
	})
	if !bought {
		res.Reason = fmt.Sprintf("%s still unaffordable after %v", first.Name, res.SimTime)
		return res
	}

	h.Advance(10 * time.Second)
	if rate := h.Engine.State().ProductionRate; rate <= 0 {
		res.Reason = "no passive production after the first purchase"
		return res
	}
	res.Passed = true
	res.Reason = fmt.Sprintf("%s bought after %v", first.Name, res.SimTime)
	return res
}

func firstPrestige(ctx context.Context, h *Harness) TestResult {
	res := TestResult{ScenarioName: "First prestige within two hours"}

	var ready bool
	res.SimTime, ready = h.Play(ctx, 2*time.Hour, 10, func(s engine.UIState) bool {
		return s.Prestige.CanPrestige
	})
	if !ready {
		res.Reason = fmt.Sprintf("threshold not reached; stuck at %s", h.Engine.State().CurrencyFormatted)
		return res
	}

	before := h.Engine.State().Prestige
	if !h.Engine.Prestige() {
		res.Reason = "prestige refused at threshold"
		return res
	}
	after := h.Engine.State()
	switch {
	case after.Prestige.Level != before.Level+1:
		res.Reason = fmt.Sprintf("level %d -> %d", before.Level, after.Prestige.Level)
	case after.Currency != 0:
		res.Reason = "currency not reset"
	case h.Engine.Click() != h.Config.ClickValue*after.Prestige.GlobalMultiplier:
		res.Reason = "click ignores the prestige multiplier"
	default:
		res.Passed = true
		res.Reason = fmt.Sprintf("prestiged after %s of play at %s content units",
			humanize.RelTime(scenarioStart, scenarioStart.Add(res.SimTime), "", ""),
			humanize.Commaf(before.Threshold))
	}
	return res
}

func narrativeOrder(ctx context.Context, h *Harness) TestResult {
	res := TestResult{ScenarioName: "Narrative beats queue in firing order"}

	startCtx, cancel := context.WithCancel(ctx)
	h.Engine.Start(startCtx)
	h.Engine.Stop()
	cancel()

	for i := 0; i < 10; i++ {
		h.Engine.Click()
	}
	h.Engine.BuyGenerator(h.Catalog.Generators[0].ID)
	// One long tick crosses several currency milestones and the ten-minute mark at once.
	h.Advance(2000 * time.Second)
	res.SimTime = 2000 * time.Second

	var got []string
	for {
		ev, ok := h.Engine.NextPendingEvent()
		if !ok {
			break
		}
		got = append(got, ev.ID)
	}

	want := []string{"first-upload", "first-bot-farm", "hundred-units", "thousand-units", "ten-minutes"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		res.Reason = fmt.Sprintf("queue was %v, want %v", got, want)
		return res
	}
	res.Passed = true
	res.Reason = fmt.Sprintf("%d beats in order", len(got))
	return res
}

func saveRestart(ctx context.Context, h *Harness) TestResult {
	res := TestResult{ScenarioName: "Save survives a restart without offline credit"}

	res.SimTime, _ = h.Play(ctx, 3*time.Minute, 5, func(engine.UIState) bool { return false })
	if !h.Engine.SaveNow(ctx) {
		res.Reason = "save failed"
		return res
	}
	saved := h.Engine.Snapshot()

	h.Clock.Advance(8 * time.Hour)
	restarted := newEngine(h.Catalog, h.Config, h.Clock, h.Gateway)
	if !restarted.LoadSave(ctx) {
		res.Reason = "load failed"
		return res
	}

	loaded := restarted.Snapshot()
	switch {
	case loaded.ContentUnits != saved.ContentUnits:
		res.Reason = fmt.Sprintf("currency %s after restart, saved %s",
			humanize.Commaf(loaded.ContentUnits), humanize.Commaf(saved.ContentUnits))
	case len(loaded.Generators) != len(saved.Generators):
		res.Reason = "generator counts lost"
	case loaded.LifetimeContentUnits != saved.LifetimeContentUnits:
		res.Reason = "lifetime total drifted"
	default:
		res.Passed = true
		res.Reason = fmt.Sprintf("restored %s content units", humanize.Commaf(loaded.ContentUnits))
	}
	return res
}

// Suite runs scenarios, each on a fresh harness.
type Suite struct {
	catalog content.Catalog
	logger  *logger.Logger
	results []TestResult
}

// NewSuite prepares a suite over catalog.
func NewSuite(catalog content.Catalog, log *logger.Logger) *Suite {
	return &Suite{catalog: catalog, logger: log}
}

// Run executes every scenario and prints a verdict per scenario.
func (s *Suite) Run(ctx context.Context, scenarios []Scenario) []TestResult {
	for _, sc := range scenarios {
		result := sc.Run(ctx, NewHarness(s.catalog))
		result.ScenarioName = sc.Name
		s.results = append(s.results, result)

		if result.Passed {
			s.logger.Infof("PASS %s (%s)", sc.Name, result.Reason)
		} else {
			s.logger.Errorf("FAIL %s: %s", sc.Name, result.Reason)
		}
	}
	return s.results
}

// GetResults returns all results so far.
func (s *Suite) GetResults() []TestResult {
	return s.results
}
