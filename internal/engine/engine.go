package engine

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/content"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/generator"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/upgrade"
	"github.com/MRamiBalles/ContentCollapse/internal/events"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/config"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/metrics"
)

// saveTimeout bounds one autosave round trip.
const saveTimeout = 2 * time.Second

// Options wires an Engine. Only Catalog is required.
type Options struct {
	Catalog  content.Catalog
	Config   *config.Config
	Clock    clock.Clock
	Gateway  save.Gateway
	EventLog *events.EventLog
	Metrics  *metrics.Collector
	Logger   *logger.Logger
}

// Engine is the single owner of game state. Every mutation, from the tick loop
// or from a player action, runs under its mutex, so actions never interleave with a tick.
type Engine struct {
	mu sync.Mutex
	w  world

	cfg      *config.Config
	clock    clock.Clock
	gateway  save.Gateway
	eventLog *events.EventLog
	metrics  *metrics.Collector
	logger   *logger.Logger
	ticker   *GameClock

	hasTriggeredGameStart bool
	lastContentUnitsCheck float64
	lastTick              time.Time

	// seq numbers projections; publish drops any older than the last delivered.
	seq uint64

	subMu       sync.Mutex
	subscribers []func(UIState)
	pubMu       sync.Mutex
	lastSeq     uint64
}

// NewEngine builds a fresh game from the catalog.
func NewEngine(opts Options) *Engine {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.EventLog == nil {
		opts.EventLog = events.NewEventLog(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	now := opts.Clock.Now()
	gens := generator.NewCatalog(opts.Catalog.Generators)

	e := &Engine{
		w: world{
			ledger:     resource.NewLedger(opts.Catalog.Primary, opts.Catalog.Resources),
			generators: gens,
			upgrades:   upgrade.NewCatalog(opts.Catalog.Upgrades, gens),
			prestige:   NewPrestigeSystem(),
			narrative:  narrative.NewEngine(opts.Catalog.Events, now),
			task:       NewTaskTimer(opts.Config.TaskDuration, opts.Config.TaskReward, now),
			production: NewProductionSystem(),
		},
		cfg:      opts.Config,
		clock:    opts.Clock,
		gateway:  opts.Gateway,
		eventLog: opts.EventLog,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		lastTick: now,
	}
	e.ticker = NewGameClock(opts.Config.TickInterval, opts.Config.AutosaveInterval, e.Tick, e.autosave, opts.Logger)
	return e
}

// Start runs the clock and, once per process, fires the gameStart trigger.
func (e *Engine) Start(ctx context.Context) {
	started := e.ticker.Start(ctx)

	e.mu.Lock()
	now := e.clock.Now()
	if started {
		e.lastTick = now
	}
	if !e.hasTriggeredGameStart {
		e.hasTriggeredGameStart = true
		e.record(events.EventTypeGameStarted, events.ActorSystem, "", nil)
		e.fire(narrative.On(narrative.TriggerGameStart))
	}
	state := e.projectAt(true, now)
	e.mu.Unlock()

	e.publish(state)
}

// Stop halts the clock. No tick runs after Stop returns.
func (e *Engine) Stop() {
	if e.ticker.Stop() {
		e.publish(e.State())
	}
}

// Running reports whether the clock is running.
func (e *Engine) Running() bool {
	return e.ticker.Running()
}

// Tick advances the simulation to the clock's current time. The game clock
// calls it on every interval; tests and headless runners call it directly.
func (e *Engine) Tick() {
	began := time.Now()

	e.mu.Lock()
	now := e.clock.Now()
	e.step(now)
	state := e.projectAt(e.ticker.Running(), now)
	e.mu.Unlock()

	e.metrics.RecordTick(time.Since(began))
	e.publish(state)
}

// step is one tick: production, task payout, narrative checks, decay.
func (e *Engine) step(now time.Time) {
	dt := now.Sub(e.lastTick)
	e.lastTick = now

	report := e.w.production.Compute(e.w.ledger, e.w.generators, e.w.upgrades, e.w.prestige.Multiplier())
	e.w.production.Apply(e.w.ledger, report, dt)

	if e.w.task.Complete(now, e.w.ledger) {
		e.metrics.RecordTaskCompleted()
		e.record(events.EventTypeTaskCompleted, events.ActorSystem, "", map[string]float64{"reward": e.cfg.TaskReward})
	}

	e.checkContentUnits()
	e.fire(narrative.On(narrative.TriggerTimeElapsed).WithValue(e.w.narrative.Elapsed(now)))

	e.w.ledger.ApplyDecay()
}

// checkContentUnits fires the contentUnits trigger when the floor of the
// currency rises above the watermark.
func (e *Engine) checkContentUnits() {
	current := e.w.ledger.Current()
	if floor := math.Floor(current); floor > e.lastContentUnitsCheck {
		e.lastContentUnitsCheck = floor
		e.fire(narrative.On(narrative.TriggerContentUnits).WithValue(current))
	}
}

// fire runs a narrative signal and audits what fired. Caller holds e.mu.
func (e *Engine) fire(s narrative.Signal) {
	fired := e.w.narrative.CheckTrigger(s)
	if len(fired) == 0 {
		return
	}
	e.metrics.RecordNarrative(len(fired))
	for _, ev := range fired {
		e.record(events.EventTypeNarrativeFired, events.ActorSystem, ev.ID, map[string]any{
			"title":            ev.Title,
			"priority":         ev.Priority,
			"stability_impact": ev.StabilityImpact,
		})
		e.logger.Event("NARRATIVE", "SYSTEM", ev.Title)
	}
}

// record appends to the audit log. Caller holds e.mu.
func (e *Engine) record(t events.EventType, actor, target string, payload any) {
	e.eventLog.Append(events.GameEvent{
		Type:          t,
		ActorID:       actor,
		TargetID:      target,
		Payload:       payload,
		PrestigeLevel: e.w.prestige.Level(),
	})
}

// Click adds one manual click of currency and returns the amount granted.
func (e *Engine) Click() float64 {
	e.mu.Lock()
	gain := e.cfg.ClickValue * e.w.prestige.Multiplier()
	e.w.ledger.Add(gain)
	e.checkContentUnits()
	state := e.projectLocked()
	e.mu.Unlock()

	e.publish(state)
	return gain
}

// BuyGenerator purchases one unit. False on unknown ID or insufficient funds.
func (e *Engine) BuyGenerator(id string) bool {
	e.mu.Lock()
	cost := e.w.generators.Cost(id)
	ok := e.w.generators.Purchase(id, e.w.ledger)
	if ok {
		e.metrics.RecordGeneratorPurchase()
		e.record(events.EventTypeGeneratorPurchased, events.ActorPlayer, id, map[string]any{
			"cost":  cost,
			"owned": e.w.generators.Owned(id),
		})
		e.fire(narrative.On(narrative.TriggerGeneratorPurchase).WithCondition(id))
	}
	state := e.projectLocked()
	e.mu.Unlock()

	e.publish(state)
	return ok
}

// BuyUpgrade purchases an upgrade. False on any unmet precondition.
func (e *Engine) BuyUpgrade(id string) bool {
	e.mu.Lock()
	ok := e.w.upgrades.Purchase(id, e.w.ledger)
	if ok {
		u, _ := e.w.upgrades.Get(id)
		e.metrics.RecordUpgradePurchase()
		e.record(events.EventTypeUpgradePurchased, events.ActorPlayer, id, map[string]any{
			"cost":   u.Cost,
			"effect": u.EffectType,
			"value":  u.EffectValue,
		})
		e.fire(narrative.On(narrative.TriggerUpgrade).WithCondition(id))
	}
	state := e.projectLocked()
	e.mu.Unlock()

	e.publish(state)
	return ok
}

// Prestige performs the reset protocol. False when the threshold is not met.
func (e *Engine) Prestige() bool {
	e.mu.Lock()
	if !e.w.prestige.CanPrestige(e.w.ledger) {
		e.mu.Unlock()
		return false
	}

	spent := e.w.ledger.Current()
	e.fire(narrative.On(narrative.TriggerPrestige).WithValue(float64(e.w.prestige.Level())))
	old := e.w.prestige.advance()

	e.w.ledger.Reset()
	e.w.generators.ResetAll()
	e.w.upgrades.ResetAll()
	e.w.narrative.ClearPending()
	e.lastContentUnitsCheck = 0

	e.metrics.RecordPrestige()
	e.record(events.EventTypePrestige, events.ActorPlayer, "", map[string]any{
		"from_level": old,
		"currency":   spent,
		"multiplier": e.w.prestige.Multiplier(),
	})
	e.logger.Event("PRESTIGE", "PLAYER", resource.FormatNumber(spent)+" content units rebranded")

	state := e.projectLocked()
	e.mu.Unlock()

	e.publish(state)
	return true
}

// NextPendingEvent pops the head of the narrative display queue.
func (e *Engine) NextPendingEvent() (narrative.Event, bool) {
	e.mu.Lock()
	ev, ok := e.w.narrative.NextPending()
	state := e.projectLocked()
	e.mu.Unlock()

	if ok {
		e.publish(state)
	}
	return ev, ok
}

// State returns the current UI projection.
func (e *Engine) State() UIState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectLocked()
}

// Subscribe registers a UI state listener. Listeners run outside the engine
// lock, in registration order, after every tick and action.
func (e *Engine) Subscribe(fn func(UIState)) {
	e.subMu.Lock()
	e.subscribers = append(e.subscribers, fn)
	e.subMu.Unlock()
}

// SubscribeNarrative registers a narrative listener. It runs while the engine
// holds its lock and must not call back into the engine.
func (e *Engine) SubscribeNarrative(fn narrative.Subscriber) {
	e.mu.Lock()
	e.w.narrative.Subscribe(fn)
	e.mu.Unlock()
}

// EventLog exposes the audit log for the history endpoint.
func (e *Engine) EventLog() *events.EventLog {
	return e.eventLog
}

func (e *Engine) projectLocked() UIState {
	return e.projectAt(e.ticker.Running(), e.clock.Now())
}

// projectAt must run under e.mu.
func (e *Engine) projectAt(running bool, now time.Time) UIState {
	e.seq++
	state := project(&e.w, running, now)
	state.Seq = e.seq
	return state
}

// publish delivers state unless a newer projection already went out. Ticks and
// actions unlock before publishing, so they can arrive here out of order.
func (e *Engine) publish(state UIState) {
	e.pubMu.Lock()
	defer e.pubMu.Unlock()
	if state.Seq <= e.lastSeq {
		return
	}
	e.lastSeq = state.Seq

	e.subMu.Lock()
	subs := slices.Clone(e.subscribers)
	e.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
