package narrative

import (
	"sort"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/rules"
)

// InitialStability is the societal stability of a fresh game.
const InitialStability = 100.0

// Subscriber receives every fired event, synchronously and in registration order.
// Subscribers must not mutate narrative state from inside the callback.
type Subscriber func(Event)

// Engine matches signals against the catalog and tracks the consequences.
type Engine struct {
	events      []*Event
	viewed      []string
	stability   float64
	pending     []Event
	startTime   time.Time
	subscribers []Subscriber
}

// NewEngine copies the catalog (insertion order is catalog order) with nothing viewed.
func NewEngine(catalog []Event, start time.Time) *Engine {
	e := &Engine{
		events:    make([]*Event, 0, len(catalog)),
		stability: InitialStability,
		startTime: start,
	}
	for _, ev := range catalog {
		ev := ev
		ev.Viewed = false
		e.events = append(e.events, &ev)
	}
	return e
}

// Subscribe registers a listener.
func (e *Engine) Subscribe(s Subscriber) {
	e.subscribers = append(e.subscribers, s)
}

// CheckTrigger fires every unviewed event matching the signal, highest priority
// first (catalog order on ties), and returns the fired events in firing order.
func (e *Engine) CheckTrigger(s Signal) []Event {
	var eligible []*Event
	for _, ev := range e.events {
		if ev.matches(s) {
			eligible = append(eligible, ev)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Priority > eligible[j].Priority
	})

	fired := make([]Event, 0, len(eligible))
	for _, ev := range eligible {
		ev.Viewed = true
		e.viewed = append(e.viewed, ev.ID)
		e.stability = rules.ClampStability(e.stability + ev.StabilityImpact)
		e.pending = append(e.pending, *ev)

		for _, sub := range e.subscribers {
			sub(*ev)
		}
		fired = append(fired, *ev)
	}
	return fired
}

// NextPending pops the head of the display queue.
func (e *Engine) NextPending() (Event, bool) {
	if len(e.pending) == 0 {
		return Event{}, false
	}
	head := e.pending[0]
	e.pending = e.pending[1:]
	return head, true
}

// ClearPending empties the display queue. Viewed events and stability are kept.
func (e *Engine) ClearPending() {
	e.pending = nil
}

// Pending returns a copy of the display queue.
func (e *Engine) Pending() []Event {
	return append([]Event(nil), e.pending...)
}

// Viewed returns the viewed event IDs in firing order.
func (e *Engine) Viewed() []string {
	return append([]string(nil), e.viewed...)
}

// Stability returns the societal stability score in [0, 100].
func (e *Engine) Stability() float64 { return e.stability }

// StartTime is the anchor for timeElapsed triggers.
func (e *Engine) StartTime() time.Time { return e.startTime }

// Elapsed returns seconds since the start time.
func (e *Engine) Elapsed(now time.Time) float64 {
	return now.Sub(e.startTime).Seconds()
}

// Events returns copies of the catalog with viewed flags.
func (e *Engine) Events() []Event {
	out := make([]Event, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, *ev)
	}
	return out
}

// Restore marks the given IDs viewed without firing them or notifying subscribers.
// Unknown IDs are dropped.
func (e *Engine) Restore(viewed []string, stability float64, start time.Time) {
	e.reset(start)
	e.stability = rules.ClampStability(stability)

	index := make(map[string]*Event, len(e.events))
	for _, ev := range e.events {
		index[ev.ID] = ev
	}
	for _, id := range viewed {
		ev, ok := index[id]
		if !ok || ev.Viewed {
			continue
		}
		ev.Viewed = true
		e.viewed = append(e.viewed, id)
	}
}

// Reset returns the engine to a fresh game anchored at start. Subscribers are kept.
func (e *Engine) Reset(start time.Time) {
	e.reset(start)
}

func (e *Engine) reset(start time.Time) {
	for _, ev := range e.events {
		ev.Viewed = false
	}
	e.viewed = nil
	e.pending = nil
	e.stability = InitialStability
	e.startTime = start
}
