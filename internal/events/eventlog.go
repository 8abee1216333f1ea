// Package events provides the audit trail of the economy: an append-only log
// of every purchase, prestige, narrative beat and reward.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeGameStarted        EventType = "GAME_STARTED"
	EventTypeGeneratorPurchased EventType = "GENERATOR_PURCHASED"
	EventTypeUpgradePurchased   EventType = "UPGRADE_PURCHASED"
	EventTypePrestige           EventType = "PRESTIGE"
	EventTypeNarrativeFired     EventType = "NARRATIVE_FIRED"
	EventTypeTaskCompleted      EventType = "TASK_COMPLETED"
	EventTypeProgressReset      EventType = "PROGRESS_RESET"
)

// ActorPlayer and ActorSystem tag who caused an event.
const (
	ActorPlayer = "PLAYER"
	ActorSystem = "SYSTEM"
)

// GameEvent represents an immutable record of an action in the game.
type GameEvent struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Type          EventType `json:"type"`
	ActorID       string    `json:"actor_id"`
	TargetID      string    `json:"target_id,omitempty"` // Generator, upgrade or narrative event ID
	Payload       any       `json:"payload,omitempty"`
	PrestigeLevel int       `json:"prestige_level"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
	onError   func(error)

	// Write-through queue, drained in append order by at most one goroutine.
	queue    []GameEvent
	draining bool
	inflight sync.WaitGroup
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// OnPersistError registers a callback for write-through failures.
func (el *EventLog) OnPersistError(fn func(error)) {
	el.mu.Lock()
	el.onError = fn
	el.mu.Unlock()
}

// Append adds a new event to the log. Missing IDs and timestamps are filled in.
func (el *EventLog) Append(event GameEvent) GameEvent {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	start := false
	if el.persister != nil {
		el.inflight.Add(1)
		el.queue = append(el.queue, event)
		start = !el.draining
		el.draining = true
	}
	el.mu.Unlock()

	// Tick handlers never wait on disk.
	if start {
		go el.drain()
	}
	return event
}

func (el *EventLog) drain() {
	for {
		el.mu.Lock()
		if len(el.queue) == 0 {
			el.draining = false
			el.mu.Unlock()
			return
		}
		event := el.queue[0]
		el.queue = el.queue[1:]
		persister, onError := el.persister, el.onError
		el.mu.Unlock()

		if err := persister.Append(event); err != nil && onError != nil {
			onError(err)
		}
		el.inflight.Done()
	}
}

// Wait blocks until every write-through started so far has finished.
func (el *EventLog) Wait() {
	el.inflight.Wait()
}

// GetByType returns all events of a specific type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Recent returns up to n of the newest events, oldest first.
func (el *EventLog) Recent(n int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	if n <= 0 || n > len(el.events) {
		n = len(el.events)
	}
	return append([]GameEvent(nil), el.events[len(el.events)-n:]...)
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return append([]GameEvent(nil), el.events...)
}

// Len returns the number of events in the log.
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
