// Package storage provides the persistence layer for the idle server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a failure of the storage medium itself.
var ErrUnavailable = errors.New("storage unavailable")

// EventRecord mirrors the audit event for persistence.
// The domain packages should NOT import this; use interfaces instead.
type EventRecord struct {
	ID            string    `json:"id" db:"id"`
	Slot          string    `json:"slot" db:"slot"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
	EventType     string    `json:"event_type" db:"event_type"`
	ActorID       string    `json:"actor_id" db:"actor_id"`
	TargetID      string    `json:"target_id" db:"target_id"`
	Payload       string    `json:"payload" db:"payload"` // JSON
	PrestigeLevel int       `json:"prestige_level" db:"prestige_level"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event EventRecord) error

	// GetBySlot retrieves the newest events of a save slot, oldest first.
	GetBySlot(ctx context.Context, slot string, limit int) ([]EventRecord, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, slot, eventType string) ([]EventRecord, error)
}
