package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MRamiBalles/ContentCollapse/internal/events"
)

const eventColumns = `id, slot, timestamp, event_type, actor_id, target_id, payload, prestige_level`

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sqlx.DB
}

func NewSQLiteEventRepository(db *sqlx.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event EventRecord) error {
	query := `INSERT INTO events (` + eventColumns + `)
		VALUES (:id, :slot, :timestamp, :event_type, :actor_id, :target_id, :payload, :prestige_level)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) GetBySlot(ctx context.Context, slot string, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `SELECT * FROM (
		SELECT ` + eventColumns + `, rowid AS seq FROM events WHERE slot = ? ORDER BY rowid DESC LIMIT ?
	) ORDER BY seq ASC`

	var rows []struct {
		EventRecord
		Seq int64 `db:"seq"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, slot, limit); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	out := make([]EventRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.EventRecord)
	}
	return out, nil
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, slot, eventType string) ([]EventRecord, error) {
	var out []EventRecord
	query := `SELECT ` + eventColumns + ` FROM events WHERE slot = ? AND event_type = ? ORDER BY rowid ASC`
	if err := r.db.SelectContext(ctx, &out, query, slot, eventType); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return out, nil
}

// EventPersister adapts an EventRepository to the events.EventPersister contract.
type EventPersister struct {
	repo EventRepository
	slot string
}

// NewEventPersister writes audit events into slot.
func NewEventPersister(repo EventRepository, slot string) *EventPersister {
	return &EventPersister{repo: repo, slot: slot}
}

// Append implements events.EventPersister.
func (p *EventPersister) Append(event events.GameEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.repo.Append(context.Background(), EventRecord{
		ID:            event.ID,
		Slot:          p.slot,
		Timestamp:     event.Timestamp,
		EventType:     string(event.Type),
		ActorID:       event.ActorID,
		TargetID:      event.TargetID,
		Payload:       string(payload),
		PrestigeLevel: event.PrestigeLevel,
	})
}
