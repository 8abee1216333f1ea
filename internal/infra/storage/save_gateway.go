package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

// SQLiteSaveGateway stores one snapshot per save slot. It implements save.Gateway:
// every failure is logged and reported as false or absent.
type SQLiteSaveGateway struct {
	db     *sqlx.DB
	slot   string
	clock  clock.Clock
	logger *logger.Logger
}

// NewSQLiteSaveGateway binds a gateway to one slot.
func NewSQLiteSaveGateway(db *sqlx.DB, slot string, clk clock.Clock, log *logger.Logger) *SQLiteSaveGateway {
	return &SQLiteSaveGateway{db: db, slot: slot, clock: clk, logger: log}
}

type saveRow struct {
	Version   string `db:"version"`
	Timestamp int64  `db:"timestamp"`
	Payload   string `db:"payload"`
}

func (g *SQLiteSaveGateway) Save(ctx context.Context, snap save.Snapshot) bool {
	n, err := g.write(ctx, snap)
	if err != nil {
		g.logger.Warnf("Save to slot %q failed: %v", g.slot, err)
		return false
	}
	g.logger.Event("SAVE", "SYSTEM", fmt.Sprintf("slot=%s size=%s", g.slot, humanize.Bytes(uint64(n))))
	return true
}

func (g *SQLiteSaveGateway) write(ctx context.Context, snap save.Snapshot) (int, error) {
	data, err := save.Encode(snap)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	query := `
		INSERT INTO saves (slot, version, timestamp, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			version=excluded.version,
			timestamp=excluded.timestamp,
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`
	if _, err := g.db.ExecContext(ctx, query, g.slot, snap.Version, snap.Timestamp, string(data), time.Now()); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return len(data), nil
}

func (g *SQLiteSaveGateway) Load(ctx context.Context) (save.Snapshot, bool) {
	var row saveRow
	err := g.db.GetContext(ctx, &row, `SELECT version, timestamp, payload FROM saves WHERE slot = ?`, g.slot)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return save.Snapshot{}, false
	case err != nil:
		g.logger.Warnf("Load from slot %q failed: %v", g.slot, err)
		return save.Snapshot{}, false
	}

	snap, err := save.Decode([]byte(row.Payload), g.clock.Now())
	if err != nil {
		g.logger.Warnf("Discarding save in slot %q: %v", g.slot, err)
		return save.Snapshot{}, false
	}
	return snap, true
}

func (g *SQLiteSaveGateway) HasSave(ctx context.Context) bool {
	var count int
	if err := g.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM saves WHERE slot = ?`, g.slot); err != nil {
		return false
	}
	return count > 0
}

func (g *SQLiteSaveGateway) Clear(ctx context.Context) bool {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, g.slot); err != nil {
		g.logger.Warnf("Clear of slot %q failed: %v", g.slot, err)
		return false
	}
	return true
}

func (g *SQLiteSaveGateway) Metadata(ctx context.Context) (save.Metadata, bool) {
	var row saveRow
	if err := g.db.GetContext(ctx, &row, `SELECT version, timestamp, '' AS payload FROM saves WHERE slot = ?`, g.slot); err != nil {
		return save.Metadata{}, false
	}
	return save.Metadata{Version: row.Version, Timestamp: row.Timestamp}, true
}
