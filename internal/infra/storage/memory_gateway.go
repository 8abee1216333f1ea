package storage

import (
	"context"
	"sync"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
)

// MemoryGateway keeps the encoded snapshot in memory. It is used by headless
// scenarios and whenever no database is configured. Loads go through the
// same validation as the SQLite gateway.
type MemoryGateway struct {
	mu          sync.Mutex
	data        []byte
	clock       clock.Clock
	unavailable bool
}

func NewMemoryGateway(clk clock.Clock) *MemoryGateway {
	return &MemoryGateway{clock: clk}
}

// SetUnavailable simulates a missing or full storage medium.
func (g *MemoryGateway) SetUnavailable(v bool) {
	g.mu.Lock()
	g.unavailable = v
	g.mu.Unlock()
}

// Put stores raw bytes, bypassing encoding. Used to inject corrupt payloads.
func (g *MemoryGateway) Put(data []byte) {
	g.mu.Lock()
	g.data = append([]byte(nil), data...)
	g.mu.Unlock()
}

func (g *MemoryGateway) Save(_ context.Context, snap save.Snapshot) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return false
	}
	data, err := save.Encode(snap)
	if err != nil {
		return false
	}
	g.data = data
	return true
}

func (g *MemoryGateway) Load(context.Context) (save.Snapshot, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable || g.data == nil {
		return save.Snapshot{}, false
	}
	snap, err := save.Decode(g.data, g.clock.Now())
	if err != nil {
		return save.Snapshot{}, false
	}
	return snap, true
}

func (g *MemoryGateway) HasSave(context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.unavailable && g.data != nil
}

func (g *MemoryGateway) Clear(context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return false
	}
	g.data = nil
	return true
}

func (g *MemoryGateway) Metadata(ctx context.Context) (save.Metadata, bool) {
	snap, ok := g.Load(ctx)
	if !ok {
		return save.Metadata{}, false
	}
	return save.Metadata{Version: snap.Version, Timestamp: snap.Timestamp}, true
}
