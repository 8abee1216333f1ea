package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

func TestGameClock_NoTickAfterStop(t *testing.T) {
	var ticks, saves atomic.Int64
	c := NewGameClock(time.Millisecond, 3*time.Millisecond,
		func() { ticks.Add(1) },
		func() { saves.Add(1) },
		logger.Discard())

	require.True(t, c.Start(context.Background()))
	assert.False(t, c.Start(context.Background()), "start is idempotent")

	require.Eventually(t, func() bool { return ticks.Load() >= 3 && saves.Load() >= 1 },
		time.Second, time.Millisecond)

	require.True(t, c.Stop())
	assert.False(t, c.Running())
	after := ticks.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
	assert.False(t, c.Stop(), "stopping a stopped clock is a no-op")
}

func TestGameClock_ContextCancelStops(t *testing.T) {
	c := NewGameClock(time.Millisecond, time.Hour, func() {}, func() {}, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	require.True(t, c.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !c.Running() }, time.Second, time.Millisecond)
	assert.True(t, c.Start(context.Background()), "restartable after cancel")
	c.Stop()
}
