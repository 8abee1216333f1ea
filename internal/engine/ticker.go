package engine

import (
	"context"
	"sync"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
)

// GameClock drives two fixed-interval loops from one goroutine: the simulation
// tick and the autosave. Both callbacks run on that goroutine, so they never overlap.
// It knows nothing about the economy, only time.
type GameClock struct {
	tickInterval     time.Duration
	autosaveInterval time.Duration
	onTick           func()
	onAutosave       func()
	logger           *logger.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewGameClock creates a stopped clock.
func NewGameClock(tick, autosave time.Duration, onTick, onAutosave func(), log *logger.Logger) *GameClock {
	return &GameClock{
		tickInterval:     tick,
		autosaveInterval: autosave,
		onTick:           onTick,
		onAutosave:       onAutosave,
		logger:           log,
	}
}

// Start moves the clock to running and spawns the loop. It reports whether
// the state changed; starting a running clock is a no-op.
func (c *GameClock) Start(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}

	c.running = true
	c.stopChan = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(ctx, c.stopChan, c.done)

	c.logger.Infof("Game clock started (tick=%s, autosave=%s)", c.tickInterval, c.autosaveInterval)
	return true
}

// Stop cancels both loops and waits for the loop goroutine to exit, so no
// callback runs after Stop returns. Must not be called from inside a callback.
func (c *GameClock) Stop() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return false
	}
	c.running = false
	close(c.stopChan)
	done := c.done
	c.mu.Unlock()

	<-done
	c.logger.Info("Game clock stopped.")
	return true
}

// Running reports whether the loops are active.
func (c *GameClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *GameClock) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()
	autosave := time.NewTicker(c.autosaveInterval)
	defer autosave.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if c.stopChan == stop {
				c.running = false
			}
			c.mu.Unlock()
			c.logger.Info("Game clock stopped by context.")
			return
		case <-stop:
			return
		case <-ticker.C:
			if stopped(stop) {
				return
			}
			c.onTick()
		case <-autosave.C:
			if stopped(stop) {
				return
			}
			c.onAutosave()
		}
	}
}

// stopped drops a tick that was already queued when Stop closed the channel.
func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
