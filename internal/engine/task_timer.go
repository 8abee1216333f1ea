package engine

import (
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
)

// TaskProgress is the derived state of the task timer.
type TaskProgress struct {
	ElapsedMs   int64   `json:"elapsed_ms"`
	RemainingMs int64   `json:"remaining_ms"`
	Percent     float64 `json:"percent"`
	IsComplete  bool    `json:"is_complete"`
	Reward      float64 `json:"reward"`
}

// TaskTimer is a free-running repeating reward, independent of the economy.
type TaskTimer struct {
	duration  time.Duration
	reward    float64
	startTime time.Time
}

// NewTaskTimer starts a timer at start.
func NewTaskTimer(duration time.Duration, reward float64, start time.Time) *TaskTimer {
	return &TaskTimer{duration: duration, reward: reward, startTime: start}
}

// Progress derives elapsed, remaining and completion at now.
func (t *TaskTimer) Progress(now time.Time) TaskProgress {
	elapsed := now.Sub(t.startTime)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := t.duration - elapsed
	if remaining < 0 {
		remaining = 0
	}

	percent := 100.0
	if t.duration > 0 {
		percent = min(100, 100*float64(elapsed)/float64(t.duration))
	}

	return TaskProgress{
		ElapsedMs:   elapsed.Milliseconds(),
		RemainingMs: remaining.Milliseconds(),
		Percent:     percent,
		IsComplete:  elapsed >= t.duration,
		Reward:      t.reward,
	}
}

// Complete grants the reward and restarts the timer. No-op unless complete.
func (t *TaskTimer) Complete(now time.Time, ledger *resource.Ledger) bool {
	if !t.Progress(now).IsComplete {
		return false
	}
	ledger.Add(t.reward)
	t.startTime = now
	return true
}

// StartTime returns the current cycle's start.
func (t *TaskTimer) StartTime() time.Time { return t.startTime }

// Restart begins a new cycle at start without paying out.
func (t *TaskTimer) Restart(start time.Time) { t.startTime = start }
