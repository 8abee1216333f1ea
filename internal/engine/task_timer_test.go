package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/resource"
)

func TestTaskTimer_Progress(t *testing.T) {
	timer := NewTaskTimer(time.Minute, 100, epoch)

	p := timer.Progress(epoch.Add(15 * time.Second))
	assert.Equal(t, int64(15000), p.ElapsedMs)
	assert.Equal(t, int64(45000), p.RemainingMs)
	assert.InDelta(t, 25.0, p.Percent, 1e-9)
	assert.False(t, p.IsComplete)

	p = timer.Progress(epoch.Add(2 * time.Minute))
	assert.Equal(t, int64(0), p.RemainingMs)
	assert.Equal(t, 100.0, p.Percent)
	assert.True(t, p.IsComplete)
}

func TestTaskTimer_Complete(t *testing.T) {
	ledger := resource.NewLedger("cu", nil)
	timer := NewTaskTimer(time.Minute, 100, epoch)

	assert.False(t, timer.Complete(epoch.Add(59*time.Second), ledger))
	assert.Equal(t, 0.0, ledger.Current())

	done := epoch.Add(time.Minute)
	assert.True(t, timer.Complete(done, ledger))
	assert.Equal(t, 100.0, ledger.Current())
	assert.Equal(t, done, timer.StartTime())
	assert.False(t, timer.Complete(done, ledger), "timer restarted")
}
