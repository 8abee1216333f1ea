package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector()
	c.RecordTick(2 * time.Millisecond)
	c.RecordTick(4 * time.Millisecond)
	c.RecordSave(true, time.Millisecond)
	c.RecordSave(false, time.Millisecond)
	c.RecordNarrative(3)

	snap := c.Snapshot()

	tick := snap["tick"].(map[string]any)
	assert.Equal(t, int64(2), tick["count"])
	assert.InDelta(t, 3.0, tick["avg_latency_ms"], 1e-9)
	assert.InDelta(t, 4.0, tick["max_latency_ms"], 1e-9)

	persistence := snap["persistence"].(map[string]any)
	assert.Equal(t, int64(1), persistence["saves_ok"])
	assert.Equal(t, int64(1), persistence["saves_failed"])

	economy := snap["economy"].(map[string]any)
	assert.Equal(t, int64(3), economy["narrative_fired"])
}

func TestPrometheusHandler(t *testing.T) {
	c := NewCollector()
	c.RecordGeneratorPurchase()
	c.RecordWSConnection(1)

	rec := httptest.NewRecorder()
	c.PrometheusHandler()(rec, httptest.NewRequest("GET", "/metrics/prom", nil))

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `idle_purchases_total{kind="generator"} 1`))
	assert.True(t, strings.Contains(body, "idle_ws_connections 1"))
}
