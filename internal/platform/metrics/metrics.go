// Package metrics provides observability for the idle server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance and economy metrics. Safe for concurrent use.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Persistence metrics
	SavesOK        int64
	SavesFailed    int64
	SaveLatencySum int64
	LoadsOK        int64
	LoadsMissed    int64

	// Economy metrics
	GeneratorPurchases int64
	UpgradePurchases   int64
	Prestiges          int64
	NarrativeFired     int64
	TasksCompleted     int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSDropped           int64

	StartTime time.Time
	mu        sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now()}
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))
	storeMax(&c.TickLatencyMax, int64(latency))

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordSave records a save attempt.
func (c *Collector) RecordSave(ok bool, latency time.Duration) {
	if ok {
		atomic.AddInt64(&c.SavesOK, 1)
	} else {
		atomic.AddInt64(&c.SavesFailed, 1)
	}
	atomic.AddInt64(&c.SaveLatencySum, int64(latency))
}

// RecordLoad records a load attempt; a miss is absent or invalid data.
func (c *Collector) RecordLoad(found bool) {
	if found {
		atomic.AddInt64(&c.LoadsOK, 1)
	} else {
		atomic.AddInt64(&c.LoadsMissed, 1)
	}
}

// RecordGeneratorPurchase counts a successful generator purchase.
func (c *Collector) RecordGeneratorPurchase() { atomic.AddInt64(&c.GeneratorPurchases, 1) }

// RecordUpgradePurchase counts a successful upgrade purchase.
func (c *Collector) RecordUpgradePurchase() { atomic.AddInt64(&c.UpgradePurchases, 1) }

// RecordPrestige counts a prestige reset.
func (c *Collector) RecordPrestige() { atomic.AddInt64(&c.Prestiges, 1) }

// RecordNarrative counts fired narrative events.
func (c *Collector) RecordNarrative(n int) { atomic.AddInt64(&c.NarrativeFired, int64(n)) }

// RecordTaskCompleted counts task timer payouts.
func (c *Collector) RecordTaskCompleted() { atomic.AddInt64(&c.TasksCompleted, 1) }

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSDrop records a message dropped because a buffer was full.
func (c *Collector) RecordWSDrop() {
	atomic.AddInt64(&c.WSDropped, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]any {
	c.mu.RLock()
	lastTick := c.LastTickTime
	c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	saves := atomic.LoadInt64(&c.SavesOK) + atomic.LoadInt64(&c.SavesFailed)

	var tickAvg, saveAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if saves > 0 {
		saveAvg = float64(atomic.LoadInt64(&c.SaveLatencySum)) / float64(saves) / 1e6
	}

	return map[string]any{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]any{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      lastTick.Format(time.RFC3339),
		},

		"persistence": map[string]any{
			"saves_ok":        atomic.LoadInt64(&c.SavesOK),
			"saves_failed":    atomic.LoadInt64(&c.SavesFailed),
			"avg_save_lat_ms": saveAvg,
			"loads_ok":        atomic.LoadInt64(&c.LoadsOK),
			"loads_missed":    atomic.LoadInt64(&c.LoadsMissed),
		},

		"economy": map[string]any{
			"generator_purchases": atomic.LoadInt64(&c.GeneratorPurchases),
			"upgrade_purchases":   atomic.LoadInt64(&c.UpgradePurchases),
			"prestiges":           atomic.LoadInt64(&c.Prestiges),
			"narrative_fired":     atomic.LoadInt64(&c.NarrativeFired),
			"tasks_completed":     atomic.LoadInt64(&c.TasksCompleted),
		},

		"websocket": map[string]any{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"dropped":            atomic.LoadInt64(&c.WSDropped),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter(w, "idle_tick_count", "Total tick cycles", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP idle_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE idle_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "idle_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP idle_saves_total Save attempts by outcome\n")
		fmt.Fprintf(w, "# TYPE idle_saves_total counter\n")
		fmt.Fprintf(w, "idle_saves_total{outcome=\"ok\"} %d\n", atomic.LoadInt64(&c.SavesOK))
		fmt.Fprintf(w, "idle_saves_total{outcome=\"failed\"} %d\n\n", atomic.LoadInt64(&c.SavesFailed))

		fmt.Fprintf(w, "# HELP idle_purchases_total Successful purchases by kind\n")
		fmt.Fprintf(w, "# TYPE idle_purchases_total counter\n")
		fmt.Fprintf(w, "idle_purchases_total{kind=\"generator\"} %d\n", atomic.LoadInt64(&c.GeneratorPurchases))
		fmt.Fprintf(w, "idle_purchases_total{kind=\"upgrade\"} %d\n\n", atomic.LoadInt64(&c.UpgradePurchases))

		counter(w, "idle_prestiges_total", "Prestige resets", atomic.LoadInt64(&c.Prestiges))
		counter(w, "idle_narrative_fired_total", "Narrative events fired", atomic.LoadInt64(&c.NarrativeFired))

		fmt.Fprintf(w, "# HELP idle_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE idle_ws_connections gauge\n")
		fmt.Fprintf(w, "idle_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP idle_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE idle_ws_messages_total counter\n")
		fmt.Fprintf(w, "idle_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "idle_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
		fmt.Fprintf(w, "idle_ws_messages_total{direction=\"dropped\"} %d\n", atomic.LoadInt64(&c.WSDropped))
	}
}

func counter(w http.ResponseWriter, name, help string, v int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n\n", name, v)
}

// storeMax raises *addr to v if v is larger.
func storeMax(addr *int64, v int64) {
	for {
		cur := atomic.LoadInt64(addr)
		if v <= cur || atomic.CompareAndSwapInt64(addr, cur, v) {
			return
		}
	}
}
