// Package main - agitator
// Load generator: many concurrent WebSocket clients spamming idle actions
// against a running idle-server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/MRamiBalles/ContentCollapse/internal/content"
	"github.com/MRamiBalles/ContentCollapse/internal/network"
)

// Config for the agitator
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	ResultsPath    string
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	ActionsOK        int64
	ActionsRefused   int64
	ServerErrors     int64 // ERROR frames, mostly rate limiting
	Errors           int64 // transport failures
	Latencies        []time.Duration
	mu               sync.Mutex
}

// Weighted so clicks dominate, like a real player.
var actionTypes = []string{
	network.ActionClick,
	network.ActionClick,
	network.ActionClick,
	network.ActionClick,
	network.ActionBuyGenerator,
	network.ActionBuyGenerator,
	network.ActionBuyUpgrade,
	network.ActionNextEvent,
	network.ActionPrestige,
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 50, "Number of concurrent clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Action interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	resultsPath := flag.String("out", "stress_test_results.json", "Where to write the JSON results")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
		ResultsPath:    *resultsPath,
	}

	fmt.Println("=========================================")
	fmt.Println("AGITATOR - idle-server load generator")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Clients: %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)
	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	generators, upgrades := catalogIDs()
	var g errgroup.Group

	fmt.Println("\nStarting clients...")

	for i := 0; i < config.NumClients; i++ {
		clientID := i
		g.Go(func() error {
			runClient(ctx, clientID, config, stats, generators, upgrades)
			return nil
		})

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d clients started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Printf("Progress: Sent=%s Recv=%s Errors=%d\n",
					humanize.Comma(atomic.LoadInt64(&stats.MessagesSent)),
					humanize.Comma(atomic.LoadInt64(&stats.MessagesReceived)),
					atomic.LoadInt64(&stats.Errors))
			}
		}
	}()

	g.Wait()
	return stats
}

// catalogIDs lists purchasable IDs from the built-in catalog so agitators buy real things.
func catalogIDs() (generators, upgrades []string) {
	cat := content.Default()
	for _, gen := range cat.Generators {
		generators = append(generators, gen.ID)
	}
	for _, up := range cat.Upgrades {
		upgrades = append(upgrades, up.ID)
	}
	return generators, upgrades
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats, generators, upgrades []string) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		log.Printf("Client %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			// The server batches queued frames with newlines.
			for _, line := range bytes.Split(data, []byte{'\n'}) {
				atomic.AddInt64(&stats.MessagesReceived, 1)
				tally(stats, line)
			}
		}
	}()

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			action := generateRandomAction(generators, upgrades)
			start := time.Now()

			if err := conn.WriteJSON(action); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

func tally(stats *Stats, line []byte) {
	var msg struct {
		Type    string               `json:"type"`
		Payload network.ActionResult `json:"payload"`
	}
	if err := json.Unmarshal(line, &msg); err != nil {
		// STATE and NARRATIVE payloads do not fit ActionResult; only the type matters here.
		var head struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(line, &head) == nil && head.Type == network.MsgTypeError {
			atomic.AddInt64(&stats.ServerErrors, 1)
		}
		return
	}

	switch msg.Type {
	case network.MsgTypeResult:
		if msg.Payload.OK {
			atomic.AddInt64(&stats.ActionsOK, 1)
		} else {
			atomic.AddInt64(&stats.ActionsRefused, 1)
		}
	case network.MsgTypeError:
		atomic.AddInt64(&stats.ServerErrors, 1)
	}
}

func generateRandomAction(generators, upgrades []string) network.PlayerAction {
	action := network.PlayerAction{Type: actionTypes[rand.Intn(len(actionTypes))]}

	var id string
	switch action.Type {
	case network.ActionBuyGenerator:
		id = generators[rand.Intn(len(generators))]
	case network.ActionBuyUpgrade:
		id = upgrades[rand.Intn(len(upgrades))]
	}
	if id != "" {
		action.Payload, _ = json.Marshal(map[string]string{"id": id})
	}
	return action
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	errs := atomic.LoadInt64(&stats.Errors)
	ok := atomic.LoadInt64(&stats.ActionsOK)
	refused := atomic.LoadInt64(&stats.ActionsRefused)
	serverErrs := atomic.LoadInt64(&stats.ServerErrors)

	fmt.Printf("Messages Sent:     %s\n", humanize.Comma(sent))
	fmt.Printf("Messages Received: %s\n", humanize.Comma(recv))
	fmt.Printf("Actions OK:        %s\n", humanize.Comma(ok))
	fmt.Printf("Actions Refused:   %s\n", humanize.Comma(refused))
	fmt.Printf("Server Errors:     %s\n", humanize.Comma(serverErrs))
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nWrite latency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	if errs == 0 && ok+refused > 0 {
		fmt.Println("TEST PASSED: System handled the load")
	} else if float64(errs)/float64(sent+1) < 0.05 {
		fmt.Println("TEST WARNING: Some errors detected")
	} else {
		fmt.Println("TEST FAILED: High error rate")
	}
	fmt.Println("=========================================")

	results := map[string]any{
		"messages_sent":      sent,
		"messages_received":  recv,
		"actions_ok":         ok,
		"actions_refused":    refused,
		"server_errors":      serverErrs,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]any{
			"clients":  config.NumClients,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(config.ResultsPath, jsonData, 0644); err != nil {
		log.Printf("Failed to write results: %v", err)
		return
	}
	fmt.Printf("\nResults saved to %s\n", config.ResultsPath)
}
