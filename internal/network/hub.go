package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/engine"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/config"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/metrics"
)

// Message types pushed to the UI.
const (
	MsgTypeState     = "STATE"
	MsgTypeNarrative = "NARRATIVE"
	MsgTypeResult    = "ACTION_RESULT"
	MsgTypeError     = "ERROR"
)

// Message is the envelope of every outbound WebSocket frame.
type Message struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload,omitempty"`
}

func newMessage(msgType string, payload any) Message {
	return Message{Type: msgType, Timestamp: time.Now().UnixMilli(), Payload: payload}
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex

	sendBuffer int
	metrics    *metrics.Collector
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub.
func NewHub(cfg *config.Config, m *metrics.Collector, log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, cfg.BroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		sendBuffer: cfg.ClientSendBuffer,
		metrics:    m,
		logger:     log,
	}
}

// Attach subscribes the hub to the engine's state and narrative streams.
func (h *Hub) Attach(eng *engine.Engine) {
	eng.Subscribe(h.PublishState)
	eng.SubscribeNarrative(h.PublishNarrative)
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Infof("WebSocket client %s connected", client.id)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Infof("WebSocket client %s disconnected", client.id)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.trySend(message) {
					// Too slow to keep up; the client reconnects and gets a fresh state.
					h.metrics.RecordWSDrop()
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// join and leave are no-ops once Run has returned.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// drop removes a client. Caller holds h.mu.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	client.closeSend()
	h.metrics.RecordWSConnection(-1)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PublishState queues a UI projection for every client.
func (h *Hub) PublishState(state engine.UIState) {
	h.enqueue(newMessage(MsgTypeState, state))
}

// PublishNarrative queues a fired narrative event. The engine calls this
// under its lock, so it never blocks.
func (h *Hub) PublishNarrative(ev narrative.Event) {
	h.enqueue(newMessage(MsgTypeNarrative, ev))
}

func (h *Hub) enqueue(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Failed to serialize %s message for WebSocket broadcast: %v", msg.Type, err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.metrics.RecordWSDrop()
	}
}
