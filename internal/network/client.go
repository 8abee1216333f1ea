package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/ContentCollapse/internal/domain/narrative"
	"github.com/MRamiBalles/ContentCollapse/internal/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Bounds a SAVE action issued over the socket.
	actionSaveTimeout = 2 * time.Second
)

// Game is the subset of the engine that player actions drive.
type Game interface {
	Click() float64
	BuyGenerator(id string) bool
	BuyUpgrade(id string) bool
	Prestige() bool
	NextPendingEvent() (narrative.Event, bool)
	SaveNow(ctx context.Context) bool
	State() engine.UIState
}

// Action types accepted from the UI.
const (
	ActionClick        = "CLICK"
	ActionBuyGenerator = "BUY_GENERATOR"
	ActionBuyUpgrade   = "BUY_UPGRADE"
	ActionPrestige     = "PRESTIGE"
	ActionNextEvent    = "NEXT_EVENT"
	ActionSave         = "SAVE"
)

// PlayerAction represents an incoming command from the frontend.
type PlayerAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"` // {"id": "..."} for purchases
}

// ActionResult answers a single PlayerAction, to the sender only.
type ActionResult struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	Target string `json:"target,omitempty"`
	Value  any    `json:"value,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // The UI may be served from a dev server on another port
	},
}

// Client is one active WebSocket connection.
type Client struct {
	id   string
	hub  *Hub
	game Game
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool

	minInterval    time.Duration
	lastActionTime time.Time
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, game Game, conn *websocket.Conn, minInterval time.Duration) *Client {
	return &Client{
		id:          uuid.NewString(),
		hub:         hub,
		game:        game,
		conn:        conn,
		send:        make(chan []byte, hub.sendBuffer),
		minInterval: minInterval,
	}
}

// ServeWs upgrades the request and starts the client's pumps. The client
// receives the current state as its first message.
func ServeWs(hub *Hub, game Game, minInterval time.Duration, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(hub, game, conn, minInterval)
	client.reply(newMessage(MsgTypeState, game.State()))
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// trySend queues a frame without blocking. False when the buffer is full or the client is gone.
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Errorf("Failed to serialize reply: %v", err)
		return
	}
	if !c.trySend(payload) {
		c.hub.metrics.RecordWSDrop()
	}
}

// ReadPump pumps messages from the websocket connection to the engine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnf("WebSocket read error: %v", err)
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		var action PlayerAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.hub.logger.Warn("Failed to parse PlayerAction from WebSocket. err: " + err.Error())
			c.reply(newMessage(MsgTypeError, "malformed action"))
			continue
		}

		c.handlePlayerAction(action)
	}
}

func (c *Client) handlePlayerAction(action PlayerAction) {
	if time.Since(c.lastActionTime) < c.minInterval {
		c.reply(newMessage(MsgTypeError, "rate limited"))
		return
	}
	c.lastActionTime = time.Now()

	result := ActionResult{Action: action.Type}
	switch action.Type {
	case ActionClick:
		result.Value = c.game.Click()
		result.OK = true
	case ActionBuyGenerator:
		result.Target = targetID(action.Payload)
		result.OK = c.game.BuyGenerator(result.Target)
	case ActionBuyUpgrade:
		result.Target = targetID(action.Payload)
		result.OK = c.game.BuyUpgrade(result.Target)
	case ActionPrestige:
		result.OK = c.game.Prestige()
	case ActionNextEvent:
		ev, ok := c.game.NextPendingEvent()
		result.OK = ok
		if ok {
			result.Value = ev
		}
	case ActionSave:
		ctx, cancel := context.WithTimeout(context.Background(), actionSaveTimeout)
		result.OK = c.game.SaveNow(ctx)
		cancel()
	default:
		c.hub.logger.Warn("Unknown PlayerAction type: " + action.Type)
		c.reply(newMessage(MsgTypeError, "unknown action "+action.Type))
		return
	}

	c.reply(newMessage(MsgTypeResult, result))
}

func targetID(raw json.RawMessage) string {
	var parsed struct {
		ID string `json:"id"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &parsed) != nil {
		return ""
	}
	return parsed.ID
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			c.hub.metrics.RecordWSMessage(false)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
				c.hub.metrics.RecordWSMessage(false)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
