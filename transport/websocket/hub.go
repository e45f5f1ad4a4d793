package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/roversim/logging"
	"github.com/wricardo/roversim/rover/engine"
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

	// Per-client and hub queue sizes.
	sendBufferSize      = 256
	broadcastBufferSize = 1024

	// AllRuns subscribes a client to every run.
	AllRuns = "*"

	EventStep = "step"
)

// ErrQueueFull is returned by Publish when the hub cannot accept more events.
var ErrQueueFull = errors.New("websocket hub queue full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is a single outgoing WebSocket message
type Message struct {
	RunID string      `json:"run_id"`
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one WebSocket connection subscribed to a run
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	runID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	logger logging.Logger

	// Registered clients by run ID, guarded by mu
	mu   sync.RWMutex
	runs map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Hub{
		logger:     logger,
		runs:       make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to runID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, runID string) {
	if runID == "" {
		runID = AllRuns
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logging.Err(err))
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		runID: runID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Publish queues a trace event for all clients of runID and of AllRuns.
// It implements service.Broadcaster and never blocks.
func (h *Hub) Publish(runID string, event engine.TraceEvent) error {
	message := &Message{
		RunID: runID,
		Event: EventStep,
		Data:  event,
	}

	select {
	case h.broadcast <- message:
		return nil
	default:
		return fmt.Errorf("%w: dropped step %d of run %s", ErrQueueFull, event.Step, runID)
	}
}

// ClientCount returns the number of clients subscribed to runID
func (h *Hub) ClientCount(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.runs[runID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.runs[client.runID] == nil {
		h.runs[client.runID] = make(map[*Client]bool)
	}
	h.runs[client.runID][client] = true
	total := len(h.runs[client.runID])
	h.mu.Unlock()

	h.logger.Debug("websocket client registered",
		logging.String("run_id", client.runID),
		logging.Int("clients", total),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client; mu must be held
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.runs[client.runID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.runs, client.runID)
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Warn("failed to marshal websocket message", logging.Err(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	targets := []string{message.RunID}
	if message.RunID != AllRuns {
		targets = append(targets, AllRuns)
	}
	for _, runID := range targets {
		for client := range h.runs[runID] {
			select {
			case client.send <- data:
			default:
				// slow client, drop it
				h.removeLocked(client)
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.runs {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// readPump keeps the connection alive and unregisters the client on close
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages are ignored
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", logging.Err(err))
			}
			break
		}
	}
}

// writePump sends queued messages and pings to the connection
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
