package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/roversim/rover/engine"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.runs == nil {
		t.Error("Hub runs map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	client := &Client{hub: hub, runID: "run-a", send: make(chan []byte, 1)}

	hub.registerClient(client)
	if hub.ClientCount("run-a") != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount("run-a"))
	}

	hub.unregisterClient(client)
	if _, exists := hub.runs["run-a"]; exists {
		t.Error("Run should have been cleaned up after last client unregistered")
	}

	// unregistering twice is harmless
	hub.unregisterClient(client)
}

func TestHubBroadcastTargetsRunAndWildcard(t *testing.T) {
	hub := NewHub(nil)
	runClient := &Client{hub: hub, runID: "run-a", send: make(chan []byte, 4)}
	otherClient := &Client{hub: hub, runID: "run-b", send: make(chan []byte, 4)}
	allClient := &Client{hub: hub, runID: AllRuns, send: make(chan []byte, 4)}
	hub.registerClient(runClient)
	hub.registerClient(otherClient)
	hub.registerClient(allClient)

	event := engine.TraceEvent{Step: 2, Position: engine.Coordinates{X: 1, Y: 3}, Facing: engine.East, Scuffs: 1}
	hub.broadcastMessage(&Message{RunID: "run-a", Event: EventStep, Data: event})

	for name, c := range map[string]*Client{"run": runClient, "wildcard": allClient} {
		select {
		case data := <-c.send:
			var msg struct {
				RunID string            `json:"run_id"`
				Event string            `json:"event"`
				Data  engine.TraceEvent `json:"data"`
			}
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("%s: failed to unmarshal message: %v", name, err)
			}
			if msg.RunID != "run-a" || msg.Event != EventStep {
				t.Errorf("%s: unexpected envelope %+v", name, msg)
			}
			if msg.Data != event {
				t.Errorf("%s: expected event %+v, got %+v", name, event, msg.Data)
			}
		default:
			t.Errorf("%s client received nothing", name)
		}
	}

	select {
	case <-otherClient.send:
		t.Error("Client of another run should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &Client{hub: hub, runID: "run-a", send: make(chan []byte)} // unbuffered, never read
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{RunID: "run-a", Event: EventStep})

	if hub.ClientCount("run-a") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestHubPublishQueueFull(t *testing.T) {
	hub := NewHub(nil) // not running, nothing drains the queue

	var err error
	for i := 0; i <= broadcastBufferSize; i++ {
		err = hub.Publish("run-a", engine.TraceEvent{Step: i + 1})
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull once the queue is full, got %v", err)
	}
}

func TestWebSocketStreamsSteps(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("run"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run=stream-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("stream-test") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount("stream-test") != 1 {
		t.Fatalf("Expected 1 registered client, got %d", hub.ClientCount("stream-test"))
	}

	if err := hub.Publish("stream-test", engine.TraceEvent{Step: 1, Instruction: engine.Forward, Facing: engine.North}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if msg.RunID != "stream-test" || msg.Event != EventStep {
		t.Errorf("Unexpected message %+v", msg)
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount("stream-test") != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount("stream-test") != 0 {
		t.Error("Client should be unregistered after close")
	}
}
