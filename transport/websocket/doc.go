// Package websocket streams rover trace events to browser or CLI clients.
//
// The websocket package implements:
//   - Run-aware WebSocket connections
//   - Live broadcasting of every simulation step
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// A central Hub owns all connections. Each client has a read goroutine that
// only keeps the connection alive and a write goroutine that drains the
// client's send queue.
//
// Message Protocol:
//
// Outgoing messages are JSON:
//
//	{"run_id": "5f0c...", "event": "step", "data": {"step": 1, "position": {"x": 1, "y": 2}, "facing": "E", "scuffs": 0}}
//
// Clients pick a run with ?run=<id>, or ?run=* to receive every run.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	svc := service.NewRoverService(catalog, logger, hub)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("run"))
//	})
//
// Publish never blocks the simulation: when the hub's queue is full the
// event is dropped and an error is returned.
package websocket
