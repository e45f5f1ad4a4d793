// Package service provides the application layer of the rover simulator.
//
// The service package ties the engine to the mission catalog and to the
// outer transports:
//   - Ad-hoc simulations from instruction lists or program text
//   - Named mission runs with expectation checks
//   - Mission listing, lookup and saving
//   - Per-run trace fan-out to logs, an in-memory step list and an
//     optional live Broadcaster (the WebSocket hub)
//
// Usage:
//
//	svc := service.NewRoverService(catalog, logger, hub)
//	result, err := svc.Simulate(ctx, service.SimulateRequest{
//		X: 0, Y: 2, Facing: "E",
//		Instructions: []string{"F", "L", "F"},
//	})
//
// Validation errors from the engine are returned unchanged (wrapped), so
// callers can match them with errors.Is(err, engine.ErrInvalidInput).
package service
