// Package api provides HTTP REST API handlers for the rover simulator.
//
// The api package implements:
//   - Simulation of one rover run from symbols or a program string
//   - Mission listing, lookup, saving and running
//   - WebSocket upgrade handling for live step streams
//
// Endpoints:
//
// Simulation:
//   - POST /api/simulate - Run one simulation
//
// Missions:
//   - GET /api/missions - List available missions
//   - GET /api/missions/{name} - Get one mission definition
//   - POST /api/missions/{name} - Validate and save a mission
//   - POST /api/missions/{name}/run - Run a mission and check its expectation
//
// Other:
//   - GET /api - Grid size, symbols and endpoint list
//   - GET /api/health - Liveness probe
//   - GET /ws?run={run_id} - Stream trace steps for a run ("*" for all)
//
// Request Format:
//
//	{"x": 0, "y": 2, "facing": "E", "instructions": ["F", "L", "F"]}
//	{"x": 0, "y": 2, "facing": "E", "program": "F,L,3F", "run_id": "demo"}
//
// Error Format:
//
//	{"error": "invalid start coordinates (0,5): ...", "kind": "invalid_start_coordinates"}
//
// Validation failures return 400, unknown missions 404.
package api
