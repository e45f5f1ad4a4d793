// Package mcp exposes the rover simulator to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a REST
// request against the api package and the JSON response is rendered as
// plain text for the agent.
//
// MCP Tools:
//   - simulate: run one simulation from x, y, facing and instructions (or program text)
//   - list_missions: list saved missions
//   - get_mission: show one mission definition
//   - run_mission: run a mission and report whether its expectation was met
//   - rover_instructions: static rules and worked examples
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: mount the Client itself, it implements http.Handler for single JSON-RPC posts
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	http.Handle("/mcp", client)
package mcp
