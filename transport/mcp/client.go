package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/mission"
	"github.com/wricardo/roversim/rover/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rover Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rover Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A rover moves on a 5x5 grid (x and y from 0 to 4, North is y+1).
It obeys F (forward), L (turn left) and R (turn right). A forward move that
would leave the grid is rejected and counted as a scuff.

AVAILABLE TOOLS:
- simulate: Run one simulation from a start state and instructions
- list_missions: List saved missions
- get_mission: Show one mission definition
- run_mission: Run a saved mission and check its expected outcome
- rover_instructions: Get the full rules and examples`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate",
		Description: "Simulate the rover from a start position and facing through a list of instructions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Start x coordinate (0-4)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Start y coordinate (0-4)",
				},
				"facing": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"N", "E", "S", "W"},
					"description": "Start facing",
				},
				"instructions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Ordered instructions, each one of F, L, R",
				},
				"program": map[string]interface{}{
					"type":        "string",
					"description": "Instructions as text, e.g. \"F,L,3F,R\" (used instead of instructions)",
				},
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional run id to follow the steps on /ws?run=<run_id>",
				},
			},
			Required: []string{"x", "y", "facing"},
		},
	}, c.handleSimulate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_missions",
		Description: "List available missions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMissions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_mission",
		Description: "Get the definition of a mission",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mission_id": map[string]interface{}{
					"type":        "string",
					"description": "Mission id from list_missions",
				},
			},
			Required: []string{"mission_id"},
		},
	}, c.handleGetMission)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_mission",
		Description: "Run a mission and compare the outcome with its expectation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mission_id": map[string]interface{}{
					"type":        "string",
					"description": "Mission id from list_missions",
				},
			},
			Required: []string{"mission_id"},
		},
	}, c.handleRunMission)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rover_instructions",
		Description: "Get the rover rules, symbols and worked examples",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRoverInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to the MCP endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// apiCall makes an HTTP call to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	endpoint := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			if kind := errResp["kind"]; kind != "" {
				return fmt.Errorf("%s [%s]", msg, kind)
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}
	facing, _ := args["facing"].(string)
	prog, _ := args["program"].(string)
	runID, _ := args["run_id"].(string)

	// Non-string entries are kept in their printed form so the API can report them
	instructionsRaw, _ := args["instructions"].([]interface{})
	instructions := make([]string, 0, len(instructionsRaw))
	for _, in := range instructionsRaw {
		if s, ok := in.(string); ok {
			instructions = append(instructions, s)
		} else {
			instructions = append(instructions, fmt.Sprint(in))
		}
	}

	body := service.SimulateRequest{
		X:            x,
		Y:            y,
		Facing:       facing,
		Instructions: instructions,
		Program:      prog,
		RunID:        runID,
	}

	var result service.SimulationResult
	if err := c.apiCall(ctx, "POST", "/api/simulate", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulationResult(&result)), nil
}

func (c *Client) handleListMissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count    int             `json:"count"`
		Missions []*mission.Info `json:"missions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/missions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMissionList(resp.Missions)), nil
}

func (c *Client) handleGetMission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	missionID, _ := args["mission_id"].(string)
	if missionID == "" {
		return mcp.NewToolResultError("mission_id is required"), nil
	}

	var m mission.Mission
	if err := c.apiCall(ctx, "GET", "/api/missions/"+url.PathEscape(missionID), nil, &m); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMission(missionID, &m)), nil
}

func (c *Client) handleRunMission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	missionID, _ := args["mission_id"].(string)
	if missionID == "" {
		return mcp.NewToolResultError("mission_id is required"), nil
	}

	var result service.SimulationResult
	if err := c.apiCall(ctx, "POST", "/api/missions/"+url.PathEscape(missionID)+"/run", nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSimulationResult(&result)), nil
}

func (c *Client) handleRoverInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(roverInstructions), nil
}

const roverInstructions = `Rover Simulator - Complete Instructions

GRID:
- 5x5 grid, x and y run from 0 to 4
- (0,0) is the south-west corner
- North increases y, East increases x

FACING SYMBOLS:
- N (North), E (East), S (South), W (West)

INSTRUCTIONS:
- F: move one cell forward in the current facing
- L: turn 90 degrees left (N -> W -> S -> E -> N)
- R: turn 90 degrees right (N -> E -> S -> W -> N)

SCUFFS:
- A forward move that would leave the grid is rejected
- The rover stays where it is and the scuff counter increases by one
- A scuff is not an error, the run continues with the next instruction

VALIDATION (first failure wins):
1. Start coordinates must be on the grid
2. Start facing must be N, E, S or W
3. Every instruction must be F, L or R

PROGRAM TEXT:
- "F,L,F R" is the same as ["F","L","F","R"]
- A count repeats the next instruction: "3F" is "F,F,F" (1 to 100)

WORKED EXAMPLES:
- (0,2) E with F,L,F,R,F,F,F,R,F,F,R,R ends at (4,1) N with 0 scuffs
- (4,4) S with L,F,L,L,F,F,L,F,F,F,R,F,F ends at (0,1) W with 1 scuff
- (1,3) N with F,F,L,F,F,L,F,F,F,F,F ends at (0,0) S with 3 scuffs`

// intArg reads a JSON number argument that must hold an integer
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// Formatting helpers

func formatSimulationResult(result *service.SimulationResult) string {
	var sb strings.Builder

	if result.MissionID != "" {
		sb.WriteString(fmt.Sprintf("Mission: %s\n", result.MissionID))
	}
	sb.WriteString(fmt.Sprintf("Run: %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Start: %s\n", result.Start))
	sb.WriteString(fmt.Sprintf("Final: %s\n", result.Final))
	sb.WriteString(fmt.Sprintf("Scuffs: %d\n", result.Scuffs))

	if exp := result.Expectation; exp != nil && exp.Checked {
		if exp.Matched {
			sb.WriteString("✓ Expectation met\n")
		} else {
			sb.WriteString(fmt.Sprintf("✗ Expectation failed: %s\n", exp.Detail))
		}
	}

	if len(result.Steps) > 0 {
		sb.WriteString("\nSteps:\n")
		for _, step := range result.Steps {
			sb.WriteString(formatStepLine(step))
			sb.WriteString("\n")
		}
	}

	if result.Message != "" {
		sb.WriteString("\n")
		sb.WriteString(result.Message)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func formatStepLine(step engine.TraceEvent) string {
	line := fmt.Sprintf("  %2d. %s -> %s %s scuffs=%d",
		step.Step, step.Instruction, step.Position, step.Facing.Symbol(), step.Scuffs)
	if step.Scuffed {
		line += "  (scuff: blocked by the edge)"
	}
	return line
}

func formatMissionList(missions []*mission.Info) string {
	if len(missions) == 0 {
		return "No missions available"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Available missions (%d):\n", len(missions)))
	for _, m := range missions {
		sb.WriteString(fmt.Sprintf("- %s: %s (%d instructions", m.MissionID, m.Name, m.Instructions))
		if m.HasExpect {
			sb.WriteString(", with expectation")
		}
		sb.WriteString(")\n")
		if m.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", m.Description))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMission(missionID string, m *mission.Mission) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Mission %s: %s\n", missionID, m.Name))
	sb.WriteString(fmt.Sprintf("%s\n", m.Description))
	sb.WriteString(fmt.Sprintf("Start: (%d,%d) %s\n", m.Start.X, m.Start.Y, m.Start.Facing))
	if m.Program != "" {
		sb.WriteString(fmt.Sprintf("Program: %s\n", m.Program))
	} else {
		sb.WriteString(fmt.Sprintf("Instructions: %s\n", strings.Join(m.Instructions, ",")))
	}
	if e := m.Expect; e != nil {
		sb.WriteString(fmt.Sprintf("Expect: (%d,%d) %s with %d scuffs\n", e.X, e.Y, e.Facing, e.Scuffs))
	}
	return strings.TrimRight(sb.String(), "\n")
}
