package service

import (
	"time"

	"github.com/wricardo/roversim/rover/engine"
)

// SimulateRequest is a symbol-level simulation request. Exactly one of
// Instructions or Program is used; Program wins when both are set.
type SimulateRequest struct {
	X            int      `json:"x"`
	Y            int      `json:"y"`
	Facing       string   `json:"facing"`
	Instructions []string `json:"instructions,omitempty"`
	Program      string   `json:"program,omitempty"`
	RunID        string   `json:"run_id,omitempty"` // optional caller-chosen id for live streaming
}

// SimulationResult contains the outcome of one run
type SimulationResult struct {
	RunID        string              `json:"run_id"`
	MissionID    string              `json:"mission_id,omitempty"`
	Start        engine.RoverState   `json:"start"`
	Final        engine.RoverState   `json:"final"`
	Scuffs       int                 `json:"scuffs"`
	Instructions []string            `json:"instructions"`
	Steps        []engine.TraceEvent `json:"steps"`
	Message      string              `json:"message"`
	Duration     time.Duration       `json:"duration_ns"`

	// Set for mission runs only
	Expectation *ExpectationResult `json:"expectation,omitempty"`
}

// ExpectationResult reports whether a mission run matched its expected outcome
type ExpectationResult struct {
	Checked bool   `json:"checked"`
	Matched bool   `json:"matched"`
	Detail  string `json:"detail"`
}
