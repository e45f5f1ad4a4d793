package mission

import (
	"fmt"

	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/program"
)

// Start is the symbol-level start state of a mission
type Start struct {
	X      int    `json:"x" toml:"x"`
	Y      int    `json:"y" toml:"y"`
	Facing string `json:"facing" toml:"facing"`
}

// Expectation is the outcome a mission is expected to produce
type Expectation struct {
	X      int    `json:"x" toml:"x"`
	Y      int    `json:"y" toml:"y"`
	Facing string `json:"facing" toml:"facing"`
	Scuffs int    `json:"scuffs" toml:"scuffs"`
}

// Mission is a named simulation input
type Mission struct {
	Name         string       `json:"name" toml:"name"`
	Description  string       `json:"description" toml:"description"`
	Start        Start        `json:"start" toml:"start"`
	Instructions []string     `json:"instructions,omitempty" toml:"instructions,omitempty"`
	Program      string       `json:"program,omitempty" toml:"program,omitempty"`
	Expect       *Expectation `json:"expect,omitempty" toml:"expect,omitempty"`
}

// Info summarises a mission for listings
type Info struct {
	Filename     string `json:"filename"`
	MissionID    string `json:"mission_id"` // identifier used to load or run the mission
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instructions int    `json:"instructions"`
	HasExpect    bool   `json:"has_expect"`
}

// Symbols returns the raw instruction symbols, expanding Program when set
func (m *Mission) Symbols() ([]string, error) {
	if m.Program == "" {
		return m.Instructions, nil
	}
	if len(m.Instructions) > 0 {
		return nil, fmt.Errorf("set either instructions or program, not both")
	}
	return program.Parse(m.Program)
}

// Input converts the mission into an engine input
func (m *Mission) Input() (engine.Input, error) {
	symbols, err := m.Symbols()
	if err != nil {
		return engine.Input{}, err
	}
	return engine.Input{
		X:            m.Start.X,
		Y:            m.Start.Y,
		Facing:       m.Start.Facing,
		Instructions: symbols,
	}, nil
}

// Validate checks required fields, the start state and the instructions
func Validate(m *Mission) error {
	if m == nil {
		return fmt.Errorf("mission validation: mission is nil")
	}
	if m.Name == "" {
		return fmt.Errorf("mission validation: name is required")
	}
	if m.Description == "" {
		return fmt.Errorf("mission validation: description is required")
	}

	if _, _, err := engine.ParseInput(m.Start.X, m.Start.Y, m.Start.Facing, nil); err != nil {
		return fmt.Errorf("mission validation: %w", err)
	}

	in, err := m.Input()
	if err != nil {
		return fmt.Errorf("mission validation: %w", err)
	}
	if _, _, err := in.Parse(); err != nil {
		return fmt.Errorf("mission validation: %w", err)
	}

	if m.Expect != nil {
		if !engine.InBounds(engine.Coordinates{X: m.Expect.X, Y: m.Expect.Y}) {
			return fmt.Errorf("mission validation: expected position (%d,%d) is off the grid", m.Expect.X, m.Expect.Y)
		}
		if _, err := engine.ParseFacing(m.Expect.Facing); err != nil {
			return fmt.Errorf("mission validation: expected facing %q is not one of N, E, S, W", m.Expect.Facing)
		}
		if m.Expect.Scuffs < 0 {
			return fmt.Errorf("mission validation: expected scuffs must be non-negative, got %d", m.Expect.Scuffs)
		}
	}
	return nil
}

// Verify reports whether a simulation outcome matches the mission expectation.
// Missions without an expectation always match.
func Verify(m *Mission, final engine.RoverState, scuffs int) (bool, string) {
	if m.Expect == nil {
		return true, "no expectation"
	}
	want := fmt.Sprintf("(%d,%d) %s scuffs=%d", m.Expect.X, m.Expect.Y, m.Expect.Facing, m.Expect.Scuffs)
	got := fmt.Sprintf("%s %s scuffs=%d", final.Position, final.Facing.Symbol(), scuffs)
	if want != got {
		return false, fmt.Sprintf("expected %s, got %s", want, got)
	}
	return true, "matches " + want
}
