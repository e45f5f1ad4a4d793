package engine

import "fmt"

const (
	// GridSize is the width and height of the square grid.
	GridSize = 5

	// Validation constants
	MinCoordinate = 0
	MaxCoordinate = GridSize - 1
)

// Coordinates represents x,y coordinates on the grid
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the coordinates as "(x,y)"
func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// RoverState represents the complete rover state at any instant
type RoverState struct {
	Position Coordinates `json:"position"`
	Facing   Facing      `json:"facing"`
}

// String renders the state as "(x,y) F"
func (s RoverState) String() string {
	return fmt.Sprintf("%s %s", s.Position, s.Facing)
}

// TraceEvent is recorded once per applied instruction, after the state update
type TraceEvent struct {
	Step        int         `json:"step"` // 1-based instruction index
	Instruction Instruction `json:"instruction"`
	Position    Coordinates `json:"position"`
	Facing      Facing      `json:"facing"`
	Scuffs      int         `json:"scuffs"`
	Scuffed     bool        `json:"scuffed,omitempty"` // this instruction was a rejected forward move
}
