package engine

// Input is the raw, symbol-level form of a simulation request
type Input struct {
	X            int      `json:"x" toml:"x"`
	Y            int      `json:"y" toml:"y"`
	Facing       string   `json:"facing" toml:"facing"`
	Instructions []string `json:"instructions" toml:"instructions"`
}

// Parse validates the input in order (coordinates, facing, instructions)
// and returns the typed start state and instruction list.
func (in Input) Parse() (RoverState, []Instruction, error) {
	return ParseInput(in.X, in.Y, in.Facing, in.Instructions)
}

// ParseInput validates raw symbols and returns the typed start state and
// instructions. The first failing check wins.
func ParseInput(x, y int, facing string, symbols []string) (RoverState, []Instruction, error) {
	pos := Coordinates{X: x, Y: y}
	if !InBounds(pos) {
		return RoverState{}, nil, &InvalidStartCoordinatesError{X: x, Y: y}
	}

	f, err := ParseFacing(facing)
	if err != nil {
		return RoverState{}, nil, err
	}

	instructions := Instructions(symbols)
	if err := ValidateInstructions(instructions); err != nil {
		return RoverState{}, nil, err
	}

	return RoverState{Position: pos, Facing: f}, instructions, nil
}
