package engine

// InBounds checks if the coordinates lie within the grid
func InBounds(c Coordinates) bool {
	return c.X >= MinCoordinate && c.X <= MaxCoordinate &&
		c.Y >= MinCoordinate && c.Y <= MaxCoordinate
}

// Ahead returns the coordinates one step in front of the rover, which may be off the grid
func (s RoverState) Ahead() Coordinates {
	dx, dy := s.Facing.Delta()
	return Coordinates{X: s.Position.X + dx, Y: s.Position.Y + dy}
}

// MoveForward steps the rover one cell forward. It returns false and leaves
// the position untouched when the move would leave the grid.
func (s *RoverState) MoveForward() bool {
	next := s.Ahead()
	if !InBounds(next) {
		return false
	}
	s.Position = next
	return true
}

// Apply executes a single valid instruction and reports whether it scuffed
func (s *RoverState) Apply(in Instruction) (scuffed bool) {
	switch in {
	case Forward:
		return !s.MoveForward()
	case TurnLeft:
		s.Facing = s.Facing.Left()
	case TurnRight:
		s.Facing = s.Facing.Right()
	}
	return false
}

// Validate checks the state in the documented order: coordinates, then facing
func (s RoverState) Validate() error {
	if !InBounds(s.Position) {
		return &InvalidStartCoordinatesError{X: s.Position.X, Y: s.Position.Y}
	}
	if !s.Facing.IsValid() {
		return &InvalidStartFacingError{Value: s.Facing.Symbol()}
	}
	return nil
}
