package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every validation error the engine returns
	ErrInvalidInput = errors.New("invalid simulation input")

	ErrInvalidStartCoordinates = fmt.Errorf("%w: start coordinates", ErrInvalidInput)
	ErrInvalidStartFacing      = fmt.Errorf("%w: start facing", ErrInvalidInput)
	ErrInvalidInstructions     = fmt.Errorf("%w: instructions", ErrInvalidInput)
)

// InvalidStartCoordinatesError reports a start position outside the grid
type InvalidStartCoordinatesError struct {
	X, Y int
}

func (e *InvalidStartCoordinatesError) Error() string {
	return fmt.Sprintf("invalid start coordinates (%d,%d): must be within 0..%d on both axes", e.X, e.Y, MaxCoordinate)
}

func (e *InvalidStartCoordinatesError) Unwrap() error { return ErrInvalidStartCoordinates }

// InvalidStartFacingError reports a facing that is not N, E, S or W
type InvalidStartFacingError struct {
	Value string
}

func (e *InvalidStartFacingError) Error() string {
	return fmt.Sprintf("invalid start facing %q: must be one of N, E, S, W", e.Value)
}

func (e *InvalidStartFacingError) Unwrap() error { return ErrInvalidStartFacing }

// InvalidInstructionsError carries the entire instruction list, invalid entries included
type InvalidInstructionsError struct {
	Instructions []Instruction
}

func (e *InvalidInstructionsError) Error() string {
	return fmt.Sprintf("invalid instructions [%s]: each must be one of F, L, R", FormatInstructions(e.Instructions))
}

func (e *InvalidInstructionsError) Unwrap() error { return ErrInvalidInstructions }

// ErrorKind returns a short machine-friendly name for a validation error,
// or an empty string if err is not one.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidStartCoordinates):
		return "invalid_start_coordinates"
	case errors.Is(err, ErrInvalidStartFacing):
		return "invalid_start_facing"
	case errors.Is(err, ErrInvalidInstructions):
		return "invalid_instructions"
	}
	return ""
}
