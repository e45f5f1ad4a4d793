package engine

import (
	"encoding/json"
	"fmt"
)

// Facing represents the cardinal direction the rover points to.
// Values are kept modulo 4 so rotation is plain arithmetic.
type Facing int

const (
	North Facing = iota
	East
	South
	West

	facingCount = 4
)

var facingSymbols = [facingCount]string{"N", "E", "S", "W"}

// AllFacings returns all valid facings in clockwise order
func AllFacings() []Facing {
	return []Facing{North, East, South, West}
}

// IsValid returns true if the facing is one of the four cardinal directions
func (f Facing) IsValid() bool {
	return f >= North && f <= West
}

// Symbol returns the single letter form used on the wire
func (f Facing) Symbol() string {
	if !f.IsValid() {
		return fmt.Sprintf("Facing(%d)", int(f))
	}
	return facingSymbols[f]
}

// String returns the symbol of the facing
func (f Facing) String() string {
	return f.Symbol()
}

// Name returns the long name of the facing
func (f Facing) Name() string {
	switch f {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Right rotates the facing clockwise by one step
func (f Facing) Right() Facing {
	return (f + 1) % facingCount
}

// Left rotates the facing counter-clockwise by one step
func (f Facing) Left() Facing {
	return (f + facingCount - 1) % facingCount
}

// Delta returns the x and y offsets of one step in this facing
func (f Facing) Delta() (dx, dy int) {
	switch f {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// ParseFacing converts a symbol ("N", "E", "S", "W") into a Facing
func ParseFacing(s string) (Facing, error) {
	for i, sym := range facingSymbols {
		if s == sym {
			return Facing(i), nil
		}
	}
	return 0, &InvalidStartFacingError{Value: s}
}

// MarshalJSON encodes the facing as its symbol
func (f Facing) MarshalJSON() ([]byte, error) {
	if !f.IsValid() {
		return nil, &InvalidStartFacingError{Value: f.Symbol()}
	}
	return json.Marshal(f.Symbol())
}

// UnmarshalJSON decodes a facing symbol
func (f *Facing) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("facing must be a string: %w", err)
	}
	parsed, err := ParseFacing(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
