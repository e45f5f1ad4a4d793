package engine

import "strings"

// Instruction is a single movement command. It keeps its original
// representation so invalid entries can be reported verbatim.
type Instruction string

const (
	Forward   Instruction = "F"
	TurnLeft  Instruction = "L"
	TurnRight Instruction = "R"
)

// IsValid returns true if the instruction is one of the three defined kinds
func (i Instruction) IsValid() bool {
	switch i {
	case Forward, TurnLeft, TurnRight:
		return true
	}
	return false
}

// String returns the instruction symbol
func (i Instruction) String() string {
	return string(i)
}

// Instructions converts raw symbols into instructions without validating them
func Instructions(symbols []string) []Instruction {
	out := make([]Instruction, len(symbols))
	for i, s := range symbols {
		out[i] = Instruction(s)
	}
	return out
}

// FormatInstructions renders instructions as a comma-separated sequence
func FormatInstructions(instructions []Instruction) string {
	parts := make([]string, len(instructions))
	for i, in := range instructions {
		parts[i] = string(in)
	}
	return strings.Join(parts, ", ")
}

// ValidateInstructions checks every instruction and reports the whole list if any is invalid
func ValidateInstructions(instructions []Instruction) error {
	for _, in := range instructions {
		if !in.IsValid() {
			return &InvalidInstructionsError{Instructions: append([]Instruction(nil), instructions...)}
		}
	}
	return nil
}
