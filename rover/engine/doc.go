// Package engine provides the core simulation logic for the rover.
//
// The engine package implements:
//   - Start state and instruction validation
//   - Forward movement with boundary checks on a fixed 5x5 grid
//   - Left and right rotation using modular facing arithmetic
//   - Scuff counting for rejected forward moves
//   - Per-instruction trace events through an injected TraceSink
//
// Core Types:
//
// RoverState holds Coordinates and a Facing. Instruction is one of
// Forward, TurnLeft or TurnRight. Simulator runs an instruction sequence
// against a start state and returns the final state and scuff count.
//
// Usage:
//
//	sim := engine.NewSimulator()
//	start := engine.RoverState{Position: engine.Coordinates{X: 0, Y: 2}, Facing: engine.East}
//	final, scuffs, err := sim.Simulate(start, []engine.Instruction{engine.Forward, engine.TurnLeft})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Rules:
//
// The grid spans 0..4 on both axes. North increases Y and East increases X.
// A forward move that would leave the grid keeps the rover where it is and
// adds one scuff. Invalid input is rejected before any instruction runs;
// once validation passes no instruction can fail.
package engine
