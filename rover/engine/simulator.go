package engine

import "github.com/wricardo/roversim/logging"

// Simulator runs instruction sequences. It holds no per-run state, so one
// instance can serve concurrent calls as long as its sink is concurrency safe.
type Simulator struct {
	sink   TraceSink
	logger logging.Logger
}

// Option configures a Simulator
type Option func(*Simulator)

// WithTraceSink sets the sink receiving per-instruction events
func WithTraceSink(sink TraceSink) Option {
	return func(s *Simulator) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the logger used to report sink failures
func WithLogger(logger logging.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSimulator creates a simulator with a no-op sink and logger unless overridden
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		sink:   NopSink{},
		logger: logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate validates the start state and instructions, then applies every
// instruction in order. It returns the final state and the number of forward
// moves rejected at the grid edge.
func (s *Simulator) Simulate(start RoverState, instructions []Instruction) (RoverState, int, error) {
	if err := start.Validate(); err != nil {
		return RoverState{}, 0, err
	}
	if err := ValidateInstructions(instructions); err != nil {
		return RoverState{}, 0, err
	}

	state := start
	scuffs := 0
	for i, in := range instructions {
		scuffed := state.Apply(in)
		if scuffed {
			scuffs++
		}
		s.record(TraceEvent{
			Step:        i + 1,
			Instruction: in,
			Position:    state.Position,
			Facing:      state.Facing,
			Scuffs:      scuffs,
			Scuffed:     scuffed,
		})
	}

	return state, scuffs, nil
}

// SimulateInput parses raw symbols with ParseInput and simulates them
func (s *Simulator) SimulateInput(in Input) (RoverState, int, error) {
	start, instructions, err := in.Parse()
	if err != nil {
		return RoverState{}, 0, err
	}
	return s.Simulate(start, instructions)
}

func (s *Simulator) record(event TraceEvent) {
	if err := s.sink.Record(event); err != nil {
		s.logger.Warn("trace sink failed",
			logging.Int("step", event.Step),
			logging.Err(err),
		)
	}
}
