package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/roversim/logging"
	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/mission"
	"github.com/wricardo/roversim/rover/program"
)

// roverServiceImpl implements the RoverService interface
type roverServiceImpl struct {
	missions    MissionCatalog
	logger      logging.Logger
	broadcaster Broadcaster
}

// NewRoverService creates a new service instance. broadcaster may be nil.
func NewRoverService(missions MissionCatalog, logger logging.Logger, broadcaster Broadcaster) RoverService {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &roverServiceImpl{
		missions:    missions,
		logger:      logger,
		broadcaster: broadcaster,
	}
}

// Simulate runs an ad-hoc simulation
func (s *roverServiceImpl) Simulate(ctx context.Context, req SimulateRequest) (*SimulationResult, error) {
	symbols := req.Instructions
	if req.Program != "" {
		// The start state is checked before the program text is tokenised
		if _, _, err := engine.ParseInput(req.X, req.Y, req.Facing, nil); err != nil {
			s.logger.Debug("simulation rejected", logging.Err(err))
			return nil, err
		}
		parsed, err := program.Parse(req.Program)
		if err != nil {
			return nil, err
		}
		symbols = parsed
	}

	in := engine.Input{X: req.X, Y: req.Y, Facing: req.Facing, Instructions: symbols}
	return s.run(ctx, req.RunID, in)
}

// RunMission loads a mission, runs it and checks its expectation
func (s *roverServiceImpl) RunMission(ctx context.Context, missionID string) (*SimulationResult, error) {
	m, err := s.missions.Load(missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission %s: %w", missionID, err)
	}

	in, err := m.Input()
	if err != nil {
		return nil, fmt.Errorf("mission %s: %w", missionID, err)
	}

	result, err := s.run(ctx, "", in)
	if err != nil {
		return nil, fmt.Errorf("mission %s: %w", missionID, err)
	}

	result.MissionID = missionID
	matched, detail := mission.Verify(m, result.Final, result.Scuffs)
	result.Expectation = &ExpectationResult{
		Checked: m.Expect != nil,
		Matched: matched,
		Detail:  detail,
	}
	if !matched {
		s.logger.Warn("mission expectation not met",
			logging.String("mission", missionID),
			logging.String("detail", detail),
		)
	}
	return result, nil
}

// run validates and simulates one input with a fresh per-run sink set
func (s *roverServiceImpl) run(ctx context.Context, runID string, in engine.Input) (*SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, instructions, err := in.Parse()
	if err != nil {
		s.logger.Debug("simulation rejected", logging.Err(err))
		return nil, err
	}

	if runID == "" {
		runID = uuid.NewString()
	}

	recorder := engine.NewRecordingSink()
	sinks := engine.MultiSink{recorder, engine.NewLogSink(s.logger)}
	if s.broadcaster != nil {
		sinks = append(sinks, engine.TraceSinkFunc(func(event engine.TraceEvent) error {
			return s.broadcaster.Publish(runID, event)
		}))
	}

	sim := engine.NewSimulator(engine.WithTraceSink(sinks), engine.WithLogger(s.logger))

	began := time.Now()
	final, scuffs, err := sim.Simulate(start, instructions)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(began)

	s.logger.Info("simulation complete",
		logging.String("run_id", runID),
		logging.String("final", final.String()),
		logging.Int("scuffs", scuffs),
		logging.Int("instructions", len(instructions)),
		logging.Duration("elapsed", elapsed),
	)

	steps := recorder.Events()
	if steps == nil {
		steps = []engine.TraceEvent{}
	}

	return &SimulationResult{
		RunID:        runID,
		Start:        start,
		Final:        final,
		Scuffs:       scuffs,
		Instructions: append([]string{}, in.Instructions...),
		Steps:        steps,
		Message:      summarize(final, scuffs, len(instructions)),
		Duration:     elapsed,
	}, nil
}

func summarize(final engine.RoverState, scuffs, steps int) string {
	return fmt.Sprintf("Rover finished at %s facing %s after %d instructions with %d scuffs",
		final.Position, final.Facing.Name(), steps, scuffs)
}

// ListMissions returns all valid missions
func (s *roverServiceImpl) ListMissions(ctx context.Context) ([]*mission.Info, error) {
	return s.missions.List()
}

// GetMission loads a mission definition
func (s *roverServiceImpl) GetMission(ctx context.Context, missionID string) (*mission.Mission, error) {
	return s.missions.Load(missionID)
}

// SaveMission validates and stores a mission definition
func (s *roverServiceImpl) SaveMission(ctx context.Context, missionID string, m *mission.Mission) error {
	return s.missions.Save(missionID, m)
}
