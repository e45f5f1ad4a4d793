package service

import (
	"context"

	"github.com/wricardo/roversim/rover/engine"
	"github.com/wricardo/roversim/rover/mission"
)

// RoverService defines all simulator operations exposed to transports
type RoverService interface {
	// Simulation
	Simulate(ctx context.Context, req SimulateRequest) (*SimulationResult, error)
	RunMission(ctx context.Context, missionID string) (*SimulationResult, error)

	// Missions
	ListMissions(ctx context.Context) ([]*mission.Info, error)
	GetMission(ctx context.Context, missionID string) (*mission.Mission, error)
	SaveMission(ctx context.Context, missionID string, m *mission.Mission) error
}

// MissionCatalog handles mission loading and saving
type MissionCatalog interface {
	Load(id string) (*mission.Mission, error)
	List() ([]*mission.Info, error)
	Save(id string, m *mission.Mission) error
}

// Broadcaster publishes trace events of a run to live subscribers
type Broadcaster interface {
	Publish(runID string, event engine.TraceEvent) error
}
