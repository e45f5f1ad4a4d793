package engine

import (
	"errors"
	"sync"

	"github.com/wricardo/roversim/logging"
)

// TraceSink receives one event per applied instruction. A returned error is
// logged by the simulator and never aborts the run.
type TraceSink interface {
	Record(event TraceEvent) error
}

// TraceSinkFunc adapts a function into a TraceSink
type TraceSinkFunc func(event TraceEvent) error

// Record calls f(event)
func (f TraceSinkFunc) Record(event TraceEvent) error {
	return f(event)
}

// NopSink discards all events
type NopSink struct{}

// Record discards the event.
func (NopSink) Record(TraceEvent) error { return nil }

// MultiSink fans an event out to several sinks. Every sink is called even if
// an earlier one fails; the failures are joined.
type MultiSink []TraceSink

// Record forwards the event to every sink
func (m MultiSink) Record(event TraceEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordingSink keeps every event in memory. Safe for concurrent use.
type RecordingSink struct {
	mu     sync.Mutex
	events []TraceEvent
}

// NewRecordingSink creates an empty recording sink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Record appends the event
func (r *RecordingSink) Record(event TraceEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events
func (r *RecordingSink) Events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TraceEvent(nil), r.events...)
}

// LogSink writes each event as an info log line
type LogSink struct {
	Logger logging.Logger
}

// NewLogSink creates a sink that logs through logger
func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

// Record logs the event
func (l *LogSink) Record(event TraceEvent) error {
	l.Logger.Info("rover step",
		logging.Int("step", event.Step),
		logging.String("instruction", event.Instruction.String()),
		logging.Int("x", event.Position.X),
		logging.Int("y", event.Position.Y),
		logging.String("facing", event.Facing.Symbol()),
		logging.Int("scuffs", event.Scuffs),
	)
	return nil
}
