package stats

import (
	"context"
	"sync"
)

// Event is a counter name in the engine statistics.
type Event string

const (
	Acquired      Event = "acquired"
	Released      Event = "released"
	Converted     Event = "converted"
	FailedAcquire Event = "failed_acquire"
	FailedLoad    Event = "failed_load"
	FailedPrint   Event = "failed_print"
)

// Events lists every counter reported by Snapshot, in display order.
var Events = []Event{Acquired, Released, Converted, FailedAcquire, FailedLoad, FailedPrint}

// Recorder counts rendering context lifecycle events.
type Recorder interface {
	Incr(ctx context.Context, ev Event) error
	Snapshot(ctx context.Context) (map[Event]int64, error)
}

// Memory is a process-local Recorder.
type Memory struct {
	mu     sync.Mutex
	counts map[Event]int64
}

// NewMemory returns an empty in-process recorder.
func NewMemory() *Memory {
	return &Memory{counts: make(map[Event]int64)}
}

func (m *Memory) Incr(_ context.Context, ev Event) error {
	m.mu.Lock()
	m.counts[ev]++
	m.mu.Unlock()
	return nil
}

func (m *Memory) Snapshot(_ context.Context) (map[Event]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[Event]int64, len(Events))
	for _, ev := range Events {
		out[ev] = m.counts[ev]
	}
	return out, nil
}

// InFlight is the number of acquired contexts not yet released.
func InFlight(snap map[Event]int64) int64 {
	return snap[Acquired] - snap[Released]
}
