package director

import (
	"context"
	"sync"
	"time"
)

func intPtr(v int) *int          { return &v }
func boolPtr(v bool) *bool       { return &v }
func stringPtr(v string) *string { return &v }

// epoch is t=0 for the scenario tests.
var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(seconds float64) time.Time {
	return epoch.Add(time.Duration(seconds * float64(time.Second)))
}

// manualClock is a settable time source.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(t time.Time) *manualClock { return &manualClock{now: t} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingActuator captures every target it is asked to switch to.
type recordingActuator struct {
	mu      sync.Mutex
	targets []Target
	err     error
}

func (a *recordingActuator) SwitchTo(_ context.Context, target Target) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.targets = append(a.targets, target)
	return a.err
}

func (a *recordingActuator) Slots() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	slots := make([]int, len(a.targets))
	for i, t := range a.targets {
		slots[i] = t.Slot
	}
	return slots
}

// player builds a fully populated snapshot entry.
func player(id string, slot int, alive bool, score int) ParticipantUpdate {
	return ParticipantUpdate{
		ID:         id,
		Name:       stringPtr("name-" + id),
		Slot:       intPtr(slot),
		Alive:      boolPtr(alive),
		MatchScore: intPtr(score),
	}
}

func snapshotOf(phase Phase, players ...ParticipantUpdate) Snapshot {
	return Snapshot{Participants: players, Phase: phase}
}

// testConfig is the 5s delay, 100ms tick configuration of the scenario tests.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Delay = 5 * time.Second
	cfg.Tick = 100 * time.Millisecond
	return cfg
}
