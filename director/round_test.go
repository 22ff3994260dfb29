package director

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newLifecycleFixture() (*RoundLifecycle, *Registry, *EventQueue) {
	reg := NewRegistry()
	q := NewEventQueue()
	return NewRoundLifecycle(reg, q), reg, q
}

func TestRoundLifecycle_Over_ClearsQueue(t *testing.T) {
	// GIVEN a live round with two pending switches
	rl, _, q := newLifecycleFixture()
	rl.Observe(PhaseLive)
	q.Admit(&PendingSwitch{ParticipantID: "a", FireAt: epoch.Add(time.Hour)})
	q.Admit(&PendingSwitch{ParticipantID: "b", FireAt: epoch})

	// WHEN the round ends
	tr := rl.Observe(PhaseOver)

	// THEN the queue is empty and both entries are reported as discarded
	assert.True(t, tr.Changed)
	assert.Equal(t, PhaseLive, tr.From)
	assert.Equal(t, PhaseOver, tr.To)
	assert.Len(t, tr.Discarded, 2)
	assert.Equal(t, 0, q.Len())
}

func TestRoundLifecycle_Live_ResetsRoundScoresOnly(t *testing.T) {
	rl, reg, q := newLifecycleFixture()
	reg.Update(player("a", 2, false, 4))
	q.Admit(&PendingSwitch{ParticipantID: "a"})

	rl.Observe(PhaseLive)

	p, _ := reg.Get("a")
	assert.Equal(t, 0, p.RoundScore)
	assert.Equal(t, 4, p.MatchScore)
	assert.False(t, p.Alive)
	assert.Equal(t, 1, q.Len(), "entering live must not clear the queue")
}

func TestRoundLifecycle_RepeatedPhase_NoDoubleClear(t *testing.T) {
	// GIVEN a live round in which a participant scored after the transition
	rl, reg, _ := newLifecycleFixture()
	rl.Observe(PhaseLive)
	reg.Update(player("a", 0, true, 2))

	// WHEN live is reported again
	tr := rl.Observe(PhaseLive)

	// THEN nothing changes
	assert.False(t, tr.Changed)
	p, _ := reg.Get("a")
	assert.Equal(t, 2, p.RoundScore)
}

func TestRoundLifecycle_UnknownPhase_NoOp(t *testing.T) {
	rl, _, q := newLifecycleFixture()
	rl.Observe(PhaseLive)
	q.Admit(&PendingSwitch{ParticipantID: "a"})

	for _, phase := range []Phase{PhaseUnknown, Phase("intermission")} {
		tr := rl.Observe(phase)
		assert.False(t, tr.Changed, "phase %q", phase)
	}
	assert.Equal(t, PhaseLive, rl.Phase())
	assert.Equal(t, 1, q.Len())
}

func TestRoundLifecycle_Cycle(t *testing.T) {
	rl, _, _ := newLifecycleFixture()
	seq := []Phase{PhaseWarmup, PhaseLive, PhaseOver, PhaseLive, PhaseOver}
	for _, phase := range seq {
		tr := rl.Observe(phase)
		if !tr.Changed || rl.Phase() != phase {
			t.Errorf("Observe(%q): changed=%v phase=%q", phase, tr.Changed, rl.Phase())
		}
	}
	rl.Reset()
	assert.Equal(t, PhaseUnknown, rl.Phase())
}
