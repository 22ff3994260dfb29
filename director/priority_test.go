package director

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		delta int
		alive bool
		want  Priority
	}{
		{delta: 2, alive: true, want: PriorityMultiKillAlive},
		{delta: 5, alive: true, want: PriorityMultiKillAlive},
		{delta: 2, alive: false, want: PriorityMultiKillDead},
		{delta: 1, alive: true, want: PrioritySingleKillAlive},
		{delta: 1, alive: false, want: PriorityOther},
		{delta: 0, alive: true, want: PriorityOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.delta, tt.alive); got != tt.want {
			t.Errorf("Classify(%d, %v) = %d, want %d", tt.delta, tt.alive, got, tt.want)
		}
	}
}

func TestPriority_RequiresAlive(t *testing.T) {
	assert.True(t, PriorityMultiKillAlive.RequiresAlive())
	assert.False(t, PriorityMultiKillDead.RequiresAlive())
	assert.True(t, PrioritySingleKillAlive.RequiresAlive())
	assert.False(t, PriorityOther.RequiresAlive())
}

func TestOrderReady_PriorityThenFireAtThenSeq(t *testing.T) {
	// GIVEN candidates that differ on each ordering key
	late := &PendingSwitch{ParticipantID: "late-p1", FireAt: at(6), Seq: 1}
	early := &PendingSwitch{ParticipantID: "early-p1", FireAt: at(5), Seq: 4}
	twin := &PendingSwitch{ParticipantID: "twin-p1", FireAt: at(5), Seq: 2}
	low := &PendingSwitch{ParticipantID: "p3", FireAt: at(1), Seq: 0}
	cands := []rankedSwitch{
		{ps: low, priority: PrioritySingleKillAlive},
		{ps: late, priority: PriorityMultiKillAlive},
		{ps: early, priority: PriorityMultiKillAlive},
		{ps: twin, priority: PriorityMultiKillAlive},
	}

	// WHEN ordered
	orderReady(cands)

	// THEN priority wins, then earlier fire time, then lower seq
	var got []string
	for _, c := range cands {
		got = append(got, c.ps.ParticipantID)
	}
	assert.Equal(t, []string{"twin-p1", "early-p1", "late-p1", "p3"}, got)
}

func TestLivePriority_RecomputesFromRoundScore(t *testing.T) {
	ps := &PendingSwitch{Priority: PrioritySingleKillAlive}
	policy := &LivePriority{}

	assert.Equal(t, PriorityMultiKillAlive, policy.Effective(ps, Participant{RoundScore: 3, Alive: true}, true))
	assert.Equal(t, PriorityMultiKillDead, policy.Effective(ps, Participant{RoundScore: 3, Alive: false}, true))
	assert.Equal(t, PrioritySingleKillAlive, policy.Effective(ps, Participant{}, false), "unknown keeps admission priority")
}

func TestCreationPriority_IgnoresLiveState(t *testing.T) {
	ps := &PendingSwitch{Priority: PriorityMultiKillAlive}
	policy := &CreationPriority{}
	assert.Equal(t, PriorityMultiKillAlive, policy.Effective(ps, Participant{RoundScore: 0, Alive: false}, true))
}

func TestNewPriorityPolicy_ByName(t *testing.T) {
	assert.IsType(t, &CreationPriority{}, NewPriorityPolicy(""))
	assert.IsType(t, &CreationPriority{}, NewPriorityPolicy("creation"))
	assert.IsType(t, &LivePriority{}, NewPriorityPolicy("live"))
	assert.Panics(t, func() { NewPriorityPolicy("bogus") })
}
