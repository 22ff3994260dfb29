package director

// Transition describes the effect of one observed phase.
type Transition struct {
	From      Phase
	To        Phase
	Changed   bool
	Discarded []*PendingSwitch // switches cleared by a transition to Over
}

// RoundLifecycle tracks the round phase and resets round state on
// transitions: entering Over clears the queue, entering Live clears round
// scores. There is no terminal phase.
type RoundLifecycle struct {
	phase    Phase
	registry *Registry
	queue    *EventQueue
}

// NewRoundLifecycle creates a lifecycle in PhaseUnknown that resets the
// given registry and queue.
func NewRoundLifecycle(registry *Registry, queue *EventQueue) *RoundLifecycle {
	return &RoundLifecycle{registry: registry, queue: queue}
}

// Phase returns the current phase.
func (rl *RoundLifecycle) Phase() Phase {
	return rl.phase
}

// Observe applies a phase notification. Repeating the current phase and
// unknown phases are no-ops.
func (rl *RoundLifecycle) Observe(next Phase) Transition {
	t := Transition{From: rl.phase, To: rl.phase}
	if next == rl.phase {
		return t
	}
	switch next {
	case PhaseOver:
		t.Discarded = rl.queue.Clear()
	case PhaseLive:
		rl.registry.ResetRoundScores()
	case PhaseWarmup:
	default:
		return t
	}
	rl.phase = next
	t.To = next
	t.Changed = true
	return t
}

// Reset returns the lifecycle to PhaseUnknown without side effects.
func (rl *RoundLifecycle) Reset() {
	rl.phase = PhaseUnknown
}
