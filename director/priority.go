package director

import (
	"fmt"
	"sort"
)

// Priority ranks ready switches; lower values are more important.
type Priority int

const (
	PriorityMultiKillAlive  Priority = 1
	PriorityMultiKillDead   Priority = 2
	PrioritySingleKillAlive Priority = 3
	PriorityOther           Priority = 4
)

// RequiresAlive reports whether a switch at this priority is only worth
// firing while its participant is alive.
func (p Priority) RequiresAlive() bool {
	return p == PriorityMultiKillAlive || p == PrioritySingleKillAlive
}

// Classify maps a score delta and aliveness to a priority class.
func Classify(delta int, alive bool) Priority {
	switch {
	case delta >= 2 && alive:
		return PriorityMultiKillAlive
	case delta >= 2:
		return PriorityMultiKillDead
	case delta == 1 && alive:
		return PrioritySingleKillAlive
	default:
		return PriorityOther
	}
}

// PriorityPolicy computes the priority a ready switch competes with.
// Implementations MUST NOT modify the switch.
type PriorityPolicy interface {
	Effective(ps *PendingSwitch, p Participant, known bool) Priority
}

// CreationPriority uses the priority fixed at admission (default).
type CreationPriority struct{}

func (c *CreationPriority) Effective(ps *PendingSwitch, _ Participant, _ bool) Priority {
	return ps.Priority
}

// LivePriority recomputes the priority at firing time from the participant's
// current round total and aliveness. Unknown participants keep the
// admission priority.
type LivePriority struct{}

func (l *LivePriority) Effective(ps *PendingSwitch, p Participant, known bool) Priority {
	if !known {
		return ps.Priority
	}
	return Classify(p.RoundScore, p.Alive)
}

// ValidPriorityModes is the set of recognized priority mode names.
var ValidPriorityModes = map[string]bool{"": true, "creation": true, "live": true}

// ValidReadyPolicies is the set of recognized ready-but-unselected policies.
var ValidReadyPolicies = map[string]bool{"": true, "discard": true, "retain": true}

// NewPriorityPolicy creates a PriorityPolicy by name.
// Empty string defaults to CreationPriority. Panics on unrecognized names.
func NewPriorityPolicy(name string) PriorityPolicy {
	if !ValidPriorityModes[name] {
		panic(fmt.Sprintf("unknown priority mode %q", name))
	}
	switch name {
	case "", "creation":
		return &CreationPriority{}
	case "live":
		return &LivePriority{}
	default:
		panic(fmt.Sprintf("unhandled priority mode %q", name))
	}
}

// rankedSwitch pairs a ready switch with the priority it competes with.
type rankedSwitch struct {
	ps       *PendingSwitch
	priority Priority
}

// orderReady sorts candidates by priority (ascending), then fire time
// (ascending), then admission sequence (ascending) for determinism.
func orderReady(cands []rankedSwitch) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].priority != cands[j].priority {
			return cands[i].priority < cands[j].priority
		}
		if !cands[i].ps.FireAt.Equal(cands[j].ps.FireAt) {
			return cands[i].ps.FireAt.Before(cands[j].ps.FireAt)
		}
		return cands[i].ps.Seq < cands[j].ps.Seq
	})
}
