// Package trace provides decision-trace recording for camera switch analysis.
// It does not depend on the director package; records are plain data.
package trace

import "time"

// Kind classifies a decision record.
type Kind string

const (
	KindAdmitted  Kind = "admitted"
	KindFired     Kind = "fired"
	KindDiscarded Kind = "discarded"
	KindFailed    Kind = "failed" // selected, but the actuator returned an error
)

// Discard reasons.
const (
	ReasonDeadTarget = "dead-target" // alive-required switch whose participant died
	ReasonUnselected = "unselected"  // ready in the same tick as the winner
	ReasonRoundOver  = "round-over"
	ReasonPaused     = "paused"
	ReasonReset      = "reset"
	ReasonStopped    = "stopped"
)

// Record captures one decision about one pending switch.
type Record struct {
	Kind          Kind      `yaml:"kind"`
	At            time.Time `yaml:"at"`
	SwitchID      string    `yaml:"switch_id"`
	ParticipantID string    `yaml:"participant_id"`
	Name          string    `yaml:"name,omitempty"`
	Slot          int       `yaml:"slot"`
	Priority      int       `yaml:"priority"`
	ScoreDelta    int       `yaml:"score_delta"`
	FireAt        time.Time `yaml:"fire_at"`
	Reason        string    `yaml:"reason,omitempty"`
}

// Recorder receives decision records. Implementations must be safe for
// concurrent use; records are delivered outside the scheduler's lock.
type Recorder interface {
	Record(r Record)
}

// Recorders fans a record out to several recorders in order.
type Recorders []Recorder

func (rs Recorders) Record(r Record) {
	for _, rec := range rs {
		rec.Record(r)
	}
}
