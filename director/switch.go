package director

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PendingSwitch is a delayed decision to point the camera at a participant.
// It is immutable after admission; only its removal from the queue changes.
type PendingSwitch struct {
	ID            string    // correlates trace and journal records
	Seq           uint64    // admission order, assigned by EventQueue.Admit
	CreatedAt     time.Time // ingestion time
	FireAt        time.Time // CreatedAt + broadcast delay
	ParticipantID string
	Name          string
	Slot          int
	ScoreDelta    int      // score delta at creation, always > 0
	Priority      Priority // computed once at creation
	WasAlive      bool
}

// newPendingSwitch builds a candidate for participant p that scored delta at now.
func newPendingSwitch(p Participant, delta int, now time.Time, delay time.Duration) *PendingSwitch {
	return &PendingSwitch{
		ID:            uuid.NewString(),
		CreatedAt:     now,
		FireAt:        now.Add(delay),
		ParticipantID: p.ID,
		Name:          p.Name,
		Slot:          p.Slot,
		ScoreDelta:    delta,
		Priority:      Classify(delta, p.Alive),
		WasAlive:      p.Alive,
	}
}

// Target returns the actuation target of the switch.
func (ps *PendingSwitch) Target() Target {
	return Target{Slot: ps.Slot, ParticipantID: ps.ParticipantID, Name: ps.Name}
}

func (ps *PendingSwitch) String() string {
	return fmt.Sprintf("%s(slot=%d, p%d, +%d)", ps.ParticipantID, ps.Slot, ps.Priority, ps.ScoreDelta)
}
