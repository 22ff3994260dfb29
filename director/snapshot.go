package director

// Phase is the round phase reported by telemetry.
type Phase string

const (
	// PhaseUnknown marks an absent or unrecognised phase. Observing it is a no-op.
	PhaseUnknown Phase = ""
	PhaseWarmup  Phase = "warmup"
	PhaseLive    Phase = "live"
	PhaseOver    Phase = "over"
)

// UnknownSlot is the camera slot of a participant whose slot was never reported.
const UnknownSlot = -1

// ParticipantUpdate is one participant as described by a single snapshot.
// Nil fields were absent from the snapshot and leave stored state untouched.
type ParticipantUpdate struct {
	ID         string
	Name       *string
	Slot       *int
	Alive      *bool
	MatchScore *int // cumulative score, never negative
}

// Snapshot is one telemetry update: zero or more participants plus an
// optional round phase.
type Snapshot struct {
	Participants []ParticipantUpdate
	Phase        Phase
}
