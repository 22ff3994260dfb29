package director

import "sort"

// Participant is the latest known state of one participant.
type Participant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slot       int    `json:"slot"`
	Alive      bool   `json:"alive"`
	MatchScore int    `json:"match_score"`
	RoundScore int    `json:"round_score"` // positive deltas since the last Live transition
}

// Registry holds the latest state per participant id.
// Entries are created on first sighting and persist until Reset.
// Registry is not safe for concurrent use; the Scheduler serializes access.
type Registry struct {
	participants map[string]*Participant
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{participants: make(map[string]*Participant)}
}

// Update applies a snapshot entry and returns the score delta since the
// previously stored match score. A first sighting compares against 0.
// Only positive deltas accumulate into RoundScore.
func (r *Registry) Update(u ParticipantUpdate) int {
	p, ok := r.participants[u.ID]
	if !ok {
		p = &Participant{ID: u.ID, Slot: UnknownSlot, Alive: true}
		r.participants[u.ID] = p
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Slot != nil {
		p.Slot = *u.Slot
	}
	if u.Alive != nil {
		p.Alive = *u.Alive
	}
	if u.MatchScore == nil {
		return 0
	}
	delta := *u.MatchScore - p.MatchScore
	p.MatchScore = *u.MatchScore
	if delta > 0 {
		p.RoundScore += delta
	}
	return delta
}

// IsAlive returns the last known aliveness. Unseen ids are alive so that an
// unknown participant never blocks a switch.
func (r *Registry) IsAlive(id string) bool {
	p, ok := r.participants[id]
	if !ok {
		return true
	}
	return p.Alive
}

// Get returns a copy of the participant's state.
func (r *Registry) Get(id string) (Participant, bool) {
	p, ok := r.participants[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// ResetRoundScores zeroes RoundScore for every participant.
func (r *Registry) ResetRoundScores() {
	for _, p := range r.participants {
		p.RoundScore = 0
	}
}

// Reset forgets every participant.
func (r *Registry) Reset() {
	r.participants = make(map[string]*Participant)
}

// Len returns the number of known participants.
func (r *Registry) Len() int {
	return len(r.participants)
}

// All returns copies of all participants sorted by id.
func (r *Registry) All() []Participant {
	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
