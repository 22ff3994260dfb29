package trace

import "sync"

// DecisionTrace collects decision records in memory.
type DecisionTrace struct {
	mu      sync.Mutex
	records []Record
}

// NewDecisionTrace creates a DecisionTrace ready for recording.
func NewDecisionTrace() *DecisionTrace {
	return &DecisionTrace{records: make([]Record, 0)}
}

// Record appends a decision record.
func (dt *DecisionTrace) Record(r Record) {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	dt.records = append(dt.records, r)
}

// Records returns a copy of all records in arrival order.
func (dt *DecisionTrace) Records() []Record {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	out := make([]Record, len(dt.records))
	copy(out, dt.records)
	return out
}

// Filter returns the records of the given kind.
func (dt *DecisionTrace) Filter(kind Kind) []Record {
	var out []Record
	for _, r := range dt.Records() {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
