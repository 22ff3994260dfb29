// Implements the EventQueue, which holds all pending switches until they are
// fired, discarded, or cleared at round end.

package director

import "time"

// EventQueue holds pending switches. Storage order carries no meaning;
// selection among ready entries is made by the scheduler's priority policy.
// EventQueue is not safe for concurrent use; the Scheduler serializes access.
type EventQueue struct {
	entries []*PendingSwitch
	nextSeq uint64
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Admit appends a switch and stamps its admission sequence number.
// There is no deduplication: several switches for one participant coexist.
func (q *EventQueue) Admit(ps *PendingSwitch) {
	if ps == nil {
		panic("Admit: switch must not be nil")
	}
	q.nextSeq++
	ps.Seq = q.nextSeq
	q.entries = append(q.entries, ps)
}

// Ready returns every entry with FireAt <= now, in admission order.
// Entries stay queued; the caller removes what it consumes.
func (q *EventQueue) Ready(now time.Time) []*PendingSwitch {
	var ready []*PendingSwitch
	for _, ps := range q.entries {
		if !ps.FireAt.After(now) {
			ready = append(ready, ps)
		}
	}
	return ready
}

// Remove deletes the given entry. It reports whether the entry was queued.
func (q *EventQueue) Remove(ps *PendingSwitch) bool {
	for i, e := range q.entries {
		if e == ps {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear discards every entry and returns them.
func (q *EventQueue) Clear() []*PendingSwitch {
	cleared := q.entries
	q.entries = nil
	return cleared
}

// Len returns the number of pending switches.
func (q *EventQueue) Len() int {
	return len(q.entries)
}

// Items returns the queue contents. Callers MUST NOT modify the returned slice.
func (q *EventQueue) Items() []*PendingSwitch {
	return q.entries
}

// NextFireAt returns the earliest fire time, or false when the queue is empty.
func (q *EventQueue) NextFireAt() (time.Time, bool) {
	if len(q.entries) == 0 {
		return time.Time{}, false
	}
	next := q.entries[0].FireAt
	for _, ps := range q.entries[1:] {
		if ps.FireAt.Before(next) {
			next = ps.FireAt
		}
	}
	return next, true
}
