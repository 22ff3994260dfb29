package director

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/replay-director/replay-director/director/trace"
)

const tracerName = "github.com/replay-director/replay-director/director"

// Decision is the outcome of a tick that selected a switch.
type Decision struct {
	Switch   PendingSwitch
	Priority Priority // priority the switch won with
	Target   Target
	At       time.Time
	Err      error // actuator error; the switch is consumed regardless
}

// Status is a point-in-time view of the scheduler state.
type Status struct {
	Phase        Phase         `json:"phase"`
	Paused       bool          `json:"paused"`
	Pending      int           `json:"pending"`
	Participants []Participant `json:"participants"`
}

// state bundles everything guarded by Scheduler.mu.
type state struct {
	registry *Registry
	queue    *EventQueue
	round    *RoundLifecycle
	paused   bool
}

type controlKind int

const (
	controlPause controlKind = iota
	controlResume
	controlReset
)

func (k controlKind) String() string {
	switch k {
	case controlPause:
		return "pause"
	case controlResume:
		return "resume"
	default:
		return "reset"
	}
}

type controlMsg struct {
	kind controlKind
	done chan struct{}
}

// Scheduler turns snapshots into delayed camera switches.
//
// Ingest and Tick may be called from different goroutines; both serialize on
// a single mutex guarding the registry, queue and round lifecycle. The
// actuator is always called after the lock is released.
type Scheduler struct {
	cfg      Config
	priority PriorityPolicy
	actuator SwitchActuator
	recorder trace.Recorder
	clock    func() time.Time

	mu sync.Mutex
	st state

	control chan controlMsg
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides time.Now as the ingestion and tick time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithRecorder sends every decision record to r.
func WithRecorder(r trace.Recorder) Option {
	return func(s *Scheduler) { s.recorder = r }
}

type nopRecorder struct{}

func (nopRecorder) Record(trace.Record) {}

// NewScheduler validates cfg and creates a Scheduler that fires through actuator.
func NewScheduler(cfg Config, actuator SwitchActuator, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}
	if actuator == nil {
		return nil, fmt.Errorf("invalid scheduler config: actuator must not be nil")
	}
	registry := NewRegistry()
	queue := NewEventQueue()
	s := &Scheduler{
		cfg:      cfg,
		priority: NewPriorityPolicy(cfg.PriorityMode),
		actuator: actuator,
		recorder: nopRecorder{},
		clock:    time.Now,
		st: state{
			registry: registry,
			queue:    queue,
			round:    NewRoundLifecycle(registry, queue),
		},
		control: make(chan controlMsg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest applies one snapshot: every participant with a positive score delta
// yields a pending switch firing after the broadcast delay, then the round
// phase, if present, is observed. While paused, snapshots refresh the
// registry but admit nothing.
func (s *Scheduler) Ingest(snap Snapshot) {
	now := s.clock()
	var admitted []*PendingSwitch

	s.mu.Lock()
	for _, u := range snap.Participants {
		if u.ID == "" {
			continue
		}
		delta := s.st.registry.Update(u)
		if delta <= 0 || s.st.paused {
			continue
		}
		p, _ := s.st.registry.Get(u.ID)
		ps := newPendingSwitch(p, delta, now, s.cfg.Delay)
		s.st.queue.Admit(ps)
		admitted = append(admitted, ps)
	}
	t := s.st.round.Observe(snap.Phase)
	s.mu.Unlock()

	for _, ps := range admitted {
		logrus.Infof("<< Candidate: %s %q +%d alive=%v priority=%d fires at %s",
			ps.ParticipantID, ps.Name, ps.ScoreDelta, ps.WasAlive, ps.Priority, ps.FireAt.Format(time.StampMilli))
		s.recorder.Record(newRecord(trace.KindAdmitted, ps, ps.Priority, now, ""))
	}
	if t.Changed {
		logrus.Infof("<< Round phase %q -> %q", t.From, t.To)
	}
	s.discarded(t.Discarded, now, trace.ReasonRoundOver)
}

// Tick selects and fires at most one ready switch. It returns nil when
// nothing fired. Ready switches whose participant died are discarded when
// their priority requires an alive target.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) *Decision {
	s.mu.Lock()
	if s.st.paused {
		s.mu.Unlock()
		return nil
	}
	ready := s.st.queue.Ready(now)
	if len(ready) == 0 {
		s.mu.Unlock()
		return nil
	}

	var records []trace.Record
	cands := make([]rankedSwitch, 0, len(ready))
	for _, ps := range ready {
		p, known := s.st.registry.Get(ps.ParticipantID)
		prio := s.priority.Effective(ps, p, known)
		if prio.RequiresAlive() && !s.st.registry.IsAlive(ps.ParticipantID) {
			s.st.queue.Remove(ps)
			records = append(records, newRecord(trace.KindDiscarded, ps, prio, now, trace.ReasonDeadTarget))
			continue
		}
		cands = append(cands, rankedSwitch{ps: ps, priority: prio})
	}

	var winner rankedSwitch
	if len(cands) > 0 {
		orderReady(cands)
		winner = cands[0]
		s.st.queue.Remove(winner.ps)
		if !s.cfg.retainUnselected() {
			for _, c := range cands[1:] {
				s.st.queue.Remove(c.ps)
				records = append(records, newRecord(trace.KindDiscarded, c.ps, c.priority, now, trace.ReasonUnselected))
			}
		}
	}
	s.mu.Unlock()

	for _, r := range records {
		logrus.Debugf("<< Discard: %s slot=%d priority=%d (%s)", r.ParticipantID, r.Slot, r.Priority, r.Reason)
		s.recorder.Record(r)
	}
	if winner.ps == nil {
		return nil
	}
	return s.fire(ctx, winner, now)
}

// fire calls the actuator for the selected switch. Failures are logged and
// recorded, never retried.
func (s *Scheduler) fire(ctx context.Context, winner rankedSwitch, now time.Time) *Decision {
	ps := winner.ps
	target := ps.Target()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "director.switch")
	span.SetAttributes(
		attribute.String("participant.id", target.ParticipantID),
		attribute.Int("camera.slot", target.Slot),
		attribute.Int("switch.priority", int(winner.priority)),
	)
	err := s.actuator.SwitchTo(ctx, target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	fields := logrus.Fields{
		"participant": target.ParticipantID,
		"name":        target.Name,
		"slot":        target.Slot,
		"priority":    int(winner.priority),
		"late":        now.Sub(ps.FireAt),
	}
	if err != nil {
		logrus.WithFields(fields).WithError(err).Warn("camera switch failed")
		s.recorder.Record(newRecord(trace.KindFailed, ps, winner.priority, now, err.Error()))
	} else {
		logrus.WithFields(fields).Info("camera switched")
		s.recorder.Record(newRecord(trace.KindFired, ps, winner.priority, now, ""))
	}
	return &Decision{Switch: *ps, Priority: winner.priority, Target: target, At: now, Err: err}
}

// Run ticks at the configured cadence and applies control messages until ctx
// is cancelled. An actuation in progress at cancellation completes before
// Run returns; pending switches are then discarded.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()
	actx := context.WithoutCancel(ctx)

	logrus.Infof("Scheduler running: delay=%v, tick=%v, priority=%q, ready=%q",
		s.cfg.Delay, s.cfg.Tick, s.cfg.PriorityMode, s.cfg.ReadyPolicy)
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			cleared := s.st.queue.Clear()
			s.mu.Unlock()
			s.discarded(cleared, s.clock(), trace.ReasonStopped)
			logrus.Info("Scheduler stopped")
			return nil
		case msg := <-s.control:
			s.apply(msg.kind)
			close(msg.done)
		case <-ticker.C:
			s.Tick(actx, s.clock())
		}
	}
}

func (s *Scheduler) apply(kind controlKind) {
	var cleared []*PendingSwitch
	reason := trace.ReasonPaused
	s.mu.Lock()
	switch kind {
	case controlPause:
		s.st.paused = true
		cleared = s.st.queue.Clear()
	case controlResume:
		s.st.paused = false
	case controlReset:
		reason = trace.ReasonReset
		cleared = s.st.queue.Clear()
		s.st.registry.Reset()
		s.st.round.Reset()
	}
	s.mu.Unlock()
	logrus.Infof("Scheduler %s applied, %d pending switches dropped", kind, len(cleared))
	s.discarded(cleared, s.clock(), reason)
}

func (s *Scheduler) send(ctx context.Context, kind controlKind) error {
	msg := controlMsg{kind: kind, done: make(chan struct{})}
	select {
	case s.control <- msg:
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", kind, ctx.Err())
	}
	select {
	case <-msg.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", kind, ctx.Err())
	}
}

// Pause stops ticking and drops pending switches.
// It blocks until the Run loop applies it or ctx is done.
func (s *Scheduler) Pause(ctx context.Context) error { return s.send(ctx, controlPause) }

// Resume restarts ticking and admission after Pause.
func (s *Scheduler) Resume(ctx context.Context) error { return s.send(ctx, controlResume) }

// Reset forgets all participants, pending switches and the round phase.
func (s *Scheduler) Reset(ctx context.Context) error { return s.send(ctx, controlReset) }

// Status returns a copy of the current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Phase:        s.st.round.Phase(),
		Paused:       s.st.paused,
		Pending:      s.st.queue.Len(),
		Participants: s.st.registry.All(),
	}
}

// Participant returns the stored state of one participant.
func (s *Scheduler) Participant(id string) (Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.registry.Get(id)
}

// Pending returns copies of the queued switches in admission order.
func (s *Scheduler) Pending() []PendingSwitch {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.st.queue.Items()
	out := make([]PendingSwitch, len(items))
	for i, ps := range items {
		out[i] = *ps
	}
	return out
}

func (s *Scheduler) discarded(cleared []*PendingSwitch, at time.Time, reason string) {
	for _, ps := range cleared {
		s.recorder.Record(newRecord(trace.KindDiscarded, ps, ps.Priority, at, reason))
	}
}

func newRecord(kind trace.Kind, ps *PendingSwitch, prio Priority, at time.Time, reason string) trace.Record {
	return trace.Record{
		Kind:          kind,
		At:            at,
		SwitchID:      ps.ID,
		ParticipantID: ps.ParticipantID,
		Name:          ps.Name,
		Slot:          ps.Slot,
		Priority:      int(prio),
		ScoreDelta:    ps.ScoreDelta,
		FireAt:        ps.FireAt,
		Reason:        reason,
	}
}
