package trace

import (
	"sync"
	"testing"
	"time"
)

func TestDecisionTrace_RecordsInArrivalOrder(t *testing.T) {
	// GIVEN a trace with three records
	dt := NewDecisionTrace()
	dt.Record(Record{Kind: KindAdmitted, SwitchID: "a"})
	dt.Record(Record{Kind: KindFired, SwitchID: "a"})
	dt.Record(Record{Kind: KindAdmitted, SwitchID: "b"})

	// WHEN read back
	got := dt.Records()

	// THEN order is preserved
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Kind != KindAdmitted || got[1].Kind != KindFired || got[2].SwitchID != "b" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestDecisionTrace_Records_ReturnsCopy(t *testing.T) {
	dt := NewDecisionTrace()
	dt.Record(Record{Kind: KindAdmitted, SwitchID: "a"})

	got := dt.Records()
	got[0].SwitchID = "mutated"

	if dt.Records()[0].SwitchID != "a" {
		t.Error("mutating the returned slice changed the trace")
	}
}

func TestDecisionTrace_Filter(t *testing.T) {
	dt := NewDecisionTrace()
	dt.Record(Record{Kind: KindAdmitted})
	dt.Record(Record{Kind: KindDiscarded, Reason: ReasonUnselected})
	dt.Record(Record{Kind: KindDiscarded, Reason: ReasonDeadTarget})

	if n := len(dt.Filter(KindDiscarded)); n != 2 {
		t.Errorf("expected 2 discards, got %d", n)
	}
	if n := len(dt.Filter(KindFired)); n != 0 {
		t.Errorf("expected 0 fires, got %d", n)
	}
}

func TestDecisionTrace_ConcurrentRecord(t *testing.T) {
	dt := NewDecisionTrace()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				dt.Record(Record{Kind: KindAdmitted})
			}
		}()
	}
	wg.Wait()

	if n := len(dt.Records()); n != 800 {
		t.Errorf("expected 800 records, got %d", n)
	}
}

func TestRecorders_FansOut(t *testing.T) {
	a, b := NewDecisionTrace(), NewDecisionTrace()
	Recorders{a, b}.Record(Record{Kind: KindFired, At: time.Unix(10, 0)})

	if len(a.Records()) != 1 || len(b.Records()) != 1 {
		t.Errorf("expected one record in each recorder, got %d and %d", len(a.Records()), len(b.Records()))
	}
}
