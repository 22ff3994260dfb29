package trace

// Summary aggregates statistics from a set of decision records.
type Summary struct {
	Admitted         int            `yaml:"admitted"`
	Fired            int            `yaml:"fired"`
	Failed           int            `yaml:"failed"`
	Discarded        int            `yaml:"discarded"`
	DiscardReasons   map[string]int `yaml:"discard_reasons"`
	SlotDistribution map[int]int    `yaml:"slot_distribution"` // slot → switches issued (fired or failed)
	MeanLatencyMs    float64        `yaml:"mean_latency_ms"`   // issue time minus fire time
	MaxLatencyMs     float64        `yaml:"max_latency_ms"`
}

// Summarize computes aggregate statistics from records.
// Safe for nil or empty input (returns zero-value counts and empty maps).
func Summarize(records []Record) *Summary {
	s := &Summary{
		DiscardReasons:   make(map[string]int),
		SlotDistribution: make(map[int]int),
	}
	var totalLatency float64
	issued := 0
	for _, r := range records {
		switch r.Kind {
		case KindAdmitted:
			s.Admitted++
		case KindDiscarded:
			s.Discarded++
			s.DiscardReasons[r.Reason]++
		case KindFired, KindFailed:
			if r.Kind == KindFired {
				s.Fired++
			} else {
				s.Failed++
			}
			s.SlotDistribution[r.Slot]++
			latency := float64(r.At.Sub(r.FireAt).Microseconds()) / 1e3
			totalLatency += latency
			if latency > s.MaxLatencyMs {
				s.MaxLatencyMs = latency
			}
			issued++
		}
	}
	if issued > 0 {
		s.MeanLatencyMs = totalLatency / float64(issued)
	}
	return s
}
