package director

import (
	"fmt"
	"time"
)

// Config groups the scheduler's tunables.
type Config struct {
	Delay        time.Duration // broadcast delay added to every switch (>= 0)
	Tick         time.Duration // selection cadence (> 0, much smaller than Delay)
	PriorityMode string        // "creation" (default) or "live"
	ReadyPolicy  string        // "discard" (default) or "retain"
}

// DefaultConfig matches a 7s GOTV delay polled every 100ms.
func DefaultConfig() Config {
	return Config{
		Delay:        7 * time.Second,
		Tick:         100 * time.Millisecond,
		PriorityMode: "creation",
		ReadyPolicy:  "discard",
	}
}

// Validate checks ranges and policy names.
func (c Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %v", c.Delay)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	}
	if !ValidPriorityModes[c.PriorityMode] {
		return fmt.Errorf("unknown priority mode %q", c.PriorityMode)
	}
	if !ValidReadyPolicies[c.ReadyPolicy] {
		return fmt.Errorf("unknown ready policy %q", c.ReadyPolicy)
	}
	return nil
}

// retainUnselected reports whether ready-but-unselected switches survive a tick.
func (c Config) retainUnselected() bool {
	return c.ReadyPolicy == "retain"
}
