package director

import "context"

// Target identifies who the camera should follow.
type Target struct {
	Slot          int // observer slot, UnknownSlot if never reported
	ParticipantID string
	Name          string
}

// SwitchActuator moves the observing camera. Calls may perform I/O and are
// never made while the scheduler holds its lock.
type SwitchActuator interface {
	SwitchTo(ctx context.Context, target Target) error
}

// ActuatorFunc adapts a function to SwitchActuator.
type ActuatorFunc func(ctx context.Context, target Target) error

func (f ActuatorFunc) SwitchTo(ctx context.Context, target Target) error {
	return f(ctx, target)
}
