package actuate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/replay-director/replay-director/director"
)

const keyPlaceholder = "{key}"

// Keystroke presses the key mapped to the target's slot by running an
// external command, e.g. `xdotool key f4`. The observer window must have focus.
type Keystroke struct {
	keys    map[int]string
	command []string
}

// NewKeystroke creates a Keystroke actuator. command is an argv template in
// which every "{key}" is replaced by the slot's key.
func NewKeystroke(keys map[int]string, command []string) *Keystroke {
	return &Keystroke{keys: keys, command: command}
}

// Args returns the argv that switches to slot.
func (k *Keystroke) Args(slot int) ([]string, error) {
	key, ok := k.keys[slot]
	if !ok {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrUnmappedSlot)
	}
	args := make([]string, len(k.command))
	for i, a := range k.command {
		args[i] = strings.ReplaceAll(a, keyPlaceholder, key)
	}
	return args, nil
}

func (k *Keystroke) SwitchTo(ctx context.Context, target director.Target) error {
	args, err := k.Args(target.Slot)
	if err != nil {
		return err
	}
	logrus.Debugf("Pressing %s for %q (slot %d)", strings.ToUpper(k.keys[target.Slot]), target.Name, target.Slot)
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
