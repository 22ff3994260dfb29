package actuate

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/replay-director/replay-director/director"
)

// Log only reports switches. Used for dry runs and offline simulation.
type Log struct{}

func (l *Log) SwitchTo(_ context.Context, target director.Target) error {
	logrus.Infof("[dry-run] switch to %q (slot %d, id %s)", target.Name, target.Slot, target.ParticipantID)
	return nil
}
