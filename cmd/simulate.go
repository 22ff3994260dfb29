package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/replay-director/replay-director/director"
	"github.com/replay-director/replay-director/director/gsi"
	"github.com/replay-director/replay-director/director/trace"
)

var simulateSched schedulerFlags

// simulateCmd replays a recorded GSI session offline.
var simulateCmd = &cobra.Command{
	Use:   "simulate <recording.jsonl>",
	Short: "Replay a recorded GSI session through the scheduler on a virtual clock",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath, nil)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		simulateSched.apply(cmd, &cfg)
		dcfg := cfg.Director()
		if err := dcfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			logrus.Fatalf("Failed to open recording: %v", err)
		}
		defer func() { _ = f.Close() }()

		out := cmd.OutOrStdout()
		summary, err := simulate(f, dcfg, out)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		_, _ = fmt.Fprintln(out, "=== Summary ===")
		enc := yaml.NewEncoder(out)
		if err := enc.Encode(summary); err != nil {
			logrus.Fatalf("Failed to encode summary: %v", err)
		}
		_ = enc.Close()
	},
}

// simEpoch anchors the virtual clock; only offsets from it are printed.
var simEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// simulate feeds each recorded line {"offset_ms": N, "payload": {...}} to a
// scheduler at its offset, ticking the virtual clock at cfg.Tick, and writes
// one line per issued switch to w. Ticks due at an event's offset run before
// the event is ingested. After the last event the clock runs until the queue
// is empty.
func simulate(r io.Reader, cfg director.Config, w io.Writer) (*trace.Summary, error) {
	now := simEpoch
	tr := trace.NewDecisionTrace()
	act := director.ActuatorFunc(func(_ context.Context, t director.Target) error {
		_, err := fmt.Fprintf(w, "%+9.3fs  slot %2d  %s (%s)\n",
			now.Sub(simEpoch).Seconds(), t.Slot, t.Name, t.ParticipantID)
		return err
	})
	sched, err := director.NewScheduler(cfg, act,
		director.WithClock(func() time.Time { return now }),
		director.WithRecorder(tr))
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	nextTick := simEpoch.Add(cfg.Tick)
	advance := func(until time.Time) {
		for !nextTick.After(until) {
			now = nextTick
			sched.Tick(ctx, now)
			nextTick = nextTick.Add(cfg.Tick)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if !gjson.ValidBytes(raw) {
			logrus.Warnf("line %d: invalid JSON, skipped", line)
			continue
		}
		at := simEpoch.Add(time.Duration(gjson.GetBytes(raw, "offset_ms").Int()) * time.Millisecond)
		if at.Before(now) {
			return nil, fmt.Errorf("line %d: offset goes backwards (%v < %v)", line, at.Sub(simEpoch), now.Sub(simEpoch))
		}
		snap, err := gsi.Parse([]byte(gjson.GetBytes(raw, "payload").Raw))
		if err != nil {
			logrus.Warnf("line %d: %v, skipped", line, err)
			continue
		}
		advance(at)
		now = at
		sched.Ingest(snap)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	for len(sched.Pending()) > 0 {
		advance(nextTick)
	}
	return trace.Summarize(tr.Records()), nil
}

func init() {
	simulateSched.register(simulateCmd)
}
