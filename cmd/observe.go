package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/replay-director/replay-director/director"
	"github.com/replay-director/replay-director/director/actuate"
	"github.com/replay-director/replay-director/director/journal"
	"github.com/replay-director/replay-director/director/telemetry"
	"github.com/replay-director/replay-director/director/trace"
	"github.com/replay-director/replay-director/director/transport"
)

var (
	observeSched    schedulerFlags
	observeListen   string
	observeRelay    string
	observeActuator string
	observeJournal  string
)

// observeCmd runs the director on the replay observer PC.
var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Follow the action on the delayed replay feed",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath, nil)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		observeSched.apply(cmd, &cfg)
		if cmd.Flags().Changed("listen") {
			cfg.Listen = observeListen
		}
		if cmd.Flags().Changed("relay") {
			cfg.RelayURL = observeRelay
		}
		if cmd.Flags().Changed("actuator") {
			cfg.Actuator.Kind = observeActuator
		}
		if cmd.Flags().Changed("journal") {
			cfg.Journal = observeJournal
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runObserver(ctx, cfg); err != nil {
			logrus.Fatalf("Observer failed: %v", err)
		}
		logrus.Info("Observer stopped.")
	},
}

// runObserver serves the GSI webhook and control API, optionally consumes the
// relay feed, and drives the scheduler until ctx is cancelled.
func runObserver(ctx context.Context, cfg FileConfig) error {
	shutdownTracing, err := telemetry.Setup(ctx, "replay-director", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	act, err := actuate.New(cfg.Actuator)
	if err != nil {
		return err
	}
	if nc, ok := act.(*actuate.NetCon); ok {
		defer func() { _ = nc.Close() }()
	}

	session := trace.NewDecisionTrace()
	recorders := trace.Recorders{session}
	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()
		recorders = append(recorders, j)
	}

	sched, err := director.NewScheduler(cfg.Director(), act, director.WithRecorder(recorders))
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           transport.NewMux(sched),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	g.Go(func() error {
		logrus.Infof("Listening for GSI on %s", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.RelayURL != "" {
		sub := &transport.Subscriber{URL: cfg.RelayURL, Handle: transport.SnapshotHandler(sched)}
		g.Go(func() error { return sub.Run(gctx) })
	}

	err = g.Wait()
	summary := trace.Summarize(session.Records())
	logrus.Infof("Session: %d admitted, %d fired, %d failed, %d discarded",
		summary.Admitted, summary.Fired, summary.Failed, summary.Discarded)
	return err
}

func init() {
	observeSched.register(observeCmd)
	observeCmd.Flags().StringVar(&observeListen, "listen", ":3000", "GSI webhook and control API address")
	observeCmd.Flags().StringVar(&observeRelay, "relay", "", "Relay websocket URL, e.g. ws://pov-pc:6789/ws")
	observeCmd.Flags().StringVar(&observeActuator, "actuator", "keystroke", "Switch actuator (keystroke, netcon, log)")
	observeCmd.Flags().StringVar(&observeJournal, "journal", "", "SQLite journal path")
}
