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

	"github.com/replay-director/replay-director/director/transport"
)

var (
	relayGSIListen string
	relayWSListen  string
)

// relayCmd runs on the POV PC: the game posts GSI locally and the relay
// forwards every payload to the replay observers over websocket.
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Forward local GSI posts to replay observers over websocket",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runRelay(ctx, relayGSIListen, relayWSListen); err != nil {
			logrus.Fatalf("Relay failed: %v", err)
		}
		logrus.Info("Relay stopped.")
	},
}

func runRelay(ctx context.Context, gsiAddr, wsAddr string) error {
	relay := transport.NewRelay()
	defer relay.Close()

	gsiMux := http.NewServeMux()
	gsiMux.HandleFunc("POST /{$}", relay.HandleGSI)
	servers := []*http.Server{
		{Addr: gsiAddr, Handler: gsiMux, ReadHeaderTimeout: 5 * time.Second},
		{Addr: wsAddr, Handler: http.HandlerFunc(relay.HandleWS), ReadHeaderTimeout: 5 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logrus.Infof("Relay listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}

func init() {
	relayCmd.Flags().StringVar(&relayGSIListen, "gsi-listen", ":3000", "Address the game posts GSI to")
	relayCmd.Flags().StringVar(&relayWSListen, "ws-listen", ":6789", "Websocket address replay observers connect to")
}
