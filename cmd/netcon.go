package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/replay-director/replay-director/director/actuate"
)

var (
	netconAddress  string
	netconPassword string
	netconWait     time.Duration
)

// netconCmd verifies the replay observer's console is reachable.
var netconCmd = &cobra.Command{
	Use:   "netcon-check",
	Short: "Connect to the NetCon console and echo a marker",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath, nil)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		nc := cfg.Actuator.NetCon
		if cmd.Flags().Changed("address") {
			nc.Address = netconAddress
		}
		if cmd.Flags().Changed("password") {
			nc.Password = netconPassword
		}

		ctx, cancel := context.WithTimeout(context.Background(), nc.Timeout+netconWait)
		defer cancel()
		out, err := actuate.Probe(ctx, nc, netconWait)
		if err != nil {
			logrus.Fatalf("NetCon check failed: %v", err)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
		if !strings.Contains(out, "NETCON_OK") {
			logrus.Fatalf("NetCon at %s answered without the marker", nc.Address)
		}
		logrus.Infof("NetCon at %s OK", nc.Address)
	},
}

func init() {
	netconCmd.Flags().StringVar(&netconAddress, "address", "127.0.0.1:2121", "NetCon console address")
	netconCmd.Flags().StringVar(&netconPassword, "password", "", "NetCon password")
	netconCmd.Flags().DurationVar(&netconWait, "wait", 500*time.Millisecond, "How long to collect console output")
}
