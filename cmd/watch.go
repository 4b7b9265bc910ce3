package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/solacelabs/solace/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for unprocessed conversations until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if interval <= 0 {
				interval = a.cfg.WatchInterval
			}

			w := watcher.New(a.eleven, a.proc, a.ledger, a.cfg.AgentID, a.cfg.ListPageSize,
				interval, a.cfg.ProcessPause, a.metrics, a.logger)
			return w.Run(cmd.Context())
		},
	}

	watchCmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from SOLACE_WATCH_INTERVAL)")
	return watchCmd
}
