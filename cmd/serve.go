package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solacelabs/solace/internal/api"
	"github.com/solacelabs/solace/internal/events"
	"github.com/solacelabs/solace/internal/watcher"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the full service: inline driver, watcher and HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := wireApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("solace starting", "port", a.cfg.Port)

	// Inline driver: process conversations the moment their session ends.
	if a.bus != nil {
		if err := a.bus.Subscribe(events.SubjectSessionEnded, a.proc.HandleSessionEnded); err != nil {
			return err
		}
	}

	// Polling driver: catch-up and retry path.
	w := watcher.New(a.eleven, a.proc, a.ledger, a.cfg.AgentID, a.cfg.ListPageSize,
		a.cfg.WatchInterval, a.cfg.ProcessPause, a.metrics, a.logger)
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("watcher exited", "error", err)
		}
	}()

	srv := api.NewServer(a.cfg.Port, a.eleven, a.publisher, a.ledger, a.index,
		a.cfg.AgentID, a.cfg.ListPageSize, a.profilesDir)
	go func() {
		if err := srv.Start(); err != nil {
			a.logger.Error("HTTP server error", "error", err)
		}
	}()

	a.logger.Info("solace ready", "port", a.cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	cancel()
	return nil
}
