// Package watcher is the polling driver: on a fixed interval it lists the
// agent's recent conversations upstream and runs the pipeline for every id
// the ledger has not seen. It is the catch-up path for conversations whose
// session-end event was missed and the retry path for runs that stopped
// before the transcript was saved.
package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/ledger"
	"github.com/solacelabs/solace/internal/observability"
	"github.com/solacelabs/solace/internal/pipeline"
)

type Watcher struct {
	source   *elevenlabs.Client
	proc     *pipeline.Processor
	ledger   ledger.Ledger
	agentID  string
	pageSize int
	interval time.Duration
	pause    time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func New(
	source *elevenlabs.Client,
	proc *pipeline.Processor,
	led ledger.Ledger,
	agentID string,
	pageSize int,
	interval, pause time.Duration,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		source:   source,
		proc:     proc,
		ledger:   led,
		agentID:  agentID,
		pageSize: pageSize,
		interval: interval,
		pause:    pause,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. A failed sweep is logged and the loop keeps going; the
// upstream being down for one cycle is not a reason to stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher started",
		"interval", w.interval.String(),
		"agent_id", w.agentID,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if processed, err := w.Sweep(ctx); err != nil {
			w.logger.Error("sweep failed", "error", err)
		} else if processed > 0 {
			w.logger.Info("sweep complete", "processed", processed)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep lists recent conversations and processes the unseen ones in list
// order, pausing between runs to avoid hammering the upstream APIs.
func (w *Watcher) Sweep(ctx context.Context) (int, error) {
	summaries, err := w.source.ListConversations(ctx, w.agentID, w.pageSize)
	if err != nil {
		return 0, err
	}
	if w.metrics != nil {
		w.metrics.WatcherCycles.Inc()
	}

	var processed int
	for _, s := range summaries {
		if w.ledger.Contains(s.ConversationID) {
			continue
		}

		if processed > 0 && w.pause > 0 {
			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(w.pause):
			}
		}

		res := w.proc.Process(ctx, s.ConversationID)
		if res.Err != nil {
			// Already logged by the pipeline; the id stays off the
			// ledger so the next sweep retries it.
			continue
		}
		processed++
	}
	return processed, nil
}
