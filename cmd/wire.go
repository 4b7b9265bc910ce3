package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/solacelabs/solace/internal/config"
	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/events"
	"github.com/solacelabs/solace/internal/extractor"
	"github.com/solacelabs/solace/internal/groq"
	"github.com/solacelabs/solace/internal/knowledge"
	"github.com/solacelabs/solace/internal/ledger"
	"github.com/solacelabs/solace/internal/observability"
	"github.com/solacelabs/solace/internal/pipeline"
	"github.com/solacelabs/solace/internal/profile"
	"github.com/solacelabs/solace/internal/store"
	"github.com/solacelabs/solace/internal/transcript"
)

// app is the fully wired processing stack shared by serve, watch and
// process. NATS and Postgres are optional: without them the pipeline
// still runs, it just emits no events and keeps no profile index.
type app struct {
	cfg         config.Config
	logger      *slog.Logger
	eleven      *elevenlabs.Client
	publisher   *knowledge.Publisher
	ledger      *ledger.File
	metrics     *observability.Metrics
	bus         *events.Client
	index       *store.Store
	proc        *pipeline.Processor
	profilesDir string
}

func wireApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	logger := slog.Default()

	if cfg.ElevenLabsAPIKey == "" {
		return nil, errors.New("ELEVENLABS_API_KEY is required")
	}
	if cfg.GroqAPIKey == "" {
		return nil, errors.New("GROQ_API_KEY is required")
	}

	led, err := ledger.OpenFile(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}
	logger.Info("ledger loaded", "path", cfg.LedgerPath, "processed", led.Len())

	eleven := elevenlabs.NewClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsURL)
	llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
	ext := extractor.New(llm, cfg.GroqTemperature, cfg.GroqMaxTokens, cfg.UpstreamRetries, logger)
	publisher := knowledge.NewPublisher(eleven, logger)
	metrics := observability.NewMetrics("solace")

	a := &app{
		cfg:         cfg,
		logger:      logger,
		eleven:      eleven,
		publisher:   publisher,
		ledger:      led,
		metrics:     metrics,
		profilesDir: resolveProfilesDir(cfg),
	}

	if cfg.NatsURL != "" {
		bus, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return nil, err
		}
		a.bus = bus
		logger.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		logger.Warn("NATS not configured, running without events")
	}

	if cfg.DatabaseURL != "" {
		index, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := index.EnsureSchema(ctx); err != nil {
			a.close()
			index.Close()
			return nil, err
		}
		a.index = index
		logger.Info("profile index connected")
	}

	a.proc = pipeline.New(
		eleven,
		transcript.NewStore(cfg.ConversationsDir),
		ext,
		profile.NewStore(cfg.ProfilesDir),
		publisher,
		led,
		a.bus,
		a.index,
		metrics,
		logger,
	)

	return a, nil
}

func (a *app) close() {
	if a.bus != nil {
		a.bus.Close()
	}
	if a.index != nil {
		a.index.Close()
	}
}

// resolveProfilesDir mirrors the profile store's derivation so list-style
// consumers (mood trends, republish) read the same directory the pipeline
// writes to.
func resolveProfilesDir(cfg config.Config) string {
	if cfg.ProfilesDir != "" {
		return cfg.ProfilesDir
	}
	return filepath.Join(filepath.Dir(cfg.ConversationsDir), "user_profiles")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
