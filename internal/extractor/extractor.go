package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/solacelabs/solace/internal/faults"
	"github.com/solacelabs/solace/internal/groq"
	"github.com/solacelabs/solace/internal/profile"
)

// Extractor derives a user profile from a transcript's full text with a
// single structured LLM call.
type Extractor struct {
	llm         *groq.Client
	temperature float64
	maxTokens   int
	retries     int
	backoff     time.Duration
	logger      *slog.Logger
}

func New(llm *groq.Client, temperature float64, maxTokens, retries int, logger *slog.Logger) *Extractor {
	return &Extractor{
		llm:         llm,
		temperature: temperature,
		maxTokens:   maxTokens,
		retries:     retries,
		backoff:     time.Second,
		logger:      logger,
	}
}

// Extract sends the transcript to the model and parses the six-field
// profile from its response. Upstream failures are retried with
// exponential backoff up to the configured budget; a response that cannot
// be parsed is faults.ErrMalformedResponse and is never retried, since a
// fresh call to a non-deterministic model does not fix a systemic
// prompt/parse mismatch.
func (e *Extractor) Extract(ctx context.Context, transcriptText string) (profile.Record, error) {
	var rec profile.Record

	prompt := fmt.Sprintf(extractionPrompt, transcriptText)
	messages := []groq.Message{{Role: "user", Content: prompt}}

	e.logger.Info("extracting profile from transcript", "transcript_len", len(transcriptText))

	var raw string
	var err error
	wait := e.backoff
	for attempt := 0; ; attempt++ {
		raw, err = e.llm.Complete(ctx, messages, e.temperature, e.maxTokens)
		if err == nil {
			break
		}
		if !faults.Retryable(err) || attempt >= e.retries {
			return rec, fmt.Errorf("llm extraction: %w", err)
		}
		e.logger.Warn("llm call failed, backing off",
			"attempt", attempt+1,
			"wait", wait.String(),
			"error", err,
		)
		select {
		case <-ctx.Done():
			return rec, fmt.Errorf("llm extraction: %w: %v", faults.ErrUpstreamUnavailable, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}

	cleaned := stripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), &rec); err != nil {
		e.logger.Error("failed to parse extraction response",
			"error", err,
			"raw", raw,
		)
		return profile.Record{}, fmt.Errorf("parse extraction: %w: %v", faults.ErrMalformedResponse, err)
	}

	rec.ApplyDefaults()

	e.logger.Info("extraction complete",
		"mood", rec.Mood,
		"topics", len(rec.Topics),
		"tags", len(rec.ProfileTags),
	)

	return rec, nil
}

// stripFences removes a leading/trailing triple-backtick code fence (with
// or without a "json" tag). Models wrap JSON this way despite the prompt's
// instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
