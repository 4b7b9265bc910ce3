// Package pipeline orchestrates post-conversation processing: fetch the
// finished conversation, persist its transcript, extract a user profile,
// publish the profile to the agent's knowledge base, and record completion
// in the ledger. Both drivers (the inline session-end handler and the
// polling watcher) funnel into Process.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/events"
	"github.com/solacelabs/solace/internal/extractor"
	"github.com/solacelabs/solace/internal/faults"
	"github.com/solacelabs/solace/internal/knowledge"
	"github.com/solacelabs/solace/internal/ledger"
	"github.com/solacelabs/solace/internal/mood"
	"github.com/solacelabs/solace/internal/observability"
	"github.com/solacelabs/solace/internal/profile"
	"github.com/solacelabs/solace/internal/sentiment"
	"github.com/solacelabs/solace/internal/store"
	"github.com/solacelabs/solace/internal/transcript"
)

// State is how far a conversation got through the pipeline.
type State string

const (
	StateDiscovered       State = "discovered"
	StateTranscriptSaved  State = "transcript_saved"
	StateProfileExtracted State = "profile_extracted"
	StatePublished        State = "published"
	StateDone             State = "done"
)

// Result describes one Process run. Err is set only when the run stopped
// before the conversation could be marked done; such conversations stay
// off the ledger and are retried by a later poll.
type Result struct {
	ConversationID string
	State          State
	TranscriptPath string
	ProfilePath    string
	Published      bool
	Escalated      bool
	Err            error
}

// Processor wires the pipeline stages together. bus and index are
// optional; when nil the corresponding side effects are skipped.
type Processor struct {
	source      *elevenlabs.Client
	transcripts *transcript.Store
	extractor   *extractor.Extractor
	profiles    *profile.Store
	publisher   *knowledge.Publisher
	ledger      ledger.Ledger
	bus         *events.Client
	index       *store.Store
	metrics     *observability.Metrics
	logger      *slog.Logger
}

func New(
	source *elevenlabs.Client,
	transcripts *transcript.Store,
	ext *extractor.Extractor,
	profiles *profile.Store,
	publisher *knowledge.Publisher,
	led ledger.Ledger,
	bus *events.Client,
	index *store.Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		source:      source,
		transcripts: transcripts,
		extractor:   ext,
		profiles:    profiles,
		publisher:   publisher,
		ledger:      led,
		bus:         bus,
		index:       index,
		metrics:     metrics,
		logger:      logger,
	}
}

// Process runs the full pipeline for one conversation id. It never
// panics out: a panic in any stage is recovered and reported through
// Result.Err so a driver loop survives a poisoned conversation.
//
// Failure policy: a failure before the transcript artifact exists stops
// the run without marking the ledger, so the conversation is retried on
// the next poll. Failures after that point (extraction, profile storage,
// publishing) are logged and the conversation is still marked done; the
// transcript is safe on disk and profile uploads can be replayed with the
// republish path.
func (p *Processor) Process(ctx context.Context, conversationID string) (res Result) {
	start := time.Now()
	res = Result{ConversationID: conversationID, State: StateDiscovered}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic", "conversation_id", conversationID, "panic", r)
			res.Err = errors.New("pipeline panic")
		}
		p.observe(res, time.Since(start))
	}()

	p.logger.Info("processing conversation", "conversation_id", conversationID)

	conv, err := p.source.GetConversation(ctx, conversationID)
	if err != nil {
		p.logger.Error("fetch conversation failed", "conversation_id", conversationID, "error", err)
		res.Err = err
		return res
	}

	transcriptPath, err := p.transcripts.Save(conversationID, conv.Turns)
	if err != nil {
		if errors.Is(err, faults.ErrEmptyTranscript) {
			p.logger.Warn("conversation has no transcript yet, leaving for next poll", "conversation_id", conversationID)
		} else {
			p.logger.Error("transcript save failed", "conversation_id", conversationID, "error", err)
		}
		res.Err = err
		return res
	}
	res.State = StateTranscriptSaved
	res.TranscriptPath = transcriptPath
	p.logger.Info("transcript saved", "conversation_id", conversationID, "path", transcriptPath)

	res.Escalated = p.scanForEscalation(conversationID, conv.Turns)

	// From here on the run always ends at Done. The transcript artifact
	// exists, which is the part that cannot be regenerated once the
	// upstream conversation is deleted.
	text := transcript.Format(conv.Turns)
	rec, err := p.extractor.Extract(ctx, text)
	if err != nil {
		p.logger.Error("profile extraction failed, continuing without profile",
			"conversation_id", conversationID, "error", err)
		p.countStageFailure("extract")
		return p.finish(res)
	}
	res.State = StateProfileExtracted

	profilePath, err := p.profiles.Save(rec, transcriptPath)
	if err != nil {
		p.logger.Error("profile save failed, continuing",
			"conversation_id", conversationID, "error", err)
		p.countStageFailure("profile_store")
		return p.finish(res)
	}
	res.ProfilePath = profilePath

	p.indexProfile(ctx, conversationID, rec, profilePath)

	if err := p.publisher.Publish(ctx, rec, knowledge.DocumentName(profilePath)); err != nil {
		p.logger.Error("knowledge publish failed, profile kept locally",
			"conversation_id", conversationID, "error", err)
		p.countStageFailure("publish")
		return p.finish(res)
	}
	res.State = StatePublished
	res.Published = true
	if p.metrics != nil {
		p.metrics.ProfilesPublished.Inc()
	}

	return p.finish(res)
}

// finish marks the conversation done in the ledger and emits the
// processed event. A ledger write failure is the one late-stage failure
// that must surface as an error: without the mark the conversation would
// be reprocessed forever.
func (p *Processor) finish(res Result) Result {
	if err := p.ledger.Record(res.ConversationID); err != nil {
		p.logger.Error("ledger record failed", "conversation_id", res.ConversationID, "error", err)
		res.Err = err
		return res
	}
	res.State = StateDone

	if p.bus != nil {
		evt := events.ConversationProcessed{
			EventID:        uuid.New().String(),
			ConversationID: res.ConversationID,
			TranscriptPath: res.TranscriptPath,
			ProfilePath:    res.ProfilePath,
			Published:      res.Published,
			Timestamp:      time.Now().UTC(),
		}
		if err := p.bus.Publish(events.SubjectConversationProcessed, evt); err != nil {
			p.logger.Warn("processed event publish failed", "conversation_id", res.ConversationID, "error", err)
		}
	}

	p.logger.Info("conversation processed",
		"conversation_id", res.ConversationID,
		"profile_path", res.ProfilePath,
		"published", res.Published,
	)
	return res
}

// scanForEscalation checks the user's turns for crisis language and, when
// found, emits an escalation event for human follow-up.
func (p *Processor) scanForEscalation(conversationID string, turns []transcript.Turn) bool {
	for _, t := range turns {
		if t.Speaker != transcript.SpeakerUser {
			continue
		}
		emotion, escalate := sentiment.Analyze(t.Text)
		if !escalate {
			continue
		}
		p.logger.Warn("escalation detected in transcript",
			"conversation_id", conversationID,
			"emotion", string(emotion),
		)
		if p.metrics != nil {
			p.metrics.EscalationsDetected.Inc()
		}
		if p.bus != nil {
			evt := events.EscalationDetected{
				ConversationID: conversationID,
				Text:           t.Text,
				Emotion:        string(emotion),
				Timestamp:      time.Now().UTC(),
			}
			if err := p.bus.Publish(events.SubjectEscalationDetected, evt); err != nil {
				p.logger.Warn("escalation event publish failed", "conversation_id", conversationID, "error", err)
			}
		}
		return true
	}
	return false
}

// indexProfile mirrors the profile into the optional Postgres index.
// Index failures never affect the pipeline outcome.
func (p *Processor) indexProfile(ctx context.Context, conversationID string, rec profile.Record, profilePath string) {
	if p.index == nil {
		return
	}
	if _, err := p.index.InsertProfile(ctx, conversationID, rec, profilePath, mood.Score(rec)); err != nil {
		p.logger.Warn("profile index insert failed", "conversation_id", conversationID, "error", err)
	}
}

func (p *Processor) countStageFailure(stage string) {
	if p.metrics != nil {
		p.metrics.StageFailures.WithLabelValues(stage).Inc()
	}
}

func (p *Processor) observe(res Result, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	outcome := "done"
	switch {
	case errors.Is(res.Err, faults.ErrEmptyTranscript):
		outcome = "empty_transcript"
	case res.Err != nil:
		outcome = "failed"
	}
	p.metrics.ConversationsProcessed.WithLabelValues(outcome).Inc()
	p.metrics.ObserveProcessing(elapsed)
}

// HandleSessionEnded is the NATS handler for solace.session.ended and is
// the inline driver: it processes the conversation as soon as the live
// session finishes instead of waiting for the next watcher poll.
func (p *Processor) HandleSessionEnded(subject string, data []byte) {
	ctx := context.Background()

	var evt events.SessionEnded
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse session-ended event", "error", err)
		return
	}
	if evt.ConversationID == "" {
		p.logger.Error("session-ended event without conversation id")
		return
	}

	if p.ledger.Contains(evt.ConversationID) {
		p.logger.Info("conversation already processed, skipping", "conversation_id", evt.ConversationID)
		return
	}

	p.Process(ctx, evt.ConversationID)
}
