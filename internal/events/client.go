// Package events is the NATS bus surface for the companion pipeline. The
// inline driver subscribes to session-end events; the pipeline publishes
// processing milestones and escalation alerts.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectSessionEnded carries one event per finished live session and
	// feeds the inline post-session driver.
	SubjectSessionEnded = "solace.session.ended"

	// SubjectConversationProcessed announces a pipeline run reaching Done.
	SubjectConversationProcessed = "solace.conversation.processed"

	// SubjectEscalationDetected fires when the real-time classifier flags
	// a user turn during a live session.
	SubjectEscalationDetected = "solace.escalation.detected"
)

// SessionEnded is the payload on SubjectSessionEnded.
type SessionEnded struct {
	ConversationID string    `json:"conversation_id"`
	AgentID        string    `json:"agent_id"`
	EndedAt        time.Time `json:"ended_at"`
}

// ConversationProcessed is the payload on SubjectConversationProcessed.
type ConversationProcessed struct {
	EventID        string    `json:"event_id"`
	ConversationID string    `json:"conversation_id"`
	TranscriptPath string    `json:"transcript_path"`
	ProfilePath    string    `json:"profile_path,omitempty"`
	Published      bool      `json:"published"`
	Timestamp      time.Time `json:"timestamp"`
}

// EscalationDetected is the payload on SubjectEscalationDetected.
type EscalationDetected struct {
	ConversationID string    `json:"conversation_id"`
	Text           string    `json:"text"`
	Emotion        string    `json:"emotion"`
	Timestamp      time.Time `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
