// Package knowledge formats user profiles as prose and publishes them
// into the conversational agent's knowledge base so future sessions are
// personalized.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/profile"
)

// FormatProfile renders the record as the fixed-order text block the
// knowledge base stores. The order and labels are part of the external
// contract; the agent retrieves this as free text, not JSON.
func FormatProfile(rec profile.Record) string {
	rec.ApplyDefaults()

	var sb strings.Builder
	sb.WriteString("User Profile Analysis:\n")
	fmt.Fprintf(&sb, "Name: %s\n", rec.UserName)
	fmt.Fprintf(&sb, "Current Mood: %s\n", rec.Mood)
	fmt.Fprintf(&sb, "Emotion Trend: %s\n", rec.EmotionTrend)
	fmt.Fprintf(&sb, "Key Topics: %s\n", strings.Join(rec.Topics, ", "))
	fmt.Fprintf(&sb, "Profile Tags: %s\n", strings.Join(rec.ProfileTags, ", "))
	fmt.Fprintf(&sb, "Summary: %s", rec.PersonaSummary)
	return sb.String()
}

// DocumentName derives the knowledge-base document name from a profile
// artifact path.
func DocumentName(profilePath string) string {
	return "User Profile - " + filepath.Base(profilePath)
}

type Publisher struct {
	client *elevenlabs.Client
	logger *slog.Logger
}

func NewPublisher(client *elevenlabs.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish uploads one profile under the given document name.
func (p *Publisher) Publish(ctx context.Context, rec profile.Record, name string) error {
	docID, err := p.client.UploadKnowledgeText(ctx, name, FormatProfile(rec))
	if err != nil {
		return fmt.Errorf("upload profile %q: %w", name, err)
	}
	p.logger.Info("profile published to knowledge base", "name", name, "document_id", docID)
	return nil
}

// RepublishAll uploads every stored profile artifact in dir. Failed
// uploads are logged and counted, not fatal; this is the independent
// retry path for uploads that failed during pipeline runs.
func (p *Publisher) RepublishAll(ctx context.Context, dir string) (published, failed int, err error) {
	paths, err := profile.ListDir(dir)
	if err != nil {
		return 0, 0, err
	}

	for _, path := range paths {
		rec, err := profile.Load(path)
		if err != nil {
			p.logger.Error("skipping unreadable profile", "path", path, "error", err)
			failed++
			continue
		}
		if err := p.Publish(ctx, rec, DocumentName(path)); err != nil {
			p.logger.Error("republish failed", "path", path, "error", err)
			failed++
			continue
		}
		published++
	}

	p.logger.Info("batch republish complete", "published", published, "failed", failed)
	return published, failed, nil
}
