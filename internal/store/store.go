// Package store is an optional Postgres index over extracted profiles.
// The filesystem under user_profiles/ stays the source of truth; the
// index exists so trend queries do not have to re-read every JSON file.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solacelabs/solace/internal/profile"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the profiles table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_profiles (
			id              uuid PRIMARY KEY,
			conversation_id text NOT NULL,
			user_name       text NOT NULL,
			mood            text NOT NULL,
			emotion_trend   text NOT NULL,
			topics          text[] NOT NULL,
			profile_tags    text[] NOT NULL,
			persona_summary text NOT NULL,
			profile_path    text NOT NULL,
			mood_score      double precision NOT NULL,
			created_at      timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ProfileRow is one indexed profile.
type ProfileRow struct {
	ID             uuid.UUID
	ConversationID string
	Record         profile.Record
	ProfilePath    string
	MoodScore      float64
	CreatedAt      time.Time
}

func (s *Store) InsertProfile(ctx context.Context, conversationID string, rec profile.Record, profilePath string, moodScore float64) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (id, conversation_id, user_name, mood, emotion_trend, topics, profile_tags, persona_summary, profile_path, mood_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, conversationID, rec.UserName, rec.Mood, rec.EmotionTrend, rec.Topics, rec.ProfileTags, rec.PersonaSummary, profilePath, moodScore,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert profile: %w", err)
	}
	return id, nil
}

// RecentProfiles returns the newest rows first, at most limit of them.
func (s *Store) RecentProfiles(ctx context.Context, limit int) ([]ProfileRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, user_name, mood, emotion_trend, topics, profile_tags, persona_summary, profile_path, mood_score, created_at
		FROM user_profiles
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var r ProfileRow
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.Record.UserName, &r.Record.Mood, &r.Record.EmotionTrend,
			&r.Record.Topics, &r.Record.ProfileTags, &r.Record.PersonaSummary, &r.ProfilePath, &r.MoodScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
