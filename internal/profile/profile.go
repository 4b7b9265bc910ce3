// Package profile holds the structured user profile derived from one
// transcript, and its durable JSON artifact store.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/solacelabs/solace/internal/faults"
)

// Record is the six-field profile extracted from a conversation. Every
// field carries a fallback default: a Record is either fully populated or
// not produced at all.
type Record struct {
	UserName       string   `json:"user_name"`
	Mood           string   `json:"mood"`
	EmotionTrend   string   `json:"emotion_trend"`
	Topics         []string `json:"topics"`
	ProfileTags    []string `json:"profile_tags"`
	PersonaSummary string   `json:"persona_summary"`
}

const maxTopics = 5

// ApplyDefaults fills any undeterminable field with its fallback and caps
// the topic list, so downstream formatting never deals with a partial
// record.
func (r *Record) ApplyDefaults() {
	if strings.TrimSpace(r.UserName) == "" {
		r.UserName = "Unknown"
	}
	if strings.TrimSpace(r.Mood) == "" {
		r.Mood = "neutral"
	}
	if strings.TrimSpace(r.EmotionTrend) == "" {
		r.EmotionTrend = "stable"
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	if len(r.Topics) > maxTopics {
		r.Topics = r.Topics[:maxTopics]
	}
	if r.ProfileTags == nil {
		r.ProfileTags = []string{}
	}
	if strings.TrimSpace(r.PersonaSummary) == "" {
		r.PersonaSummary = "No summary available"
	}
}

// Store writes profile artifacts. When dir is empty the output directory
// is derived per conversation as a "user_profiles" sibling of the
// transcript's parent directory; a non-empty dir overrides that layout
// assumption for deployments that keep artifacts elsewhere.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Save writes the record as an indented JSON artifact linked by filename
// to its source transcript, and returns the artifact path.
func (s *Store) Save(rec Record, transcriptPath string) (string, error) {
	rec.ApplyDefaults()

	dir := s.dir
	if dir == "" {
		abs, err := filepath.Abs(transcriptPath)
		if err != nil {
			return "", fmt.Errorf("resolve transcript path: %w: %v", faults.ErrStorage, err)
		}
		dir = filepath.Join(filepath.Dir(filepath.Dir(abs)), "user_profiles")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create profile dir: %w: %v", faults.ErrStorage, err)
	}

	base := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	stamp := s.now().Format("20060102_150405")
	name := fmt.Sprintf("user_profile_%s_%s", base, stamp)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	for attempt := 1; attempt <= 100; attempt++ {
		candidate := name + ".json"
		if attempt > 1 {
			candidate = fmt.Sprintf("%s_%d.json", name, attempt)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("create profile file: %w: %v", faults.ErrStorage, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write profile: %w: %v", faults.ErrStorage, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close profile: %w: %v", faults.ErrStorage, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free name for profile %s: %w", name, faults.ErrStorage)
}

// Load reads a stored profile artifact back into a Record.
func Load(path string) (Record, error) {
	var rec Record
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("read profile: %w: %v", faults.ErrStorage, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parse profile %s: %w", path, err)
	}
	rec.ApplyDefaults()
	return rec, nil
}

// ListDir returns the paths of all profile artifacts in dir, sorted by
// name (which sorts by source transcript and generation timestamp).
func ListDir(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "user_profile_*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan profile dir: %w", err)
	}
	return matches, nil
}
