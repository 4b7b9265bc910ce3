// Package transcript persists finished conversations as flat text
// artifacts, one line per turn. Artifacts are immutable once written and
// are never deleted by this system.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/solacelabs/solace/internal/faults"
)

type Speaker string

const (
	SpeakerUser  Speaker = "User"
	SpeakerAgent Speaker = "Agent"
)

// Turn is one speaker-tagged utterance. Slice order is chronological.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Format renders turns in the on-disk line format: "<Speaker>: <message>".
func Format(turns []Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = fmt.Sprintf("%s: %s", t.Speaker, t.Text)
	}
	return strings.Join(lines, "\n")
}

// Parse reads the on-disk line format back into turns. A line without a
// speaker prefix is a continuation of the previous turn's message.
func Parse(text string) []Turn {
	var turns []Turn
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, string(SpeakerUser)+": "); ok {
			turns = append(turns, Turn{Speaker: SpeakerUser, Text: rest})
			continue
		}
		if rest, ok := strings.CutPrefix(line, string(SpeakerAgent)+": "); ok {
			turns = append(turns, Turn{Speaker: SpeakerAgent, Text: rest})
			continue
		}
		if len(turns) > 0 {
			turns[len(turns)-1].Text += "\n" + line
		}
	}
	return turns
}

// Store writes transcript artifacts under a fixed directory.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Save writes one new transcript file for the conversation and returns its
// path. It never overwrites: timestamp granularity is seconds, so a second
// save for the same conversation within the same second gets a numeric
// suffix instead of clobbering the first attempt.
func (s *Store) Save(conversationID string, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("conversation %s: %w", conversationID, faults.ErrEmptyTranscript)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w: %v", faults.ErrStorage, err)
	}

	stamp := s.now().Format("20060102_150405")
	base := fmt.Sprintf("conversation_%s_%s", conversationID, stamp)

	path, f, err := createExclusive(s.dir, base, ".txt")
	if err != nil {
		return "", fmt.Errorf("create transcript file: %w: %v", faults.ErrStorage, err)
	}

	if _, err := f.WriteString(Format(turns)); err != nil {
		f.Close()
		return "", fmt.Errorf("write transcript: %w: %v", faults.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close transcript: %w: %v", faults.ErrStorage, err)
	}

	return path, nil
}

// createExclusive opens base+ext with O_EXCL, falling back to _2, _3, ...
// when an artifact with the same name already exists.
func createExclusive(dir, base, ext string) (string, *os.File, error) {
	for attempt := 1; attempt <= 100; attempt++ {
		name := base + ext
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d%s", base, attempt, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
	return "", nil, fmt.Errorf("no free name for %s%s after 100 attempts", base, ext)
}

// ReadFile loads a stored transcript's full text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w: %v", faults.ErrStorage, err)
	}
	return string(data), nil
}
