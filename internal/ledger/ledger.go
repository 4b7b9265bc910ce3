// Package ledger tracks which conversation ids have completed the
// processing pipeline. An id, once recorded, is never removed; the ledger
// is consulted before any (re)processing to enforce at-most-once
// semantics across restarts and across the inline and watcher drivers.
package ledger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/solacelabs/solace/internal/faults"
)

// Ledger is the injected completion set the orchestrator consults.
type Ledger interface {
	Contains(id string) bool
	Record(id string) error
}

// File is the durable ledger: a newline-delimited, append-only list of
// conversation ids. Each Record is one open-append-sync-close cycle so a
// crash mid-write cannot corrupt prior entries.
type File struct {
	path string

	mu          sync.Mutex
	ids         map[string]struct{}
	needNewline bool // loaded file ended mid-line; next append must open a fresh line
}

// OpenFile loads the ledger at path, creating an empty one in memory if
// the file does not exist yet. A trailing line without a newline is a torn
// write from a crashed process and is ignored; the conversation will
// simply be picked up again by the next poll.
func OpenFile(path string) (*File, error) {
	l := &File{path: path, ids: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read ledger: %w: %v", faults.ErrStorage, err)
	}

	l.needNewline = len(data) > 0 && data[len(data)-1] != '\n'

	lines := strings.Split(string(data), "\n")
	last := len(lines) - 1
	for i, line := range lines {
		if i == last && line != "" {
			continue // torn trailing write
		}
		id := strings.TrimSpace(line)
		if id != "" {
			l.ids[id] = struct{}{}
		}
	}
	return l, nil
}

func (l *File) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}

// Record appends the id to the ledger file and the in-memory mirror.
// Recording an id that is already present is a no-op, so an id lands in
// the file at most once per process even when both drivers race.
func (l *File) Record(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; ok {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w: %v", faults.ErrStorage, err)
	}
	entry := id + "\n"
	if l.needNewline {
		entry = "\n" + entry
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return fmt.Errorf("append ledger: %w: %v", faults.ErrStorage, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync ledger: %w: %v", faults.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w: %v", faults.ErrStorage, err)
	}

	l.needNewline = false
	l.ids[id] = struct{}{}
	return nil
}

// Len reports how many ids the ledger holds.
func (l *File) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// Memory is an in-memory Ledger for tests and dry runs.
type Memory struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (m *Memory) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}

func (m *Memory) Record(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}
