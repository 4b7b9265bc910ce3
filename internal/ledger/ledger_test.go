package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestOpenFile_Missing(t *testing.T) {
	l, err := OpenFile(filepath.Join(t.TempDir(), "ledger.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty ledger, got %d ids", l.Len())
	}
}

func TestRecordAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if l.Contains("conv-1") {
		t.Error("fresh ledger must not contain conv-1")
	}
	if err := l.Record("conv-1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !l.Contains("conv-1") {
		t.Error("expected conv-1 after record")
	}

	// Survives a reopen.
	l2, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !l2.Contains("conv-1") {
		t.Error("expected conv-1 after reopen")
	}
}

func TestRecord_IdempotentOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, _ := OpenFile(path)

	for i := 0; i < 5; i++ {
		if err := l.Record("conv-dup"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "conv-dup"); got != 1 {
		t.Errorf("expected id written exactly once, found %d occurrences", got)
	}
}

func TestRecord_ConcurrentSameID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, _ := OpenFile(path)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Record("conv-race")
		}()
	}
	wg.Wait()

	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), "conv-race"); got != 1 {
		t.Errorf("expected exactly one line for concurrent records, got %d", got)
	}
}

func TestOpenFile_ToleratesTornTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	if err := os.WriteFile(path, []byte("conv-a\nconv-b\nconv-c"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := OpenFile(path)
	if err != nil {
		t.Fatalf("torn trailing line must not fail the load: %v", err)
	}
	if !l.Contains("conv-a") || !l.Contains("conv-b") {
		t.Error("expected complete lines to load")
	}
	if l.Contains("conv-c") {
		t.Error("torn trailing id must be dropped so the conversation is retried")
	}

	// Recording after a torn line keeps the file parseable.
	if err := l.Record("conv-d"); err != nil {
		t.Fatal(err)
	}
	l2, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !l2.Contains("conv-d") {
		t.Error("expected conv-d after append to torn file")
	}
}
