package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solacelabs/solace/internal/elevenlabs"
	"github.com/solacelabs/solace/internal/extractor"
	"github.com/solacelabs/solace/internal/faults"
	"github.com/solacelabs/solace/internal/groq"
	"github.com/solacelabs/solace/internal/knowledge"
	"github.com/solacelabs/solace/internal/ledger"
	"github.com/solacelabs/solace/internal/observability"
	"github.com/solacelabs/solace/internal/profile"
	"github.com/solacelabs/solace/internal/transcript"
)

// Prometheus instruments register globally, so the test binary shares one set.
var testMetrics = observability.NewMetrics("solace_pipeline_test")

const profileJSON = `{
	"user_name": "Alex",
	"mood": "hopeful",
	"emotion_trend": "improving",
	"topics": ["gardening", "family"],
	"profile_tags": ["#open"],
	"persona_summary": "Alex is looking forward to spring."
}`

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func conversationBody(id string, turns [][2]string) string {
	entries := make([]map[string]string, len(turns))
	for i, t := range turns {
		entries[i] = map[string]string{"role": t[0], "message": t[1]}
	}
	b, _ := json.Marshal(map[string]any{
		"conversation_id": id,
		"status":          "done",
		"transcript":      entries,
	})
	return string(b)
}

type testEnv struct {
	proc   *Processor
	ledger *ledger.Memory
	dir    string
}

// newTestEnv wires a Processor against two stub servers: one playing the
// conversation API (fetch + knowledge upload), one playing the LLM.
func newTestEnv(t *testing.T, elevenHandler http.HandlerFunc, llmHandler http.HandlerFunc) testEnv {
	t.Helper()

	elevenSrv := httptest.NewServer(elevenHandler)
	t.Cleanup(elevenSrv.Close)
	llmSrv := httptest.NewServer(llmHandler)
	t.Cleanup(llmSrv.Close)

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	eleven := elevenlabs.NewClient("test-key", elevenSrv.URL)
	llm := groq.NewClient("test-key", "test-model")
	llm.SetTestTransport(llmSrv.URL)

	led := ledger.NewMemory()
	proc := New(
		eleven,
		transcript.NewStore(filepath.Join(dir, "conversations")),
		extractor.New(llm, 0.5, 1024, 0, logger),
		profile.NewStore(filepath.Join(dir, "user_profiles")),
		knowledge.NewPublisher(eleven, logger),
		led,
		nil,
		nil,
		testMetrics,
		logger,
	)
	return testEnv{proc: proc, ledger: led, dir: dir}
}

func TestProcess_HappyPath(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/convai/conversations/"):
				w.Write([]byte(conversationBody("conv-1", [][2]string{
					{"user", "Hi, I planted tomatoes today."},
					{"agent", "That sounds lovely!"},
				})))
			case r.Method == http.MethodPost && r.URL.Path == "/v1/convai/knowledge-base/text":
				w.Write([]byte(`{"id": "doc-1"}`))
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionBody(profileJSON)))
		},
	)

	res := env.proc.Process(context.Background(), "conv-1")
	if res.Err != nil {
		t.Fatalf("Process returned error: %v", res.Err)
	}
	if res.State != StateDone {
		t.Errorf("state = %s, want %s", res.State, StateDone)
	}
	if !res.Published {
		t.Error("expected profile to be published")
	}
	if !env.ledger.Contains("conv-1") {
		t.Error("expected conversation marked in ledger")
	}

	data, err := os.ReadFile(res.TranscriptPath)
	if err != nil {
		t.Fatalf("reading transcript artifact: %v", err)
	}
	want := "User: Hi, I planted tomatoes today.\nAgent: That sounds lovely!"
	if string(data) != want {
		t.Errorf("transcript = %q, want %q", data, want)
	}

	rec, err := profile.Load(res.ProfilePath)
	if err != nil {
		t.Fatalf("loading profile artifact: %v", err)
	}
	if rec.UserName != "Alex" || rec.Mood != "hopeful" {
		t.Errorf("unexpected profile %+v", rec)
	}
}

func TestProcess_EmptyTranscript(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(conversationBody("conv-empty", nil)))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("LLM should not be called for an empty transcript")
		},
	)

	res := env.proc.Process(context.Background(), "conv-empty")
	if !errors.Is(res.Err, faults.ErrEmptyTranscript) {
		t.Fatalf("expected ErrEmptyTranscript, got %v", res.Err)
	}
	if env.ledger.Contains("conv-empty") {
		t.Error("empty conversation must not be marked done")
	}
}

func TestProcess_FetchFailure(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("LLM should not be called when fetch fails")
		},
	)

	res := env.proc.Process(context.Background(), "conv-down")
	if !errors.Is(res.Err, faults.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", res.Err)
	}
	if env.ledger.Contains("conv-down") {
		t.Error("unfetched conversation must not be marked done")
	}
}

func TestProcess_ExtractionFailureStillDone(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				t.Error("nothing should be published without a profile")
			}
			w.Write([]byte(conversationBody("conv-2", [][2]string{{"user", "Hello"}})))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionBody("Sorry, I cannot produce JSON today.")))
		},
	)

	res := env.proc.Process(context.Background(), "conv-2")
	if res.Err != nil {
		t.Fatalf("extraction failure must not fail the run: %v", res.Err)
	}
	if res.State != StateDone {
		t.Errorf("state = %s, want %s", res.State, StateDone)
	}
	if res.ProfilePath != "" {
		t.Errorf("expected no profile artifact, got %s", res.ProfilePath)
	}
	if !env.ledger.Contains("conv-2") {
		t.Error("conversation with saved transcript must be marked done")
	}
	if res.TranscriptPath == "" {
		t.Error("transcript artifact should exist")
	}
}

func TestProcess_PublishFailureStillDone(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(conversationBody("conv-3", [][2]string{{"user", "Hello"}})))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionBody(profileJSON)))
		},
	)

	res := env.proc.Process(context.Background(), "conv-3")
	if res.Err != nil {
		t.Fatalf("publish failure must not fail the run: %v", res.Err)
	}
	if res.Published {
		t.Error("expected Published=false after upload failure")
	}
	if res.ProfilePath == "" {
		t.Error("profile artifact should still be written locally")
	}
	if !env.ledger.Contains("conv-3") {
		t.Error("conversation must be marked done despite publish failure")
	}
}

func TestProcess_EscalationFlagged(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.Write([]byte(`{"id": "doc-1"}`))
				return
			}
			w.Write([]byte(conversationBody("conv-4", [][2]string{
				{"user", "Honestly I feel hopeless and want to end it."},
				{"agent", "I'm here with you."},
			})))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionBody(profileJSON)))
		},
	)

	res := env.proc.Process(context.Background(), "conv-4")
	if res.Err != nil {
		t.Fatalf("Process returned error: %v", res.Err)
	}
	if !res.Escalated {
		t.Error("expected escalation flag for crisis language in a user turn")
	}
}

func TestHandleSessionEnded_SkipsProcessed(t *testing.T) {
	var calls int
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(conversationBody("conv-5", [][2]string{{"user", "Hello"}})))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionBody(profileJSON)))
		},
	)

	env.ledger.Record("conv-5")

	evt, _ := json.Marshal(map[string]string{"conversation_id": "conv-5"})
	env.proc.HandleSessionEnded("solace.session.ended", evt)

	if calls != 0 {
		t.Errorf("expected no upstream calls for an already-processed conversation, got %d", calls)
	}
}

func TestHandleSessionEnded_BadPayload(t *testing.T) {
	env := newTestEnv(t,
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("no upstream call expected for a malformed event")
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	env.proc.HandleSessionEnded("solace.session.ended", []byte("{not json"))
	env.proc.HandleSessionEnded("solace.session.ended", []byte(`{"agent_id":"a1"}`))
}
