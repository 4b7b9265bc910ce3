package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	stdout, err := executeCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(stdout) != version {
		t.Errorf("version output = %q, want %q", stdout, version)
	}
}

func TestRootListsSubcommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"serve", "watch", "process", "republish", "analyze", "version"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestProcessRequiresConversationID(t *testing.T) {
	_, err := executeCLI(t, "process")
	if err == nil {
		t.Fatal("expected an error when no conversation id is given")
	}
}

func TestAnalyzeRequiresGroqKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	_, err := executeCLI(t, "analyze", "some-transcript.txt")
	if err == nil || !strings.Contains(err.Error(), "GROQ_API_KEY") {
		t.Fatalf("expected missing-key error, got %v", err)
	}
}

func TestServeRequiresAPIKeys(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	_, err := executeCLI(t, "serve")
	if err == nil || !strings.Contains(err.Error(), "ELEVENLABS_API_KEY") {
		t.Fatalf("expected missing-key error, got %v", err)
	}
}
