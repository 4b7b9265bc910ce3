package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SOLACE_PORT", "SOLACE_LOG_LEVEL", "SOLACE_NATS_URL", "SOLACE_DATABASE_URL",
		"SOLACE_ELEVENLABS_URL", "SOLACE_AGENT_ID", "SOLACE_GROQ_MODEL",
		"SOLACE_CONVERSATIONS_DIR", "SOLACE_LEDGER_PATH", "SOLACE_WATCH_INTERVAL",
		"ELEVENLABS_API_KEY", "GROQ_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 8820 {
		t.Errorf("expected default port 8820, got %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.ElevenLabsURL != "https://api.elevenlabs.io" {
		t.Errorf("expected default elevenlabs url, got %s", cfg.ElevenLabsURL)
	}
	if cfg.GroqModel != "llama3-70b-8192" {
		t.Errorf("expected default groq model, got %s", cfg.GroqModel)
	}
	if cfg.GroqTemperature != 0.5 {
		t.Errorf("expected default temperature 0.5, got %f", cfg.GroqTemperature)
	}
	if cfg.ConversationsDir != "conversations" {
		t.Errorf("expected default conversations dir, got %s", cfg.ConversationsDir)
	}
	if cfg.LedgerPath != "processed_conversation_ids.txt" {
		t.Errorf("expected default ledger path, got %s", cfg.LedgerPath)
	}
	if cfg.WatchInterval != time.Minute {
		t.Errorf("expected default watch interval 1m, got %s", cfg.WatchInterval)
	}
	if cfg.ProcessPause != 2*time.Second {
		t.Errorf("expected default process pause 2s, got %s", cfg.ProcessPause)
	}
	if cfg.UpstreamRetries != 3 {
		t.Errorf("expected default upstream retries 3, got %d", cfg.UpstreamRetries)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("SOLACE_PORT", "9001")
	t.Setenv("SOLACE_LOG_LEVEL", "debug")
	t.Setenv("SOLACE_WATCH_INTERVAL", "30s")
	t.Setenv("SOLACE_CONVERSATIONS_DIR", "/data/conversations")
	t.Setenv("ELEVENLABS_API_KEY", "xi-test-key")
	t.Setenv("GROQ_API_KEY", "gsk-test-key")

	cfg := Load()

	if cfg.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.WatchInterval != 30*time.Second {
		t.Errorf("expected watch interval 30s, got %s", cfg.WatchInterval)
	}
	if cfg.ConversationsDir != "/data/conversations" {
		t.Errorf("expected custom conversations dir, got %s", cfg.ConversationsDir)
	}
	if cfg.ElevenLabsAPIKey != "xi-test-key" {
		t.Errorf("expected elevenlabs key from env, got %s", cfg.ElevenLabsAPIKey)
	}
	if cfg.GroqAPIKey != "gsk-test-key" {
		t.Errorf("expected groq key from env, got %s", cfg.GroqAPIKey)
	}
}
