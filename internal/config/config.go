package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        int
	LogLevel    string
	NatsURL     string
	NatsToken   string
	DatabaseURL string

	ElevenLabsAPIKey string
	ElevenLabsURL    string
	AgentID          string

	GroqAPIKey      string
	GroqModel       string
	GroqTemperature float64
	GroqMaxTokens   int

	ConversationsDir string
	ProfilesDir      string
	LedgerPath       string

	WatchInterval   time.Duration
	ProcessPause    time.Duration
	ListPageSize    int
	UpstreamRetries int
}

// Load reads environment variables and applies defaults. All knobs use the
// SOLACE_ prefix except the two vendor API keys, which keep their
// conventional names.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("SOLACE")
	v.AutomaticEnv()

	v.SetDefault("port", 8820)
	v.SetDefault("log_level", "info")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_token", "")
	v.SetDefault("database_url", "")
	v.SetDefault("elevenlabs_url", "https://api.elevenlabs.io")
	v.SetDefault("agent_id", "")
	v.SetDefault("groq_model", "llama3-70b-8192")
	v.SetDefault("groq_temperature", 0.5)
	v.SetDefault("groq_max_tokens", 1024)
	v.SetDefault("conversations_dir", "conversations")
	v.SetDefault("profiles_dir", "")
	v.SetDefault("ledger_path", "processed_conversation_ids.txt")
	v.SetDefault("watch_interval", time.Minute)
	v.SetDefault("process_pause", 2*time.Second)
	v.SetDefault("list_page_size", 30)
	v.SetDefault("upstream_retries", 3)

	_ = v.BindEnv("elevenlabs_api_key", "ELEVENLABS_API_KEY")
	_ = v.BindEnv("groq_api_key", "GROQ_API_KEY")

	return Config{
		Port:             v.GetInt("port"),
		LogLevel:         v.GetString("log_level"),
		NatsURL:          v.GetString("nats_url"),
		NatsToken:        v.GetString("nats_token"),
		DatabaseURL:      v.GetString("database_url"),
		ElevenLabsAPIKey: v.GetString("elevenlabs_api_key"),
		ElevenLabsURL:    v.GetString("elevenlabs_url"),
		AgentID:          v.GetString("agent_id"),
		GroqAPIKey:       v.GetString("groq_api_key"),
		GroqModel:        v.GetString("groq_model"),
		GroqTemperature:  v.GetFloat64("groq_temperature"),
		GroqMaxTokens:    v.GetInt("groq_max_tokens"),
		ConversationsDir: v.GetString("conversations_dir"),
		ProfilesDir:      v.GetString("profiles_dir"),
		LedgerPath:       v.GetString("ledger_path"),
		WatchInterval:    v.GetDuration("watch_interval"),
		ProcessPause:     v.GetDuration("process_pause"),
		ListPageSize:     v.GetInt("list_page_size"),
		UpstreamRetries:  v.GetInt("upstream_retries"),
	}
}
