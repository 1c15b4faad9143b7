// Package config loads settings from the environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Provider names accepted by the *_PROVIDER settings
const (
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
)

// Config is the proxy server configuration. Secrets are optional at load time:
// a route whose secret is missing fails on its own without stopping the server.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	KnowledgeDir   string   `env:"KNOWLEDGE_DIR" envDefault:"public"`
	JWTSecret      string   `env:"JWT_SECRET"`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"openai"`
	STTProvider string `env:"STT_PROVIDER" envDefault:"openai"`
	TTSProvider string `env:"TTS_PROVIDER" envDefault:"openai"`

	OpenAI     OpenAI
	Gemini     Gemini
	Google     GoogleSpeech
	ElevenLabs ElevenLabs
	Tavus      Tavus
	SMTP       SMTP
	Mongo      Mongo
	Redis      Redis
	Public     Public
}

type OpenAI struct {
	APIKey             string  `env:"OPENAI_API_KEY"`
	BaseURL            string  `env:"OPENAI_BASE_URL"`
	ChatModel          string  `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o"`
	Temperature        float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.8"`
	MaxTokens          int     `env:"OPENAI_MAX_TOKENS" envDefault:"1000"`
	TTSModel           string  `env:"OPENAI_TTS_MODEL" envDefault:"tts-1"`
	TTSVoice           string  `env:"OPENAI_TTS_VOICE" envDefault:"nova"`
	TranscribeLanguage string  `env:"TRANSCRIBE_LANGUAGE" envDefault:"pt"`
}

type Gemini struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

type GoogleSpeech struct {
	Language   string `env:"GOOGLE_SPEECH_LANGUAGE" envDefault:"pt-PT"`
	SampleRate int    `env:"GOOGLE_SPEECH_SAMPLE_RATE" envDefault:"48000"`
	Encoding   string `env:"GOOGLE_SPEECH_ENCODING" envDefault:"WEBM_OPUS"`
}

type ElevenLabs struct {
	APIKey     string  `env:"ELEVEN_LABS_API_KEY"`
	APIBaseURL string  `env:"ELEVEN_LABS_API_BASE_URL"`
	VoiceID    string  `env:"ELEVEN_LABS_VOICE_ID"`
	ModelID    string  `env:"ELEVEN_LABS_MODEL_ID"`
	Stability  float64 `env:"ELEVEN_LABS_STABILITY"`
	Clarity    float64 `env:"ELEVEN_LABS_CLARITY"`
}

type Tavus struct {
	APIKey    string `env:"TAVUS_API_KEY"`
	BaseURL   string `env:"TAVUS_BASE_URL" envDefault:"https://api.tavus.io/v1"`
	ReplicaID string `env:"TAVUS_REPLICA_ID"`
	PersonaID string `env:"TAVUS_PERSONA_ID"`
}

type SMTP struct {
	Host       string `env:"SMTP_HOST"`
	Port       int    `env:"SMTP_PORT" envDefault:"587"`
	User       string `env:"SMTP_USER"`
	Pass       string `env:"SMTP_PASS"`
	From       string `env:"SMTP_FROM"`
	AdminEmail string `env:"ADMIN_EMAIL"`
}

// Validate reports which mail settings are missing
func (s SMTP) Validate() error {
	var missing []string
	if s.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if s.From == "" && s.User == "" {
		missing = append(missing, "SMTP_FROM")
	}
	if s.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing mail configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Mongo struct {
	URI      string `env:"MONGODB_URI"`
	Database string `env:"MONGODB_DATABASE" envDefault:"dengun_assistant"`
}

type Redis struct {
	URL string `env:"REDIS_URL"`
}

// Public settings are safe to hand to the widget
type Public struct {
	AvatarReplicaID string `env:"TAVUS_REPLICA_ID" json:"avatarReplicaId,omitempty"`
	AvatarPersonaID string `env:"TAVUS_PERSONA_ID" json:"avatarPersonaId,omitempty"`
	DatabaseURL     string `env:"DATABASE_URL" json:"databaseUrl,omitempty"`
	DatabaseAnonKey string `env:"DATABASE_ANON_KEY" json:"databaseAnonKey,omitempty"`
}

// Widget is the terminal client configuration
type Widget struct {
	ServerURL   string `env:"ASSISTANT_SERVER_URL" envDefault:"http://localhost:8080"`
	Language    string `env:"ASSISTANT_LANGUAGE"`
	Theme       string `env:"ASSISTANT_THEME" envDefault:"light"`
	Preferences string `env:"ASSISTANT_PREFERENCES"`
	ReplicaID   string `env:"TAVUS_REPLICA_ID"`
	PersonaID   string `env:"TAVUS_PERSONA_ID"`
}

// loadDotEnv loads .env.local then .env. Values already set in the environment win.
func loadDotEnv() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the server configuration
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadWidget reads the terminal client configuration
func LoadWidget() (*Widget, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Widget
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse widget config: %w", err)
	}
	return &cfg, nil
}
