package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

const (
	defaultAPIBaseURL   = "https://api.elevenlabs.io/v1"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM"   // Rachel voice
	defaultOutputFormat = "mp3_44100_128"          // same container the browser player expects
	defaultModelID      = "eleven_multilingual_v2" // handles pt, es, fr and de
	defaultStability    = 0.5
	defaultClarity      = 0.75
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter
// Required fields:
// - APIKey: Your Eleven Labs API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Eleven Labs API (default: "https://api.elevenlabs.io/v1")
// - VoiceID: The voice ID to use (default: "21m00Tcm4TlvDq8ikWAM" - Rachel voice)
// - ModelID: The model ID to use (default: "eleven_multilingual_v2")
// - OutputFormat: The output format (default: "mp3_44100_128")
// - Stability: Voice stability value between 0 and 1 (default: 0.5)
// - Clarity: Voice clarity/similarity boost value between 0 and 1 (default: 0.75)
type ElevenLabsConfig struct {
	APIKey       string  // Required: Eleven Labs API key
	APIBaseURL   string  // Optional: base URL of the Eleven Labs API
	VoiceID      string  // Optional: voice used for every reply
	ModelID      string  // Optional: synthesis model
	OutputFormat string  // Optional: Eleven Labs output format id
	Stability    float64 // Optional: voice stability between 0 and 1
	Clarity      float64 // Optional: similarity boost between 0 and 1
}

// ElevenLabsTTS implements Synthesizer using the Eleven Labs streaming API
type ElevenLabsTTS struct {
	apiKey       string
	apiBaseURL   string
	voiceID      string
	modelID      string
	outputFormat string
	stability    float64
	clarity      float64
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ repositories.Synthesizer = (*ElevenLabsTTS)(nil)

// ElevenLabsVoiceSettings represents voice settings for Eleven Labs API
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// ElevenLabsRequest represents the request payload for Eleven Labs TTS API
type ElevenLabsRequest struct {
	Text                   string                  `json:"text"`
	ModelID                string                  `json:"model_id"`
	VoiceSettings          ElevenLabsVoiceSettings `json:"voice_settings"`
	ApplyTextNormalization string                  `json:"apply_text_normalization,omitempty"`
}

func (c ElevenLabsConfig) validate() error {
	switch {
	case c.APIKey == "":
		return ErrMissingAPIKey
	case c.Stability < 0 || c.Stability > 1:
		return fmt.Errorf("stability must be between 0 and 1, got %f", c.Stability)
	case c.Clarity < 0 || c.Clarity > 1:
		return fmt.Errorf("clarity must be between 0 and 1, got %f", c.Clarity)
	}
	return nil
}

// NewElevenLabsTTS creates a new Eleven Labs TTS instance
func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &ElevenLabsTTS{
		apiKey:       config.APIKey,
		apiBaseURL:   strings.TrimRight(orDefault(logger, "apiBaseURL", config.APIBaseURL, defaultAPIBaseURL), "/"),
		voiceID:      orDefault(logger, "voiceID", config.VoiceID, defaultVoiceID),
		modelID:      orDefault(logger, "modelID", config.ModelID, defaultModelID),
		outputFormat: orDefault(logger, "outputFormat", config.OutputFormat, defaultOutputFormat),
		stability:    orDefault(logger, "stability", config.Stability, defaultStability),
		clarity:      orDefault(logger, "clarity", config.Clarity, defaultClarity),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       logger,
	}, nil
}

// orDefault returns value, or fallback when value is the zero value
func orDefault[T comparable](logger *zap.Logger, field string, value, fallback T) T {
	if v, ok := lo.Coalesce(value); ok {
		return v
	}
	logger.Info("Using default "+field, zap.Any(field, fallback))
	return fallback
}

// Synthesize opens a streaming synthesis request. A non-200 answer is an error
// so callers can fail before writing any audio.
func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text string) (*repositories.SynthesizedAudio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	// Create request payload
	requestBody, err := json.Marshal(ElevenLabsRequest{
		Text:                   text,
		ModelID:                e.modelID,
		ApplyTextNormalization: "auto",
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s/stream?output_format=%s&enable_logging=false",
		e.apiBaseURL, e.voiceID, e.outputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	// PCM output needs the audio/pcm accept header
	contentType := contentTypeMPEG
	if strings.HasPrefix(e.outputFormat, "pcm") {
		contentType = "audio/pcm"
	}
	httpReq.Header.Set("Accept", contentType)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	e.logger.Debug("Sending request to Eleven Labs API",
		zap.String("voiceID", e.voiceID),
		zap.String("modelID", e.modelID))

	// The body is handed to the caller unread so audio streams as it arrives
	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		e.logger.Error("Eleven Labs API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("eleven labs API returned status %d", resp.StatusCode)
	}

	return &repositories.SynthesizedAudio{ContentType: contentType, Body: resp.Body}, nil
}
