package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

const (
	defaultWhisperLanguage = "pt"
	defaultAudioFilename   = "audio.webm"
)

var (
	// ErrMissingAPIKey is returned when the transcriber has no credentials
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrNoAudio is returned for an empty recording
	ErrNoAudio = errors.New("no audio data received")
)

// WhisperConfig holds configuration for the Whisper transcriber
// Required fields:
// - APIKey
// Optional fields with defaults:
// - BaseURL: OpenAI compatible endpoint
// - Language: default spoken language hint (default: "pt")
type WhisperConfig struct {
	APIKey   string
	BaseURL  string
	Language string
}

// WhisperTranscriber implements Transcriber using the whisper-1 model
type WhisperTranscriber struct {
	client   *openai.Client
	language string
	logger   *zap.Logger
}

var _ repositories.Transcriber = (*WhisperTranscriber)(nil)

// NewWhisperTranscriber creates a new Whisper transcriber
func NewWhisperTranscriber(config WhisperConfig, logger *zap.Logger) (*WhisperTranscriber, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	language := config.Language
	if language == "" {
		language = defaultWhisperLanguage
		logger.Info("Using default transcription language", zap.String("language", language))
	}

	return &WhisperTranscriber{
		client:   openai.NewClientWithConfig(clientConfig),
		language: language,
		logger:   logger,
	}, nil
}

// Transcribe uploads the recording and returns the recognised text
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio repositories.AudioInput) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrNoAudio
	}

	filename := audio.Filename
	if filename == "" {
		filename = defaultAudioFilename
	}
	language := audio.Language
	if language == "" {
		language = w.language
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio.Data),
		Language: language,
	})
	if err != nil {
		w.logger.Error("Transcription failed", zap.Int("audioBytes", len(audio.Data)), zap.Error(err))
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	w.logger.Debug("Transcription completed",
		zap.String("language", language),
		zap.Int("textLength", len(text)))
	return text, nil
}
