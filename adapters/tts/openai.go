package tts

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

// OpenAIConfig holds configuration for the OpenAI speech adapter
// Required fields:
// - APIKey
// Optional fields with defaults:
// - BaseURL: OpenAI compatible endpoint
// - Model: speech model (default: "tts-1")
// - Voice: voice name (default: "nova")
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// OpenAITTS implements Synthesizer using the audio speech API
type OpenAITTS struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	logger *zap.Logger
}

var _ repositories.Synthesizer = (*OpenAITTS)(nil)

// NewOpenAITTS creates a new OpenAI speech adapter
func NewOpenAITTS(config OpenAIConfig, logger *zap.Logger) (*OpenAITTS, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := openai.SpeechModel(config.Model)
	if model == "" {
		model = openai.TTSModel1
		logger.Info("Using default speech model", zap.String("model", string(model)))
	}

	voice := openai.SpeechVoice(config.Voice)
	if voice == "" {
		voice = openai.VoiceNova
		logger.Info("Using default voice", zap.String("voice", string(voice)))
	}

	return &OpenAITTS{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		voice:  voice,
		logger: logger,
	}, nil
}

// Synthesize returns an MP3 stream for text
func (o *OpenAITTS) Synthesize(ctx context.Context, text string) (*repositories.SynthesizedAudio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	body, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		o.logger.Error("Speech synthesis failed", zap.Int("textLength", len(text)), zap.Error(err))
		return nil, fmt.Errorf("failed to create speech: %w", err)
	}

	return &repositories.SynthesizedAudio{ContentType: contentTypeMPEG, Body: body}, nil
}
