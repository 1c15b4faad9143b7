package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

// VoiceTurnService runs the server side of a spoken exchange:
// speech to text, chat reply, text to speech
type VoiceTurnService struct {
	transcriber repositories.Transcriber
	chat        *ChatService
	synthesizer repositories.Synthesizer
	logger      *zap.Logger
}

// NewVoiceTurnService creates a new voice turn service. Any provider may be nil;
// the matching step then fails with ErrProviderNotConfigured.
func NewVoiceTurnService(
	transcriber repositories.Transcriber,
	chat *ChatService,
	synthesizer repositories.Synthesizer,
	logger *zap.Logger,
) *VoiceTurnService {
	return &VoiceTurnService{
		transcriber: transcriber,
		chat:        chat,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Transcribe converts one utterance to text. An empty result is not an error.
func (s *VoiceTurnService) Transcribe(ctx context.Context, audio repositories.AudioInput) (string, error) {
	if s.transcriber == nil {
		return "", ErrProviderNotConfigured
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	s.logger.Info("Transcription completed",
		zap.Int("audioBytes", len(audio.Data)),
		zap.Int("textLength", len(text)))
	return text, nil
}

// Respond produces the assistant reply for a transcript within a session
func (s *VoiceTurnService) Respond(ctx context.Context, sessionID, transcript string) (string, error) {
	if s.chat == nil {
		return "", ErrProviderNotConfigured
	}
	return s.chat.ReplyInSession(ctx, sessionID, transcript)
}

// Speak synthesizes reply. Callers must close the returned body.
func (s *VoiceTurnService) Speak(ctx context.Context, reply string) (*repositories.SynthesizedAudio, error) {
	if s.synthesizer == nil {
		return nil, ErrProviderNotConfigured
	}

	audio, err := s.synthesizer.Synthesize(ctx, reply)
	if err != nil {
		return nil, fmt.Errorf("text-to-speech failed: %w", err)
	}
	return audio, nil
}
