package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

// GoogleConfig holds defaults for Google Cloud Speech recognition.
// Credentials come from the ambient Google application credentials.
type GoogleConfig struct {
	Language   string
	SampleRate int
	Encoding   string
}

// GoogleTranscriber implements Transcriber for Google Cloud
type GoogleTranscriber struct {
	client *speech.Client
	config GoogleConfig
	logger *zap.Logger
}

var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a Google Cloud Speech client
func NewGoogleTranscriber(ctx context.Context, config GoogleConfig, logger *zap.Logger) (*GoogleTranscriber, error) {
	if config.Language == "" {
		config.Language = "pt-PT"
		logger.Info("Using default recognition language", zap.String("language", config.Language))
	}
	if config.Encoding == "" {
		config.Encoding = "WEBM_OPUS"
		logger.Info("Using default audio encoding", zap.String("encoding", config.Encoding))
	}
	if _, err := getAudioEncoding(config.Encoding); err != nil {
		return nil, err
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleTranscriber{client: client, config: config, logger: logger}, nil
}

// Transcribe runs a synchronous recognition over the whole recording
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio repositories.AudioInput) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrNoAudio
	}

	req, err := g.recognizeRequest(audio)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Recognize(ctx, req)
	if err != nil {
		g.logger.Error("Speech recognition failed", zap.Error(err))
		return "", fmt.Errorf("failed to recognize speech: %w", err)
	}

	// Only the best alternative of each result is kept
	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func (g *GoogleTranscriber) recognizeRequest(audio repositories.AudioInput) (*speechpb.RecognizeRequest, error) {
	encodingName := audio.Encoding
	if encodingName == "" {
		encodingName = g.config.Encoding
	}
	encoding, err := getAudioEncoding(encodingName)
	if err != nil {
		return nil, err
	}

	sampleRate := audio.SampleRate
	if sampleRate == 0 {
		sampleRate = g.config.SampleRate
	}

	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    recognitionLanguage(audio.Language, g.config.Language),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.Data},
		},
	}, nil
}

// Close releases the underlying gRPC connection
func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// recognitionLanguage maps a short language hint onto a BCP-47 tag
func recognitionLanguage(hint, fallback string) string {
	switch strings.ToLower(hint) {
	case "":
		return fallback
	case "pt":
		return "pt-PT"
	case "en":
		return "en-US"
	case "es":
		return "es-ES"
	case "fr":
		return "fr-FR"
	case "de":
		return "de-DE"
	default:
		return hint
	}
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
