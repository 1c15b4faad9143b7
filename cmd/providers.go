package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/adapters/avatar"
	"github.com/dengun/assistant/server/adapters/llm"
	"github.com/dengun/assistant/server/adapters/mail"
	"github.com/dengun/assistant/server/adapters/memory"
	"github.com/dengun/assistant/server/adapters/mongo"
	"github.com/dengun/assistant/server/adapters/redis"
	"github.com/dengun/assistant/server/adapters/stt"
	"github.com/dengun/assistant/server/adapters/tts"
	"github.com/dengun/assistant/server/domain/repositories"
	"github.com/dengun/assistant/server/internal/auth"
	"github.com/dengun/assistant/server/internal/config"
	"github.com/dengun/assistant/server/internal/websocket"
)

// providers holds the adapters selected by configuration. A provider whose
// credentials are missing stays nil and its routes fail on their own.
type providers struct {
	completer   repositories.ChatCompleter
	transcriber repositories.Transcriber
	synthesizer repositories.Synthesizer
	avatar      repositories.AvatarProvider
	mailer      repositories.Mailer
	feedback    repositories.FeedbackRepository
	history     repositories.HistoryStore
	sweeper     websocket.Sweeper
	tokens      *auth.Issuer

	closers []func()
}

func (p *providers) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

func buildProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) *providers {
	p := &providers{}
	p.completer = buildCompleter(ctx, cfg, logger)
	p.transcriber = buildTranscriber(ctx, cfg, logger, p)
	p.synthesizer = buildSynthesizer(cfg, logger)

	if client, err := avatar.NewClient(avatar.Config{
		APIKey:  cfg.Tavus.APIKey,
		BaseURL: cfg.Tavus.BaseURL,
	}, logger); err != nil {
		logger.Warn("Avatar proxy disabled", zap.Error(err))
	} else {
		p.avatar = client
	}

	if mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		User:       cfg.SMTP.User,
		Pass:       cfg.SMTP.Pass,
		From:       cfg.SMTP.From,
		AdminEmail: cfg.SMTP.AdminEmail,
	}, logger); err != nil {
		logger.Warn("Contact notifications disabled", zap.Error(err))
	} else {
		p.mailer = mailer
	}

	p.feedback = buildFeedback(ctx, cfg, logger, p)
	p.history = buildHistory(ctx, cfg, logger, p)

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, session tokens will not survive a restart")
	}
	p.tokens, _ = auth.NewIssuer(secret)

	return p
}

func buildCompleter(ctx context.Context, cfg *config.Config, logger *zap.Logger) repositories.ChatCompleter {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini, err := llm.NewGeminiLLM(ctx, llm.GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
		}, logger)
		if err != nil {
			logger.Warn("Chat provider disabled", zap.String("provider", cfg.LLMProvider), zap.Error(err))
			return nil
		}
		return gemini
	default:
		chat, err := llm.NewOpenAIChat(llm.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.ChatModel,
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
		}, logger)
		if err != nil {
			logger.Warn("Chat provider disabled", zap.String("provider", cfg.LLMProvider), zap.Error(err))
			return nil
		}
		return chat
	}
}

func buildTranscriber(ctx context.Context, cfg *config.Config, logger *zap.Logger, p *providers) repositories.Transcriber {
	switch cfg.STTProvider {
	case config.ProviderGoogle:
		google, err := stt.NewGoogleTranscriber(ctx, stt.GoogleConfig{
			Language:   cfg.Google.Language,
			SampleRate: cfg.Google.SampleRate,
			Encoding:   cfg.Google.Encoding,
		}, logger)
		if err != nil {
			logger.Warn("Transcription disabled", zap.String("provider", cfg.STTProvider), zap.Error(err))
			return nil
		}
		p.closers = append(p.closers, func() { google.Close() })
		return google
	default:
		whisper, err := stt.NewWhisperTranscriber(stt.WhisperConfig{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Language: cfg.OpenAI.TranscribeLanguage,
		}, logger)
		if err != nil {
			logger.Warn("Transcription disabled", zap.String("provider", cfg.STTProvider), zap.Error(err))
			return nil
		}
		return whisper
	}
}

func buildSynthesizer(cfg *config.Config, logger *zap.Logger) repositories.Synthesizer {
	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		eleven, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
			APIKey:     cfg.ElevenLabs.APIKey,
			APIBaseURL: cfg.ElevenLabs.APIBaseURL,
			VoiceID:    cfg.ElevenLabs.VoiceID,
			ModelID:    cfg.ElevenLabs.ModelID,
			Stability:  cfg.ElevenLabs.Stability,
			Clarity:    cfg.ElevenLabs.Clarity,
		}, logger)
		if err != nil {
			logger.Warn("Speech synthesis disabled", zap.String("provider", cfg.TTSProvider), zap.Error(err))
			return nil
		}
		return eleven
	default:
		openaiTTS, err := tts.NewOpenAITTS(tts.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.TTSModel,
			Voice:   cfg.OpenAI.TTSVoice,
		}, logger)
		if err != nil {
			logger.Warn("Speech synthesis disabled", zap.String("provider", cfg.TTSProvider), zap.Error(err))
			return nil
		}
		return openaiTTS
	}
}

func buildFeedback(ctx context.Context, cfg *config.Config, logger *zap.Logger, p *providers) repositories.FeedbackRepository {
	if cfg.Mongo.URI == "" {
		logger.Info("MONGODB_URI not set, keeping feedback in memory")
		return memory.NewFeedbackRepository()
	}

	client, err := mongo.NewClient(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}, logger)
	if err != nil {
		logger.Error("Failed to connect to MongoDB, keeping feedback in memory", zap.Error(err))
		return memory.NewFeedbackRepository()
	}
	p.closers = append(p.closers, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Close(closeCtx)
	})
	return mongo.NewFeedbackRepository(client.Database)
}

func buildHistory(ctx context.Context, cfg *config.Config, logger *zap.Logger, p *providers) repositories.HistoryStore {
	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err == nil {
			p.closers = append(p.closers, func() { rdb.Close() })
			logger.Info("Voice history stored in Redis")
			return redis.NewHistoryStore(rdb)
		}
		logger.Error("Failed to connect to Redis, keeping voice history in memory", zap.Error(err))
	}

	store := memory.NewHistoryStore()
	p.sweeper = store
	return store
}
