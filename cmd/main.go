package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/internal/api"
	"github.com/dengun/assistant/server/internal/config"
	"github.com/dengun/assistant/server/internal/prompt"
	"github.com/dengun/assistant/server/internal/service"
	"github.com/dengun/assistant/server/internal/websocket"
	"github.com/dengun/assistant/server/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	p := buildProviders(ctx, cfg, logger)
	defer p.close()

	// Initialize usecase services
	chatService := usecase.NewChatService(p.completer, prompt.NewKnowledge(cfg.KnowledgeDir), p.history, logger)
	voiceTurns := usecase.NewVoiceTurnService(p.transcriber, chatService, p.synthesizer, logger)

	// Initialize WebSocket hub with the voice turn service
	hub := websocket.NewHub(voiceTurns, cfg.AllowedOrigins, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(api.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))
	e.Use(api.ThemeHeader())
	e.Use(api.LanguageNegotiation())

	// Initialize API routes
	api.InitRoutes(e, api.Dependencies{
		Chat:               chatService,
		Transcriber:        p.transcriber,
		TranscribeLanguage: cfg.OpenAI.TranscribeLanguage,
		Synthesizer:        p.synthesizer,
		Avatar:             p.avatar,
		Mailer:             p.mailer,
		Feedback:           p.feedback,
		Tokens:             p.tokens,
		Hub:                hub,
		Public:             cfg.Public,
	}, logger)

	services := service.Group{
		httpService(e, ":"+cfg.Port, logger),
		hub,
	}
	if p.sweeper != nil {
		services = append(services, websocket.NewHistoryCleanupService(p.sweeper, 30*time.Minute, logger))
	}

	logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("llmProvider", cfg.LLMProvider),
		zap.String("sttProvider", cfg.STTProvider),
		zap.String("ttsProvider", cfg.TTSProvider))

	if err := services.Run(ctx); err != nil {
		logger.Error("Server stopped with errors", zap.Error(err))
		return
	}
	logger.Info("Server exited")
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// httpService runs echo until ctx is done, then shuts it down gracefully
func httpService(e *echo.Echo, addr string, logger *zap.Logger) service.Service {
	return service.Func{
		ServiceName: "http",
		RunFunc: func(ctx context.Context) error {
			errCh := make(chan error, 1)
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("Server is shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
