package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
	"github.com/dengun/assistant/server/internal/auth"
	"github.com/dengun/assistant/server/internal/config"
	"github.com/dengun/assistant/server/internal/websocket"
	"github.com/dengun/assistant/server/usecase"
)

// Dependencies are the providers behind the routes. A nil provider makes its
// route fail with 500 before any upstream call.
type Dependencies struct {
	Chat               *usecase.ChatService
	Transcriber        repositories.Transcriber
	TranscribeLanguage string
	Synthesizer        repositories.Synthesizer
	Avatar             repositories.AvatarProvider
	Mailer             repositories.Mailer
	Feedback           repositories.FeedbackRepository
	Tokens             *auth.Issuer
	Hub                *websocket.Hub
	Public             config.Public
}

type handler struct {
	deps   Dependencies
	logger *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	h := &handler{deps: deps, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "dengun-assistant",
		})
	})

	api := e.Group("/api")

	// Provider proxies
	api.POST("/chatgpt", h.chat)
	api.POST("/transcribe", h.transcribe)
	api.POST("/tts", h.speech)
	api.POST("/tavus", h.avatarPost)
	api.GET("/tavus", h.avatarGet)
	api.POST("/send-email", h.sendEmail)

	// Widget support
	if deps.Feedback != nil {
		api.POST("/feedback", h.feedback)
		api.POST("/comment", h.comment)
	}
	api.POST("/session", h.session)
	api.GET("/config", h.publicConfig)

	// Voice channel with session token validation
	if deps.Hub != nil {
		e.GET("/ws", h.voiceChannel)
	}
}
