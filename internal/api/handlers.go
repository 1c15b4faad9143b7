package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/adapters/avatar"
	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
	"github.com/dengun/assistant/server/internal/i18n"
	"github.com/dengun/assistant/server/internal/websocket"
)

const (
	// Uploads larger than this are rejected by the transcription route.
	maxAudioBytes = 25 << 20

	conversationsEndpoint = "/conversations"
)

func (h *handler) chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Message is required"})
	}
	if h.deps.Chat == nil || !h.deps.Chat.Configured() {
		h.logger.Error("Chat provider is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get response from ChatGPT"})
	}

	reply, err := h.deps.Chat.Reply(c.Request().Context(), req.Message)
	if err != nil {
		h.logger.Error("Error in chat completion", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get response from ChatGPT"})
	}

	return c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

func (h *handler) transcribe(c echo.Context) error {
	header, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No audio file provided"})
	}
	if h.deps.Transcriber == nil {
		h.logger.Error("Transcription provider is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to transcribe audio"})
	}

	file, err := header.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded audio", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to transcribe audio"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded audio", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to transcribe audio"})
	}
	if len(data) > maxAudioBytes {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Audio file is too large"})
	}

	language := c.FormValue("language")
	if language == "" {
		language = h.deps.TranscribeLanguage
	}

	text, err := h.deps.Transcriber.Transcribe(c.Request().Context(), repositories.AudioInput{
		Data:     data,
		Filename: header.Filename,
		Language: language,
	})
	if err != nil {
		h.logger.Error("Error transcribing audio",
			zap.Int("audioBytes", len(data)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to transcribe audio"})
	}

	return c.JSON(http.StatusOK, TranscribeResponse{Text: text})
}

func (h *handler) speech(c echo.Context) error {
	var req SpeechRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Text is required"})
	}
	if h.deps.Synthesizer == nil {
		h.logger.Error("Speech provider is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate speech"})
	}

	audio, err := h.deps.Synthesizer.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		h.logger.Error("Error generating speech", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate speech"})
	}
	defer audio.Body.Close()

	contentType := audio.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="speech.mp3"`)
	return c.Stream(http.StatusOK, contentType, audio.Body)
}

func (h *handler) avatarPost(c echo.Context) error {
	var req AvatarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if h.deps.Avatar == nil {
		h.logger.Error("Tavus API key is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Tavus API key not configured"})
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Endpoint is required"})
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}
	return h.forwardAvatar(c, method, req.Endpoint, req.Body)
}

func (h *handler) avatarGet(c echo.Context) error {
	endpoint := c.QueryParam("endpoint")
	if strings.TrimSpace(endpoint) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Endpoint is required"})
	}
	if h.deps.Avatar == nil {
		h.logger.Error("Tavus API key is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Tavus API key not configured"})
	}
	return h.forwardAvatar(c, http.MethodGet, endpoint, nil)
}

func (h *handler) forwardAvatar(c echo.Context, method, endpoint string, body json.RawMessage) error {
	resp, err := h.deps.Avatar.Do(c.Request().Context(), method, endpoint, body)
	if err != nil {
		var apiErr *avatar.APIError
		switch {
		case errors.Is(err, avatar.ErrEndpointRequired):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Endpoint is required"})
		case errors.Is(err, avatar.ErrInvalidEndpoint):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid endpoint"})
		case errors.As(err, &apiErr):
			return c.JSON(apiErr.StatusCode, ErrorResponse{Error: apiErr.Message})
		default:
			h.logger.Error("Avatar API error",
				zap.String("method", method),
				zap.String("endpoint", endpoint),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Internal server error",
				Details: "avatar provider request failed",
			})
		}
	}

	data := resp.Body
	if method == http.MethodPost && isConversationCreate(endpoint) {
		data = withSessionURL(data)
	}
	return c.JSONBlob(resp.StatusCode, data)
}

func isConversationCreate(endpoint string) bool {
	normalized, err := avatar.NormalizeEndpoint(endpoint)
	if err != nil {
		return false
	}
	if i := strings.IndexAny(normalized, "?#"); i >= 0 {
		normalized = normalized[:i]
	}
	return strings.TrimSuffix(normalized, "/") == conversationsEndpoint
}

// withSessionURL adds session_url to a conversation object when a join URL can be found
func withSessionURL(data json.RawMessage) json.RawMessage {
	url, ok := avatar.SessionURL(data)
	if !ok {
		return data
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return data
	}
	encoded, err := json.Marshal(url)
	if err != nil {
		return data
	}
	fields["session_url"] = encoded

	out, err := json.Marshal(fields)
	if err != nil {
		return data
	}
	return out
}

func (h *handler) sendEmail(c echo.Context) error {
	var req entities.ContactNotification
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if h.deps.Mailer == nil {
		h.logger.Error("Mail is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Falha ao enviar registro"})
	}

	if err := h.deps.Mailer.SendContactNotification(c.Request().Context(), req); err != nil {
		h.logger.Error("Error sending contact notification", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Falha ao enviar registro"})
	}

	return c.JSON(http.StatusOK, NotificationResponse{
		Success: true,
		Message: "Registro enviado com sucesso",
	})
}

func (h *handler) feedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if req.MessageID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "messageId is required"})
	}
	kind, err := entities.ParseFeedbackKind(req.Type)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid feedback type"})
	}

	err = h.deps.Feedback.SaveFeedback(c.Request().Context(), &entities.Feedback{
		MessageID: req.MessageID,
		Kind:      kind,
		Content:   req.Content,
	})
	if err != nil {
		h.logger.Error("Failed to save feedback",
			zap.String("messageID", req.MessageID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save feedback"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) comment(c echo.Context) error {
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if req.MessageID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "messageId is required"})
	}
	if strings.TrimSpace(req.Comment) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Comment is required"})
	}

	err := h.deps.Feedback.SaveComment(c.Request().Context(), &entities.Comment{
		MessageID: req.MessageID,
		Content:   req.Content,
		Comment:   strings.TrimSpace(req.Comment),
	})
	if err != nil {
		h.logger.Error("Failed to save comment",
			zap.String("messageID", req.MessageID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save comment"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) session(c echo.Context) error {
	var req SessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
	}
	if h.deps.Tokens == nil {
		h.logger.Error("JWT secret is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create session"})
	}

	lang, ok := i18n.Parse(req.Language)
	if !ok {
		lang = RequestLanguage(c)
	}

	session := entities.NewSession(string(lang))
	token, err := h.deps.Tokens.GenerateSessionToken(session)
	if err != nil {
		h.logger.Error("Failed to generate session token",
			zap.String("sessionID", session.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create session"})
	}

	h.logger.Info("Session created",
		zap.String("sessionID", session.ID),
		zap.String("language", session.Language))

	return c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *handler) publicConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.deps.Public)
}

// voiceChannel upgrades to the voice websocket after validating the session token
func (h *handler) voiceChannel(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if bearer, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			token = bearer
		}
	}
	if token == "" {
		h.logger.Warn("WebSocket connection rejected: missing token")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Session token is required"})
	}
	if h.deps.Tokens == nil {
		h.logger.Error("JWT secret is not configured")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Voice channel is not available"})
	}

	claims, err := h.deps.Tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("WebSocket connection rejected: invalid token", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired session token"})
	}

	h.logger.Info("WebSocket connection authenticated", zap.String("sessionID", claims.SessionID))
	return websocket.ServeClient(h.deps.Hub, c, claims.SessionID, claims.Language)
}
