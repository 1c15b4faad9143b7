// Package proxy is the widget's HTTP client for the assistant server routes.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/usecase"
)

// StatusError is a non-2xx answer from the server
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the server routes
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var (
	_ usecase.Proxy           = (*Client)(nil)
	_ usecase.AvatarRequester = (*Client)(nil)
)

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
}

// Chat sends a message to the completion route
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.postJSON(ctx, "/api/chatgpt", map[string]string{"message": message}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Transcribe uploads a recording as the multipart field "audio"
func (c *Client) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", fmt.Errorf("failed to write language: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transcribe", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp struct {
		Text string `json:"text"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Speak returns the synthesized audio for text
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/api/tts", map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call /api/tts: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}

// Avatar forwards a call to the avatar provider. GET requests use the query form.
func (c *Client) Avatar(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	var (
		req *http.Request
		err error
	)
	if strings.EqualFold(method, http.MethodGet) {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/api/tavus?endpoint="+url.QueryEscape(endpoint), nil)
	} else {
		req, err = c.newJSONRequest(ctx, http.MethodPost, "/api/tavus", map[string]any{
			"endpoint": endpoint,
			"method":   method,
			"body":     body,
		})
	}
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Feedback reports a like or dislike
func (c *Client) Feedback(ctx context.Context, feedback entities.Feedback) error {
	return c.postJSON(ctx, "/api/feedback", map[string]string{
		"messageId": feedback.MessageID,
		"type":      string(feedback.Kind),
		"content":   feedback.Content,
	}, nil)
}

// Comment reports a comment on a message
func (c *Client) Comment(ctx context.Context, comment entities.Comment) error {
	return c.postJSON(ctx, "/api/comment", map[string]string{
		"messageId": comment.MessageID,
		"content":   comment.Content,
		"comment":   comment.Comment,
	}, nil)
}

// Notify sends captured contact details to the admin mailbox
func (c *Client) Notify(ctx context.Context, notification entities.ContactNotification) error {
	return c.postJSON(ctx, "/api/send-email", notification, nil)
}

// SessionToken is the answer of the session route
type SessionToken struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Session opens a widget session for the voice channel
func (c *Client) Session(ctx context.Context, language string) (*SessionToken, error) {
	var token SessionToken
	if err := c.postJSON(ctx, "/api/session", map[string]string{"language": language}, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		c.logger.Debug("Server returned error",
			zap.String("path", req.URL.Path),
			zap.Int("statusCode", resp.StatusCode),
			zap.Error(err))
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
}
