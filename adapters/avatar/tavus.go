// Package avatar forwards calls to the Tavus video avatar API.
package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/repositories"
)

const (
	defaultBaseURL = "https://api.tavus.io/v1"
	maxBodyBytes   = 1 << 20
)

var (
	// ErrMissingAPIKey is returned when TAVUS_API_KEY is not set
	ErrMissingAPIKey = errors.New("tavus api key is required")
	// ErrEndpointRequired is returned for an empty endpoint path
	ErrEndpointRequired = errors.New("endpoint is required")
	// ErrInvalidEndpoint is returned for absolute URLs and parent traversal
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// APIError is a non-2xx answer from the avatar provider
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("avatar provider returned %d: %s", e.StatusCode, e.Message)
}

// Config holds configuration for the Tavus client
// Required fields:
// - APIKey
// Optional fields with defaults:
// - BaseURL: API root (default: "https://api.tavus.io/v1")
// - Timeout: per request timeout (default: 30s)
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client implements AvatarProvider
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.AvatarProvider = (*Client)(nil)

// NewClient creates a Tavus client
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
		logger.Info("Using default avatar API base URL", zap.String("baseURL", baseURL))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// NormalizeEndpoint turns a caller supplied path into one relative to the API root.
// A missing leading slash is added; schemes and ".." segments are rejected.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", ErrEndpointRequired
	}
	if strings.Contains(endpoint, "://") || strings.HasPrefix(endpoint, "//") {
		return "", ErrInvalidEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	path := endpoint
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return "", ErrInvalidEndpoint
		}
	}
	return endpoint, nil
}

// Do forwards one request. 2xx answers return the raw JSON body; other statuses
// return *APIError carrying the provider's message.
func (c *Client) Do(ctx context.Context, method, endpoint string, body json.RawMessage) (*repositories.AvatarResponse, error) {
	endpoint, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = http.MethodPost
	}
	method = strings.ToUpper(method)

	var reqBody io.Reader
	if len(body) > 0 && string(body) != "null" {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create avatar request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Info("Forwarding avatar request",
		zap.String("method", method),
		zap.String("endpoint", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach avatar provider: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Avatar provider returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("endpoint", endpoint),
			zap.String("response", string(data)))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return nil, errors.New("avatar provider returned a non-JSON body")
	}

	return &repositories.AvatarResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

func errorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "API request failed"
}
