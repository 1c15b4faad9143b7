package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

const (
	defaultOpenAIModel = "gpt-4o"
	defaultTemperature = 0.8
	defaultMaxTokens   = 1000
)

// ErrMissingAPIKey is returned when a provider is configured without credentials
var ErrMissingAPIKey = errors.New("api key is required")

// OpenAIConfig holds configuration for the OpenAI chat adapter
// Required fields:
// - APIKey
// Optional fields with defaults:
// - BaseURL: OpenAI compatible endpoint (default: the public OpenAI API)
// - Model: chat model (default: "gpt-4o")
// - Temperature: sampling temperature (default: 0.8)
// - MaxTokens: reply length bound (default: 1000)
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIChat implements ChatCompleter using the chat completions API
type OpenAIChat struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

var _ repositories.ChatCompleter = (*OpenAIChat)(nil)

// ValidateOpenAIConfig validates the OpenAIConfig
func ValidateOpenAIConfig(config OpenAIConfig) error {
	if config.APIKey == "" {
		return ErrMissingAPIKey
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", config.Temperature)
	}

	if config.MaxTokens < 0 {
		return fmt.Errorf("max tokens must be positive, got %d", config.MaxTokens)
	}

	return nil
}

// NewOpenAIChat creates a new OpenAI chat adapter
func NewOpenAIChat(config OpenAIConfig, logger *zap.Logger) (*OpenAIChat, error) {
	if err := ValidateOpenAIConfig(config); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
		logger.Info("Using custom OpenAI base URL", zap.String("baseURL", config.BaseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
		logger.Info("Using default temperature", zap.Float32("temperature", temperature))
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
		logger.Info("Using default max tokens", zap.Int("maxTokens", maxTokens))
	}

	return &OpenAIChat{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}, nil
}

// Complete sends the system prompt, history and new message and returns the reply
func (o *OpenAIChat) Complete(ctx context.Context, req repositories.ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.History {
		messages = append(messages, toOpenAIMessage(m))
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	temperature := o.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := o.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		o.logger.Error("Chat completion failed", zap.String("model", o.model), zap.Error(err))
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	o.logger.Debug("Chat completion received",
		zap.String("model", o.model),
		zap.Int("promptTokens", resp.Usage.PromptTokens),
		zap.Int("completionTokens", resp.Usage.CompletionTokens))

	return reply, nil
}

func toOpenAIMessage(m entities.Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if m.IsAssistant() {
		role = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionMessage{Role: role, Content: m.Content}
}
