package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

func TestNewOpenAIChat(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewOpenAIChat(OpenAIConfig{}, logger)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}

	_, err = NewOpenAIChat(OpenAIConfig{APIKey: "sk-test", Temperature: 3}, logger)
	if err == nil {
		t.Error("Expected error for out of range temperature")
	}

	chat, err := NewOpenAIChat(OpenAIConfig{APIKey: "sk-test"}, logger)
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	if chat.model != defaultOpenAIModel {
		t.Errorf("Expected default model %s, got %s", defaultOpenAIModel, chat.model)
	}
	if chat.maxTokens != defaultMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", defaultMaxTokens, chat.maxTokens)
	}
}

func TestOpenAIChat_Complete(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Somos um estúdio de startups."},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	chat, err := NewOpenAIChat(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/v1"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	reply, err := chat.Complete(context.Background(), repositories.ChatRequest{
		SystemPrompt: "system",
		History: []entities.Message{
			entities.NewMessage(entities.AuthorUser, "hi"),
			entities.NewMessage(entities.AuthorAssistant, "hello"),
		},
		Message: "O que é a Dengun?",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if reply != "Somos um estúdio de startups." {
		t.Errorf("Unexpected reply %q", reply)
	}

	if captured.Model != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %s", captured.Model)
	}
	if captured.Temperature != 0.8 {
		t.Errorf("Expected temperature 0.8, got %f", captured.Temperature)
	}
	if captured.MaxTokens != 1000 {
		t.Errorf("Expected max tokens 1000, got %d", captured.MaxTokens)
	}
	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(captured.Messages) != len(wantRoles) {
		t.Fatalf("Expected %d messages, got %d", len(wantRoles), len(captured.Messages))
	}
	for i, role := range wantRoles {
		if captured.Messages[i].Role != role {
			t.Errorf("Message %d: expected role %s, got %s", i, role, captured.Messages[i].Role)
		}
	}
}

func TestOpenAIChat_CompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	chat, err := NewOpenAIChat(OpenAIConfig{APIKey: "sk-bad", BaseURL: server.URL + "/v1"}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	if _, err := chat.Complete(context.Background(), repositories.ChatRequest{Message: "hi"}); err == nil {
		t.Error("Expected error for upstream failure")
	}
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := NewGeminiLLM(context.Background(), GeminiConfig{}, zaptest.NewLogger(t))
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}
