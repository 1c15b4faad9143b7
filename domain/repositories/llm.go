package repositories

import (
	"context"

	"github.com/dengun/assistant/server/domain/entities"
)

// ChatRequest is a single completion request
type ChatRequest struct {
	// SystemPrompt is sent ahead of the conversation
	SystemPrompt string
	// History holds earlier turns, oldest first
	History []entities.Message
	// Message is the new user turn
	Message     string
	Temperature float32
	MaxTokens   int
}

// ChatCompleter abstracts any chat/LLM provider
type ChatCompleter interface {
	// Complete returns the model's reply for the request
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
