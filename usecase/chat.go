package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
	"github.com/dengun/assistant/server/internal/prompt"
)

// ErrProviderNotConfigured is returned before any network call when the
// provider for an operation has no credentials
var ErrProviderNotConfigured = errors.New("provider is not configured")

// KnowledgeLoader returns the instruction and knowledge documents
type KnowledgeLoader interface {
	Load() (instructions, knowledge string, err error)
}

// ChatService produces assistant replies grounded on the knowledge documents
type ChatService struct {
	completer repositories.ChatCompleter
	knowledge KnowledgeLoader
	history   repositories.HistoryStore
	logger    *zap.Logger
}

// NewChatService creates a chat service. completer may be nil when no provider
// is configured; history may be nil when replies are stateless.
func NewChatService(
	completer repositories.ChatCompleter,
	knowledge KnowledgeLoader,
	history repositories.HistoryStore,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		completer: completer,
		knowledge: knowledge,
		history:   history,
		logger:    logger,
	}
}

// Configured reports whether a completion provider is available
func (s *ChatService) Configured() bool {
	return s.completer != nil
}

// Reply answers a single message without history
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	return s.complete(ctx, nil, message)
}

// ReplyInSession answers message using the stored history of sessionID and
// records both turns
func (s *ChatService) ReplyInSession(ctx context.Context, sessionID, message string) (string, error) {
	var history []entities.Message
	if s.history != nil {
		loaded, err := s.history.Load(ctx, sessionID)
		if err != nil {
			s.logger.Warn("Failed to load history, continuing without it",
				zap.String("sessionID", sessionID),
				zap.Error(err))
		} else {
			history = loaded
		}
	}

	reply, err := s.complete(ctx, history, message)
	if err != nil {
		return "", err
	}

	if s.history != nil {
		err := s.history.Append(ctx, sessionID,
			entities.NewMessage(entities.AuthorUser, message),
			entities.NewMessage(entities.AuthorAssistant, reply))
		if err != nil {
			s.logger.Warn("Failed to save history", zap.String("sessionID", sessionID), zap.Error(err))
		}
	}
	return reply, nil
}

func (s *ChatService) complete(ctx context.Context, history []entities.Message, message string) (string, error) {
	if s.completer == nil {
		return "", ErrProviderNotConfigured
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyInput
	}

	instructions, knowledge, err := s.knowledge.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load knowledge: %w", err)
	}

	reply, err := s.completer.Complete(ctx, repositories.ChatRequest{
		SystemPrompt: prompt.System(instructions, knowledge),
		History:      history,
		Message:      message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}
	return reply, nil
}
