package repositories

import (
	"context"

	"github.com/dengun/assistant/server/domain/entities"
)

// FeedbackRepository stores message annotations sent by the widget
type FeedbackRepository interface {
	SaveFeedback(ctx context.Context, feedback *entities.Feedback) error
	SaveComment(ctx context.Context, comment *entities.Comment) error
}

// HistoryStore keeps recent voice channel turns per session
type HistoryStore interface {
	Load(ctx context.Context, sessionID string) ([]entities.Message, error)
	Append(ctx context.Context, sessionID string, messages ...entities.Message) error
}
