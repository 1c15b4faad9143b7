package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

// FeedbackRepository keeps the latest feedback per message and every comment
type FeedbackRepository struct {
	mu       sync.RWMutex
	feedback map[string]entities.Feedback
	comments []entities.Comment
}

var _ repositories.FeedbackRepository = (*FeedbackRepository)(nil)

// NewFeedbackRepository creates an empty repository
func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{feedback: make(map[string]entities.Feedback)}
}

// SaveFeedback replaces the annotation for the message
func (r *FeedbackRepository) SaveFeedback(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return errors.New("feedback cannot be nil")
	}
	if feedback.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.feedback[feedback.MessageID]; ok {
		feedback.ID = existing.ID
	} else if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	r.feedback[feedback.MessageID] = *feedback
	return nil
}

// SaveComment appends a comment
func (r *FeedbackRepository) SaveComment(ctx context.Context, comment *entities.Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}
	if comment.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	r.comments = append(r.comments, *comment)
	return nil
}

// Feedback returns the stored annotation for a message
func (r *FeedbackRepository) Feedback(messageID string) (entities.Feedback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.feedback[messageID]
	return f, ok
}

// Comments returns every comment attached to a message
func (r *FeedbackRepository) Comments(messageID string) []entities.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entities.Comment
	for _, c := range r.comments {
		if c.MessageID == messageID {
			out = append(out, c)
		}
	}
	return out
}
