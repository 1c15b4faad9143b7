package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

const (
	feedbackCollection = "feedback"
	commentsCollection = "comments"
)

// FeedbackRepository stores feedback and comments
type FeedbackRepository struct {
	feedback *mongo.Collection
	comments *mongo.Collection
}

var _ repositories.FeedbackRepository = (*FeedbackRepository)(nil)

// NewFeedbackRepository creates a new MongoDB feedback repository
func NewFeedbackRepository(db *mongo.Database) *FeedbackRepository {
	return &FeedbackRepository{
		feedback: db.Collection(feedbackCollection),
		comments: db.Collection(commentsCollection),
	}
}

// SaveFeedback upserts the latest annotation for a message. A cleared
// annotation is stored with an empty kind rather than deleted.
func (r *FeedbackRepository) SaveFeedback(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return errors.New("feedback cannot be nil")
	}
	if feedback.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}

	filter := bson.M{"message_id": feedback.MessageID}
	update := bson.M{
		"$set": bson.M{
			"kind":       feedback.Kind,
			"content":    feedback.Content,
			"created_at": feedback.CreatedAt,
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}

	result, err := r.feedback.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	if id, ok := result.UpsertedID.(string); ok {
		feedback.ID = id
	}
	return nil
}

// SaveComment inserts a comment; a message may collect several
func (r *FeedbackRepository) SaveComment(ctx context.Context, comment *entities.Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}
	if comment.MessageID == "" {
		return errors.New("message ID cannot be empty")
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}
