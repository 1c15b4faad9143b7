package entities

import (
	"fmt"
	"time"
)

// FeedbackKind is the annotation a user can put on an assistant message
type FeedbackKind string

const (
	FeedbackNone    FeedbackKind = ""
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"
)

// ParseFeedbackKind validates a kind received from a client
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	switch FeedbackKind(s) {
	case FeedbackNone, FeedbackLike, FeedbackDislike:
		return FeedbackKind(s), nil
	default:
		return FeedbackNone, fmt.Errorf("unknown feedback kind %q", s)
	}
}

// Toggle returns the kind that results from selecting next while current is set.
// Selecting the same kind again clears the annotation.
func (current FeedbackKind) Toggle(next FeedbackKind) FeedbackKind {
	if current == next {
		return FeedbackNone
	}
	return next
}

// Feedback is a like/dislike recorded for an assistant message
type Feedback struct {
	ID        string       `json:"id" bson:"_id"`
	MessageID string       `json:"messageId" bson:"message_id"`
	Kind      FeedbackKind `json:"type" bson:"kind"`
	Content   string       `json:"content" bson:"content"`
	CreatedAt time.Time    `json:"createdAt" bson:"created_at"`
}

// Comment is free text a user attached to an assistant message
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	MessageID string    `json:"messageId" bson:"message_id"`
	Content   string    `json:"content" bson:"content"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
