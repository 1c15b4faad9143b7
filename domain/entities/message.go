package entities

import (
	"time"

	"github.com/google/uuid"
)

// Author identifies who wrote a message
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is a single entry of a conversation. Messages are never edited once created.
type Message struct {
	ID        string    `json:"id" bson:"id"`
	Content   string    `json:"content" bson:"content"`
	Author    Author    `json:"author" bson:"author"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// NewMessage creates a message with a fresh id and the current time
func NewMessage(author Author, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    author,
		CreatedAt: time.Now(),
	}
}

// IsAssistant reports whether the message was written by the assistant
func (m Message) IsAssistant() bool {
	return m.Author == AuthorAssistant
}

// HistoryTTL and HistoryLimit bound the voice channel history kept per session
const (
	HistoryTTL   = 24 * time.Hour
	HistoryLimit = 20
)

// LastMessages returns at most n of the newest messages
func LastMessages(messages []Message, n int) []Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
