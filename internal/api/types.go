package api

import (
	"encoding/json"
	"time"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ChatRequest represents the request payload for a chat completion
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply
type ChatResponse struct {
	Reply string `json:"reply"`
}

// TranscribeResponse carries the recognised text
type TranscribeResponse struct {
	Text string `json:"text"`
}

// SpeechRequest represents the request payload for speech synthesis
type SpeechRequest struct {
	Text string `json:"text"`
}

// AvatarRequest is forwarded to the avatar provider
type AvatarRequest struct {
	Endpoint string          `json:"endpoint"`
	Method   string          `json:"method"`
	Body     json.RawMessage `json:"body"`
}

// NotificationResponse confirms a sent contact notification
type NotificationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FeedbackRequest represents a like/dislike on a message
type FeedbackRequest struct {
	MessageID string `json:"messageId"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

// CommentRequest represents a comment on a message
type CommentRequest struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
	Comment   string `json:"comment"`
}

// SessionRequest represents the request payload for a widget session
type SessionRequest struct {
	Language string `json:"language"`
}

// SessionResponse represents the response payload for a widget session
type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}
