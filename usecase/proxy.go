package usecase

import (
	"context"
	"encoding/json"

	"github.com/dengun/assistant/server/domain/entities"
)

// Proxy is the widget's view of the server routes
type Proxy interface {
	Chat(ctx context.Context, message string) (string, error)
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
	Speak(ctx context.Context, text string) ([]byte, error)
	Feedback(ctx context.Context, feedback entities.Feedback) error
	Comment(ctx context.Context, comment entities.Comment) error
	Notify(ctx context.Context, notification entities.ContactNotification) error
}

// AvatarRequester forwards a call to the avatar provider through the server
type AvatarRequester interface {
	Avatar(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error)
}
