package repositories

import (
	"context"
	"encoding/json"
)

// AvatarResponse is a successful reply from the avatar provider
type AvatarResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// AvatarProvider forwards calls to the video avatar conversation API
type AvatarProvider interface {
	Do(ctx context.Context, method, endpoint string, body json.RawMessage) (*AvatarResponse, error)
}
