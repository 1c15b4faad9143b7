package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/dengun/assistant/server/adapters/avatar"
)

const (
	defaultAttemptTimeout  = 30 * time.Second
	defaultMaxRetries      = 3
	defaultInitialInterval = 2 * time.Second
)

// ErrAvatarTimeout is returned when one attempt exceeds its timeout. Timeouts
// are not retried.
var ErrAvatarTimeout = errors.New("avatar conversation request timed out")

// AvatarConfig holds the conversation start settings
// Required fields:
// - ReplicaID, PersonaID
// Optional fields with defaults:
// - AttemptTimeout: per attempt timeout (default: 30s)
// - MaxRetries: retries after the first attempt (default: 3)
// - InitialInterval: first retry delay, doubled each retry (default: 2s)
type AvatarConfig struct {
	ReplicaID       string
	PersonaID       string
	AttemptTimeout  time.Duration
	MaxRetries      int
	InitialInterval time.Duration
}

// AvatarSession identifies a started avatar conversation
type AvatarSession struct {
	ConversationID string
	SessionURL     string
}

// AvatarStarter creates avatar conversations through the server proxy
type AvatarStarter struct {
	requester AvatarRequester
	config    AvatarConfig
	logger    *zap.Logger
}

// NewAvatarStarter creates a new avatar starter
func NewAvatarStarter(requester AvatarRequester, config AvatarConfig, logger *zap.Logger) (*AvatarStarter, error) {
	if config.ReplicaID == "" || config.PersonaID == "" {
		return nil, errors.New("replica and persona ids are required")
	}
	if config.AttemptTimeout == 0 {
		config.AttemptTimeout = defaultAttemptTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.InitialInterval == 0 {
		config.InitialInterval = defaultInitialInterval
	}
	return &AvatarStarter{requester: requester, config: config, logger: logger}, nil
}

// Start creates a conversation, retrying failed attempts with exponential backoff
func (s *AvatarStarter) Start(ctx context.Context) (*AvatarSession, error) {
	body := map[string]string{
		"replica_id": s.config.ReplicaID,
		"persona_id": s.config.PersonaID,
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.InitialInterval
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	attempt := 0
	operation := func() (*AvatarSession, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, s.config.AttemptTimeout)
		defer cancel()

		raw, err := s.requester.Avatar(attemptCtx, http.MethodPost, "/conversations", body)
		if err != nil {
			if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, backoff.Permanent(ErrAvatarTimeout)
			}
			return nil, err
		}

		session := &AvatarSession{ConversationID: avatar.ConversationID(raw)}
		session.SessionURL, _ = avatar.SessionURL(raw)
		if session.ConversationID == "" && session.SessionURL == "" {
			return nil, errors.New("avatar response has no conversation")
		}
		return session, nil
	}

	session, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(s.config.MaxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn("Avatar conversation attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("retryIn", next),
				zap.Error(err))
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to start avatar conversation: %w", err)
	}

	s.logger.Info("Avatar conversation started",
		zap.String("conversationID", session.ConversationID),
		zap.Int("attempts", attempt))
	return session, nil
}
