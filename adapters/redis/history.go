// Package redis keeps voice channel history in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

const historyPrefix = "voice:history:"

// HistoryStore implements HistoryStore on top of a Redis string per session
type HistoryStore struct {
	rdb *redis.Client
}

var _ repositories.HistoryStore = (*HistoryStore)(nil)

// NewClient parses a redis:// URL and checks the server answers
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// NewHistoryStore creates a history store
func NewHistoryStore(rdb *redis.Client) *HistoryStore {
	return &HistoryStore{rdb: rdb}
}

// Load returns the stored turns, or none for an unknown session
func (s *HistoryStore) Load(ctx context.Context, sessionID string) ([]entities.Message, error) {
	data, err := s.rdb.Get(ctx, historyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return []entities.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var history []entities.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return history, nil
}

// Append adds turns, keeps the newest HistoryLimit and refreshes the TTL
func (s *HistoryStore) Append(ctx context.Context, sessionID string, messages ...entities.Message) error {
	history, err := s.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	history = entities.LastMessages(append(history, messages...), entities.HistoryLimit)

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := s.rdb.Set(ctx, historyPrefix+sessionID, data, entities.HistoryTTL).Err(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
