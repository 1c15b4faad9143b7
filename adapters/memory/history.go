// Package memory holds in-process stores used when MongoDB or Redis are not configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dengun/assistant/server/domain/entities"
	"github.com/dengun/assistant/server/domain/repositories"
)

type historyEntry struct {
	messages  []entities.Message
	expiresAt time.Time
}

// HistoryStore keeps the newest turns per session until they expire
type HistoryStore struct {
	mu       sync.Mutex
	sessions map[string]*historyEntry
	now      func() time.Time
}

var _ repositories.HistoryStore = (*HistoryStore)(nil)

// NewHistoryStore creates an empty history store
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		sessions: make(map[string]*historyEntry),
		now:      time.Now,
	}
}

// Load returns a copy of the session history
func (s *HistoryStore) Load(ctx context.Context, sessionID string) ([]entities.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return []entities.Message{}, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return []entities.Message{}, nil
	}

	history := make([]entities.Message, len(entry.messages))
	copy(history, entry.messages)
	return history, nil
}

// Append adds turns, keeps the newest HistoryLimit and refreshes the expiry
func (s *HistoryStore) Append(ctx context.Context, sessionID string, messages ...entities.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || s.now().After(entry.expiresAt) {
		entry = &historyEntry{}
		s.sessions[sessionID] = entry
	}

	combined := append(append([]entities.Message{}, entry.messages...), messages...)
	entry.messages = entities.LastMessages(combined, entities.HistoryLimit)
	entry.expiresAt = s.now().Add(entities.HistoryTTL)
	return nil
}

// Sweep drops expired sessions and returns how many were removed
func (s *HistoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
