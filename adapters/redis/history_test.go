package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dengun/assistant/server/domain/entities"
)

// Integration test - only runs if REDIS_URL points at a reachable server
func TestHistoryStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test - set REDIS_URL to run it")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := NewClient(ctx, url)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer rdb.Close()

	store := NewHistoryStore(rdb)
	sessionID := uuid.NewString()
	defer rdb.Del(context.Background(), historyPrefix+sessionID)

	history, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected empty history, got %d messages", len(history))
	}

	for i := 0; i < entities.HistoryLimit; i++ {
		err := store.Append(ctx, sessionID,
			entities.NewMessage(entities.AuthorUser, "pergunta"),
			entities.NewMessage(entities.AuthorAssistant, "resposta"))
		if err != nil {
			t.Fatalf("Failed to append: %v", err)
		}
	}

	history, err = store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(history) != entities.HistoryLimit {
		t.Errorf("Expected %d messages, got %d", entities.HistoryLimit, len(history))
	}

	ttl := rdb.TTL(ctx, historyPrefix+sessionID).Val()
	if ttl <= 0 || ttl > entities.HistoryTTL {
		t.Errorf("Unexpected TTL %v", ttl)
	}
}
