// Package memory keeps each user's recent conversation in Redis so chat
// sessions survive across requests and processes.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chronomate/chronomate/internal/assistant"
)

// DefaultTTL is how long an idle conversation is kept.
const DefaultTTL = 24 * time.Hour

// HistoryStore holds up to assistant.HistoryLimit entries per user in a
// Redis list, oldest first.
type HistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHistoryStore(client *redis.Client, ttl time.Duration) *HistoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &HistoryStore{client: client, ttl: ttl}
}

func historyKey(userID uuid.UUID) string {
	return fmt.Sprintf("chat:history:%s", userID)
}

// Entries returns the stored entries, oldest first. Malformed entries are
// skipped.
func (s *HistoryStore) Entries(ctx context.Context, userID uuid.UUID) ([]assistant.Entry, error) {
	key := historyKey(userID)

	vals, err := s.client.LRange(ctx, key, -assistant.HistoryLimit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]assistant.Entry, 0, len(vals))
	for _, v := range vals {
		var e assistant.Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			slog.Warn("skipping malformed history entry", "key", key, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Load fills a History with the stored entries.
func (s *HistoryStore) Load(ctx context.Context, userID uuid.UUID) (assistant.History, error) {
	var h assistant.History
	entries, err := s.Entries(ctx, userID)
	if err != nil {
		return h, err
	}
	for _, e := range entries {
		h.Append(e)
	}
	return h, nil
}

// Append pushes entries in order, trims the list to the history cap and
// refreshes the TTL in one round trip.
func (s *HistoryStore) Append(ctx context.Context, userID uuid.UUID, entries ...assistant.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	key := historyKey(userID)

	values := make([]any, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		values = append(values, string(data))
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -assistant.HistoryLimit, -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending history for %s: %w", key, err)
	}
	return nil
}

func (s *HistoryStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.client.Del(ctx, historyKey(userID)).Err()
}
