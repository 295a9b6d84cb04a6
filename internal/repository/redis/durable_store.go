package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/dispatch-console-auth/internal/repository"
)

// DurableStore persists the durable storage scope in Redis so every tab of
// the same console profile observes the same credential pair. Writes are
// last-write-wins; the session age ceiling and backend verification act as
// the safety net against stale concurrent writes.
type DurableStore struct {
	client    *redis.Client
	keyPrefix string
	profileID string
}

// NewDurableStore constructs a store scoped to one console profile.
func NewDurableStore(client *redis.Client, keyPrefix, profileID string) *DurableStore {
	if keyPrefix == "" {
		keyPrefix = "console:durable"
	}
	return &DurableStore{client: client, keyPrefix: keyPrefix, profileID: profileID}
}

func (s *DurableStore) key(name string) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, s.profileID, name)
}

// Get returns the value stored under key, or repository.ErrNotFound.
func (s *DurableStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Set stores the value under key without expiry; durable values live until
// explicitly cleared.
func (s *DurableStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *DurableStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every key in this profile's durable scope.
func (s *DurableStore) Clear(ctx context.Context) error {
	pattern := fmt.Sprintf("%s:%s:*", s.keyPrefix, s.profileID)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
