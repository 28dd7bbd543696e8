// internal/domain/checkout/store.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists checkout sessions between requests
type SessionStore interface {
	Get(ctx context.Context, userID uint) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID uint) error
}

// ErrSessionNotFound is returned when no checkout session exists
var ErrSessionNotFound = fmt.Errorf("checkout session not found")

// RedisSessionStore keeps checkout sessions in redis with a TTL
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a redis-backed session store
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("checkout:session:%d", userID)
}

// Get loads a checkout session
func (s *RedisSessionStore) Get(ctx context.Context, userID uint) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &session, nil
}

// Save stores a checkout session, refreshing the TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	return nil
}

// Delete discards a checkout session
func (s *RedisSessionStore) Delete(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, sessionKey(userID)).Err()
}
