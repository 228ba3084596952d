package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth_"

// RedisStore reads sessions stored as auth_<token> -> user id.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func Key(token string) string {
	return keyPrefix + token
}

func (s *RedisStore) UserID(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, Key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if userID == "" {
		return "", ErrNotFound
	}
	return userID, nil
}
