package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	require.NoError(t, mr.Set("auth_abc", "user-1"))

	store := NewRedisStore(client)

	userID, err := store.UserID(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = store.UserID(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJWTStore(t *testing.T) {
	ctx := context.Background()
	store := NewJWTStore("secret")

	token, err := store.Sign("user-1", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)

	userID, err := store.UserID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	expired, err := store.Sign("user-1", jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, err)
	_, err = store.UserID(ctx, expired)
	assert.ErrorIs(t, err, ErrNotFound)

	forged, err := NewJWTStore("other").Sign("user-1", nil)
	require.NoError(t, err)
	_, err = store.UserID(ctx, forged)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.UserID(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrNotFound)
}

type countingStore struct {
	calls  int
	userID string
}

func (s *countingStore) UserID(ctx context.Context, token string) (string, error) {
	s.calls++
	if s.userID == "" {
		return "", ErrNotFound
	}
	return s.userID, nil
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()

	t.Run("caches hits", func(t *testing.T) {
		next := &countingStore{userID: "user-1"}
		store := NewCachedStore(next, 10, time.Minute)

		for range 3 {
			userID, err := store.UserID(ctx, "abc")
			require.NoError(t, err)
			assert.Equal(t, "user-1", userID)
		}
		assert.Equal(t, 1, next.calls)
	})

	t.Run("does not cache misses", func(t *testing.T) {
		next := &countingStore{}
		store := NewCachedStore(next, 10, time.Minute)

		_, err := store.UserID(ctx, "abc")
		assert.ErrorIs(t, err, ErrNotFound)

		next.userID = "user-1"
		userID, err := store.UserID(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, 2, next.calls)
	})
}
