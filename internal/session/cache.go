package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "files_session_cache_hits_total",
		Help: "Session lookups answered from the in-process cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "files_session_cache_misses_total",
		Help: "Session lookups forwarded to the session backend.",
	})
)

// CachedStore keeps resolved sessions in an expirable LRU. Only hits are cached, so a
// freshly written session is visible immediately while a revoked one lives at most ttl.
type CachedStore struct {
	next  Store
	cache *expirable.LRU[string, string]
}

func NewCachedStore(next Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (s *CachedStore) UserID(ctx context.Context, token string) (string, error) {
	if userID, ok := s.cache.Get(token); ok {
		cacheHitsTotal.Inc()
		return userID, nil
	}
	cacheMissesTotal.Inc()

	userID, err := s.next.UserID(ctx, token)
	if err != nil {
		return "", err
	}

	s.cache.Add(token, userID)
	return userID, nil
}
