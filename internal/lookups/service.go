// Package lookups serves the unpaginated "all" lists (suppliers, document
// types, departments, roles) that feed form selects. Lists are cached as a
// last-write-wins snapshot in Redis and concurrent identical fetches are
// collapsed through singleflight.
package lookups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Option is one entry of a form select.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Fetcher loads a lookup list from the backend.
type Fetcher func(ctx context.Context, token string) ([]Option, error)

// Service caches lookup lists by key.
type Service struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	fetchers map[string]Fetcher
	group    singleflight.Group
}

// NewService constructs a Service.
func NewService(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		redis:    redisClient,
		ttl:      ttl,
		logger:   logger,
		fetchers: make(map[string]Fetcher),
	}
}

// Register installs the fetcher for a lookup key. Screens register their
// lookups during wiring; registering twice replaces the previous fetcher.
func (s *Service) Register(key string, fn Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchers[key] = fn
}

// Keys returns the registered lookup keys.
func (s *Service) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.fetchers))
	for k := range s.fetchers {
		keys = append(keys, k)
	}
	return keys
}

// Options returns the cached list for key, fetching through singleflight on
// a cache miss so concurrent screens issue a single backend request.
func (s *Service) Options(ctx context.Context, token, key string) ([]Option, error) {
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchAndCache(ctx, token, key)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Option), nil
}

// Refresh refetches one lookup unconditionally, bypassing the cache check.
func (s *Service) Refresh(ctx context.Context, token, key string) error {
	_, err := s.fetchAndCache(ctx, token, key)
	return err
}

// Warm refetches every registered lookup, used by the background worker.
func (s *Service) Warm(ctx context.Context, token string) error {
	var firstErr error
	for _, key := range s.Keys() {
		if _, err := s.fetchAndCache(ctx, token, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("warm %s: %w", key, err)
		}
	}
	return firstErr
}

func (s *Service) fetchAndCache(ctx context.Context, token, key string) ([]Option, error) {
	s.mu.RLock()
	fn, ok := s.fetchers[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("lookups: unknown key %q", key)
	}
	options, err := fn(ctx, token)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(options); err == nil {
		if err := s.redis.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil && s.logger != nil {
			s.logger.Warn("cache lookup", slog.String("key", key), slog.Any("error", err))
		}
	}
	return options, nil
}

func (s *Service) fromCache(ctx context.Context, key string) ([]Option, bool) {
	data, err := s.redis.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("read lookup cache", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}
	var options []Option
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, false
	}
	return options, true
}

func (s *Service) redisKey(key string) string {
	return "lookup:" + key
}
