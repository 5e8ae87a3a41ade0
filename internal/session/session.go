package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/holon/witness/internal/mode"
)

// Key identifies a chat session: one mode per platform channel, never a
// process-wide global.
func Key(platform, channelID string) string {
	return platform + ":" + channelID
}

// ModeStore holds the current thinking mode per session key.
type ModeStore interface {
	Get(ctx context.Context, key string) (mode.Mode, bool)
	Set(ctx context.Context, key string, m mode.Mode) error
}

// MemoryModeStore is the default in-process store.
type MemoryModeStore struct {
	mu    sync.RWMutex
	modes map[string]mode.Mode
}

// NewMemoryModeStore creates an empty in-memory mode store.
func NewMemoryModeStore() *MemoryModeStore {
	return &MemoryModeStore{modes: make(map[string]mode.Mode)}
}

func (s *MemoryModeStore) Get(_ context.Context, key string) (mode.Mode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modes[key]
	return m, ok
}

func (s *MemoryModeStore) Set(_ context.Context, key string, m mode.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[key] = m
	return nil
}

const redisKeyPrefix = "witness:mode:"

// RedisModeStore shares session modes across bot instances.
type RedisModeStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisModeStore connects to Redis and verifies the connection.
func NewRedisModeStore(redisURL string, logger *zap.Logger) (*RedisModeStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisModeStore{rdb: rdb, logger: logger}, nil
}

func (s *RedisModeStore) Get(ctx context.Context, key string) (mode.Mode, bool) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.logger.Warn("redis mode get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	m, err := mode.Parse(val)
	if err != nil {
		s.logger.Warn("redis holds unknown mode", zap.String("key", key), zap.String("value", val))
		return "", false
	}
	return m, true
}

func (s *RedisModeStore) Set(ctx context.Context, key string, m mode.Mode) error {
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, string(m), 0).Err(); err != nil {
		return fmt.Errorf("redis mode set: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisModeStore) Close() error { return s.rdb.Close() }
