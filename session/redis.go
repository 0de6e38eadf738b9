package session

import (
	"context"
	"errors"
	"fmt"
	"github.com/daehan00/omechoo/logging"
	"github.com/daehan00/omechoo/token"
	"github.com/redis/go-redis/v9"
	"sync/atomic"
	"time"
)

// RedisStore shares tokens between processes. Keys expire together with the token's exp claim,
// and the version is a redis counter so every process sees every write.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	last    atomic.Uint64
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, timeout: 2 * time.Second}
}

func (s *RedisStore) key(roomID string) string {
	return s.prefix + Key(roomID)
}

func (s *RedisStore) versionKey() string {
	return s.prefix + "room_token_version"
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// ttlFor returns how long a token stays useful. Undecodable tokens are kept without expiry.
func ttlFor(raw string, now time.Time) time.Duration {
	claims, err := token.Decode(raw)
	if err != nil || claims.ExpiresAt == nil {
		return 0
	}
	if ttl := claims.ExpiresAt.Sub(now); ttl > 0 {
		return ttl
	}
	// already expired; keep it briefly so readers observe the unauthenticated state
	return time.Minute
}

func (s *RedisStore) Save(roomID, raw string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(roomID), raw, ttlFor(raw, time.Now()))
	incr := pipe.Incr(ctx, s.versionKey())
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Log.Errorf("SESSION: failed to save token for room %s: %v", roomID, err)
		return fmt.Errorf("session save error: %w", err)
	}
	s.last.Store(uint64(incr.Val()))
	return nil
}

func (s *RedisStore) Get(roomID string) (string, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	raw, err := s.client.Get(ctx, s.key(roomID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Log.Warnf("SESSION: failed to read token for room %s: %v", roomID, err)
		}
		return "", false
	}
	return raw, true
}

func (s *RedisStore) Remove(roomID string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(roomID))
	incr := pipe.Incr(ctx, s.versionKey())
	if _, err := pipe.Exec(ctx); err != nil {
		logging.Log.Errorf("SESSION: failed to remove token for room %s: %v", roomID, err)
		return fmt.Errorf("session remove error: %w", err)
	}
	s.last.Store(uint64(incr.Val()))
	return nil
}

// Version falls back to the last value seen when redis is unreachable.
func (s *RedisStore) Version() uint64 {
	ctx, cancel := s.ctx()
	defer cancel()

	v, err := s.client.Get(ctx, s.versionKey()).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0
		}
		logging.Log.Warnf("SESSION: failed to read version: %v", err)
		return s.last.Load()
	}
	s.last.Store(v)
	return v
}
