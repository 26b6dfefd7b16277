package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker tracks revocation marks until they expire. Keys are
// either token IDs (single logout) or encoded principals (revoke all
// sessions for an account).
type TokenRevoker interface {
	Revoke(key string, ttl time.Duration) error
	RevokedAt(key string) (time.Time, bool, error)
}

// MemoryTokenRevoker keeps revocations in-memory (single instance only).
type MemoryTokenRevoker struct {
	mu    sync.Mutex
	marks map[string]revocation
}

type revocation struct {
	revokedAt time.Time
	expiresAt time.Time
}

// NewMemoryTokenRevoker builds an in-memory revoker.
func NewMemoryTokenRevoker() *MemoryTokenRevoker {
	return &MemoryTokenRevoker{marks: make(map[string]revocation)}
}

// Revoke marks a key as revoked for the given duration.
func (r *MemoryTokenRevoker) Revoke(key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := time.Now()
	r.mu.Lock()
	r.marks[key] = revocation{revokedAt: now, expiresAt: now.Add(ttl)}
	r.mu.Unlock()
	return nil
}

// RevokedAt returns when the key was revoked, if it still is.
func (r *MemoryTokenRevoker) RevokedAt(key string) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mark, ok := r.marks[key]
	if !ok {
		return time.Time{}, false, nil
	}
	if time.Now().After(mark.expiresAt) {
		delete(r.marks, key)
		return time.Time{}, false, nil
	}
	return mark.revokedAt, true, nil
}

const revocationKeyPrefix = "ebookstore:revoked:"

// RedisTokenRevoker stores revocation marks in Redis with TTL.
type RedisTokenRevoker struct {
	client *redis.Client
}

// NewRedisTokenRevoker builds a Redis-backed revoker.
func NewRedisTokenRevoker(addr, password string) *RedisTokenRevoker {
	return &RedisTokenRevoker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Revoke marks a key as revoked for the given duration.
func (r *RedisTokenRevoker) Revoke(key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	value := strconv.FormatInt(time.Now().Unix(), 10)
	return r.client.Set(ctx, revocationKeyPrefix+key, value, ttl).Err()
}

// RevokedAt returns when the key was revoked, if it still is.
func (r *RedisTokenRevoker) RevokedAt(key string) (time.Time, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	val, err := r.client.Get(ctx, revocationKeyPrefix+key).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(unix, 0), true, nil
}
