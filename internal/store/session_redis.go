package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "ebookstore:sess:"
	accountKeyPrefix = "ebookstore:sess:acct:"
)

// RedisSessionStore keeps sessions in Redis with TTL. Alongside the
// token -> principal mapping it maintains a per-account token set so
// deleting an account can invalidate all of its sessions.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore builds a Redis-backed session store.
func NewRedisSessionStore(addr, password string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

func sessionCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}

// NewSession writes a token -> principal mapping with TTL and indexes
// the token under the account.
func (s *RedisSessionStore) NewSession(p Principal) (string, error) {
	token := uuid.NewString()
	ctx, cancel := sessionCtx()
	defer cancel()
	acctKey := accountKeyPrefix + encodePrincipal(p)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+token, encodePrincipal(p), s.ttl)
	pipe.SAdd(ctx, acctKey, token)
	if s.ttl > 0 {
		pipe.Expire(ctx, acctKey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the principal bound to the token.
func (s *RedisSessionStore) Resolve(token string) (Principal, bool, error) {
	ctx, cancel := sessionCtx()
	defer cancel()
	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return Principal{}, false, nil
	}
	if err != nil {
		return Principal{}, false, err
	}
	p, err := decodePrincipal(val)
	if err != nil {
		return Principal{}, false, err
	}
	return p, true, nil
}

// Delete removes a token mapping and its account index entry.
func (s *RedisSessionStore) Delete(token string) error {
	ctx, cancel := sessionCtx()
	defer cancel()
	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.SRem(ctx, accountKeyPrefix+val, token)
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteAccountSessions removes every session bound to the principal.
func (s *RedisSessionStore) DeleteAccountSessions(p Principal) error {
	ctx, cancel := sessionCtx()
	defer cancel()
	acctKey := accountKeyPrefix + encodePrincipal(p)
	tokens, err := s.client.SMembers(ctx, acctKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, sessionKeyPrefix+token)
	}
	pipe.Del(ctx, acctKey)
	_, err = pipe.Exec(ctx)
	return err
}
