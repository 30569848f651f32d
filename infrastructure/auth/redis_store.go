package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	accountapp "storefront/application/account"
	"storefront/domain/shared"

	"github.com/go-redis/redis/v8"
)

const DefaultSessionPrefix = "storefront:session:"

// RedisStore sessions stored as JSON under prefix+token; the key TTL is the
// session lifetime
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisStore) Authenticate(ctx context.Context, token string) (shared.Identity, error) {
	if token == "" {
		return shared.Guest(), errNoToken()
	}

	raw, err := r.client.Get(ctx, r.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return shared.Guest(), errUnknownToken()
	}
	if err != nil {
		return shared.Guest(), fmt.Errorf("load session: %w", err)
	}

	s, err := decodeSession(raw)
	if err != nil {
		return shared.Guest(), err
	}
	if err := s.validate(r.now()); err != nil {
		return shared.Guest(), err
	}
	return s.Identity(), nil
}

// Open stores a session for grant under a fresh token; the key expires with it
func (r *RedisStore) Open(ctx context.Context, grant accountapp.Grant, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = r.now().Add(ttl)
	}
	if err := r.Put(ctx, token, newSession(grant, expiresAt), ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Close revokes the session
func (r *RedisStore) Close(ctx context.Context, token string) error {
	return r.Revoke(ctx, token)
}

// Put writes a session under token
func (r *RedisStore) Put(ctx context.Context, token string, s Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+token, raw, ttl).Err()
}

// Revoke deletes a session
func (r *RedisStore) Revoke(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.prefix+token).Err()
}

var _ Store = (*RedisStore)(nil)
