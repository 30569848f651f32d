// Package redislock cross-process settlement lock on Redis.
// A key is taken with SET NX PX and released only by the holder's token, so an
// expired lock picked up by another process is never deleted by the first one.
package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	apporder "storefront/application/order"
	"storefront/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	DefaultTTL    = 30 * time.Second
	DefaultPrefix = "storefront:lock:"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock keyed, non-blocking lock
type Lock struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// New ttl bounds how long a crashed holder can block a key
func New(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{client: client, ttl: ttl, prefix: DefaultPrefix}
}

// TryAcquire ok=false when another holder has the key
func (l *Lock) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}

	redisKey := l.prefix + key
	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// the caller's context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil && err != redis.Nil {
				logger.Warn("failed to release lock", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}
	return release, true, nil
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var _ apporder.SettlementLock = (*Lock)(nil)
