package cache

import (
	"context"
	"time"
)

// RedisRevocations хранит отозванные токены до истечения их срока.
type RedisRevocations struct {
	cache *Cache
}

func NewRedisRevocations(c *Cache) *RedisRevocations {
	return &RedisRevocations{cache: c}
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// токен и так уже не примут
		return nil
	}
	return r.cache.SetWithTTL(ctx, revokedKey(tokenID), true, ttl)
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.cache.Exists(ctx, revokedKey(tokenID))
}
