package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "revoked_token:"

// RevocationList remembers tokens invalidated by logout until they would
// have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, rawToken string, until time.Time) error
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// RedisRevocationList stores a hash of each revoked token with a TTL.
type RedisRevocationList struct {
	Client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{Client: client}
}

func revocationKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return revokedTokenPrefix + hex.EncodeToString(sum[:])
}

func (l *RedisRevocationList) Revoke(ctx context.Context, rawToken string, until time.Time) error {
	if l.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	ttl := time.Until(until)
	if until.IsZero() {
		ttl = 24 * time.Hour
	}
	if ttl <= 0 {
		// Already expired; the verifier rejects it without our help.
		return nil
	}

	if err := l.Client.Set(ctx, revocationKey(rawToken), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revoked token in Redis: %w", err)
	}
	return nil
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	if l.Client == nil {
		return false, fmt.Errorf("redis client not initialized")
	}

	n, err := l.Client.Exists(ctx, revocationKey(rawToken)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token in Redis: %w", err)
	}
	return n > 0, nil
}
