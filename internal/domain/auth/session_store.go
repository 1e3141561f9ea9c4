package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks revoked session token ids in Redis so that sign-out
// invalidates a token before it expires. A nil Redis client disables
// revocation (every token is honoured until expiry).
type SessionStore struct {
	redis *redis.Client
}

// NewSessionStore creates the revocation store
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{redis: client}
}

func revokedKey(jti string) string {
	return fmt.Sprintf("session:revoked:%s", jti)
}

// Revoke marks a token id as revoked until the token would have expired.
func (s *SessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.redis == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}
	n, err := s.redis.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
