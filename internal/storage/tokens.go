package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

// RevokeToken marks a token id as revoked until ttl elapses.
func (s *Service) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if s.Redis == nil {
		slog.Warn("token revocation skipped: redis not configured", "jti", tokenID)
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return s.Redis.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

// IsTokenRevoked reports whether RevokeToken was called for tokenID and has not expired.
func (s *Service) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	status, err := s.Redis.Get(ctx, revokedKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}
