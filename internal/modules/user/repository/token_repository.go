package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepository tracks revoked session tokens by jti. Without a redis
// client nothing is ever revoked.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type tokenRepository struct {
	rdb *redis.Client
}

func NewTokenRepository(rdb *redis.Client) TokenRepository {
	return &tokenRepository{rdb: rdb}
}

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked_token:%s", jti)
}

func (r *tokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (r *tokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
