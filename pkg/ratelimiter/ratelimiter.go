package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown scopes
const (
	ScopeCreateRequest = "create_request"
	ScopePledge        = "pledge"
	ScopeLogin         = "login"
)

// RateLimitError carries how long the caller should wait.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func key(subject, scope string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, subject)
}

// CheckAndSetRateLimit claims the cooldown slot for subject. It returns false
// when the slot is already held. A nil client always allows.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, subject, scope string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(subject, scope), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, subject, scope string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(subject, scope)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, subject, scope string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(subject, scope)).Result()
	return err
}

// RegisterFailure counts a failed attempt inside window and returns the
// running total. The window starts at the first failure.
func RegisterFailure(ctx context.Context, rdb *redis.Client, subject, scope string, window time.Duration) (int64, error) {
	if rdb == nil {
		return 0, nil
	}

	k := fmt.Sprintf("attempts:%s:%s", scope, subject)
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to register attempt: %w", err)
	}
	return incr.Val(), nil
}

// Failures returns the current failure count for subject.
func Failures(ctx context.Context, rdb *redis.Client, subject, scope string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	n, err := rdb.Get(ctx, fmt.Sprintf("attempts:%s:%s", scope, subject)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func ResetFailures(ctx context.Context, rdb *redis.Client, subject, scope string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, fmt.Sprintf("attempts:%s:%s", scope, subject)).Err()
}
