package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/logger"
)

const loginAttemptsPrefix = "railtrace:login_attempts:"

// LoginLimiter throttles repeated failed logins per user id
type LoginLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
	RecordFailure(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisLoginLimiter counts failures in Redis with a fixed window per user
type RedisLoginLimiter struct {
	store       cmdable
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginLimiter wraps an existing redis client
func NewRedisLoginLimiter(store cmdable, maxAttempts int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{store: store, maxAttempts: maxAttempts, window: window}
}

var loginLimiterInstance LoginLimiter = NoopLoginLimiter{}

// InitLoginLimiter connects to Redis when REDIS_URL is set; otherwise login
// throttling is disabled
func InitLoginLimiter(ctx context.Context, cfg *config.Config) (LoginLimiter, error) {
	if cfg.RedisURL == "" {
		loginLimiterInstance = NoopLoginLimiter{}
		return loginLimiterInstance, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	loginLimiterInstance = NewRedisLoginLimiter(client, cfg.LoginMaxAttempts, cfg.LoginWindow)
	return loginLimiterInstance, nil
}

// GetLoginLimiter returns the initialized limiter
func GetLoginLimiter() LoginLimiter {
	return loginLimiterInstance
}

// SetLoginLimiter sets the limiter instance (primarily for testing)
func SetLoginLimiter(limiter LoginLimiter) {
	loginLimiterInstance = limiter
}

func (l *RedisLoginLimiter) key(userID string) string {
	return loginAttemptsPrefix + userID
}

// Allow reports whether userID may attempt another login
func (l *RedisLoginLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	raw, err := l.store.Get(ctx, l.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("reading login attempts: %w", err)
	}

	attempts, err := strconv.Atoi(raw)
	if err != nil {
		return true, fmt.Errorf("parsing login attempts: %w", err)
	}
	return attempts < l.maxAttempts, nil
}

// RecordFailure increments the failure counter, starting the window on the first failure
func (l *RedisLoginLimiter) RecordFailure(ctx context.Context, userID string) error {
	key := l.key(userID)
	count, err := l.store.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("incrementing login attempts: %w", err)
	}
	if count == 1 {
		if err := l.store.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("setting login attempts window: %w", err)
		}
	}
	return nil
}

// Reset clears the failure counter after a successful login
func (l *RedisLoginLimiter) Reset(ctx context.Context, userID string) error {
	if err := l.store.Del(ctx, l.key(userID)).Err(); err != nil {
		return fmt.Errorf("clearing login attempts: %w", err)
	}
	return nil
}

func (l *RedisLoginLimiter) Ping(ctx context.Context) error {
	return l.store.Ping(ctx).Err()
}

// NoopLoginLimiter never throttles
type NoopLoginLimiter struct{}

func (NoopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLoginLimiter) RecordFailure(context.Context, string) error { return nil }
func (NoopLoginLimiter) Reset(context.Context, string) error { return nil }
func (NoopLoginLimiter) Ping(context.Context) error { return nil }

// limiterWarn logs limiter failures; login proceeds without throttling
func limiterWarn(ctx context.Context, err error) {
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("login limiter unavailable")
	}
}
