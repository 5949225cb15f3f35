package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"example.com/pennypilot/backend/internal/auth"
	"example.com/pennypilot/backend/internal/config"
)

const redisCallTimeout = 500 * time.Millisecond

// RedisRateLimiterStore counts requests per identifier in fixed one-minute
// windows shared by every instance behind the same Redis.
type RedisRateLimiterStore struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisRateLimiterStore(client *redis.Client, prefix string, perMinute, burst int) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		client: client,
		prefix: prefix,
		limit:  perMinute + burst,
		window: time.Minute,
		now:    time.Now,
	}
}

// Allow implements middleware.RateLimiterStore. Redis failures let the request
// through so an outage of the limiter never takes the API down.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	key := s.windowKey(identifier)

	var count *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		slog.Warn("rate limiter store unavailable", slog.String("key", key), slog.String("error", err.Error()))
		return true, nil
	}

	return count.Val() <= int64(s.limit), nil
}

func (s *RedisRateLimiterStore) windowKey(identifier string) string {
	window := s.now().UTC().Truncate(s.window).Unix()
	return fmt.Sprintf("%s:%s:%d", s.prefix, identifier, window)
}

func newRedisClient(cfg config.RateLimitConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func rateLimiterStore(client *redis.Client, prefix string, perMinute, burst int) middleware.RateLimiterStore {
	if client != nil {
		return NewRedisRateLimiterStore(client, prefix, perMinute, burst)
	}

	limit := rate.Limit(float64(perMinute) / 60.0)
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})
}

func sessionRateLimiter(cfg config.SessionConfig, client *redis.Client) echo.MiddlewareFunc {
	return middleware.RateLimiter(rateLimiterStore(client, "ratelimit:sessions", cfg.RateLimitPerMinute, cfg.RateLimitBurst))
}

// aiRateLimiter keys the AI routes by session rather than by address.
func aiRateLimiter(cfg config.AIConfig, client *redis.Client) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: rateLimiterStore(client, "ratelimit:ai", cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if sessionID, ok := auth.SessionIDFromContext(c); ok {
				return sessionID, nil
			}
			return c.RealIP(), nil
		},
	})
}
