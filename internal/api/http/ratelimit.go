package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimiter counts requests per client IP in fixed Redis windows.
type RateLimiter struct {
	client      *redis.Client
	scope       string
	maxRequests int
	window      time.Duration
	logger      *zap.Logger
}

// NewRateLimiter builds a limiter. scope separates counters of unrelated
// route groups that share one Redis.
func NewRateLimiter(client *redis.Client, scope string, maxRequests int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{client: client, scope: scope, maxRequests: maxRequests, window: window, logger: logger}
}

// Handle rejects the request with RATE_LIMITED once the caller's counter
// passes maxRequests within the current window. When Redis is unreachable the
// request is let through and the failure logged.
func (l *RateLimiter) Handle(c *fiber.Ctx) error {
	if l == nil || l.client == nil || l.maxRequests <= 0 || l.window <= 0 {
		return c.Next()
	}

	ctx := c.UserContext()
	key := rateLimitKeyPrefix + l.scope + ":" + c.IP()

	// INCR and EXPIRE NX run in one MULTI so a counter never outlives its window.
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
		return c.Next()
	}
	count := incr.Val()

	remaining := int64(l.maxRequests) - count
	if remaining < 0 {
		remaining = 0
	}
	c.Set("X-RateLimit-Limit", strconv.Itoa(l.maxRequests))
	c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if count > int64(l.maxRequests) {
		if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(ttl.Round(time.Second)/time.Second)))
		}
		return apperrors.NewRateLimited("Too many requests, please try again later")
	}
	return c.Next()
}
