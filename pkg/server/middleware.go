package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/entrhq/pagekit/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/cors"
)

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logging.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
			log.ErrorWithFields("request failed", fields)
			return
		}
		log.InfoWithFields("request", fields)
	}
}

// CORS applies the allowed origins to every response and answers preflight
// requests directly. No origins disables the middleware.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Limiter decides whether a client may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// counter is the subset of redis commands the limiter needs.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisLimiter counts requests per key in fixed windows. The window starts
// with the first request and is not extended by later ones.
type RedisLimiter struct {
	client counter
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether it is within
// the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = "rate_limit:" + key
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	expire := n == 1
	if !expire && n > int64(l.limit) {
		// Repair a counter whose TTL was never set.
		ttl, err := l.client.TTL(ctx, key).Result()
		if err != nil {
			return false, fmt.Errorf("failed to read rate window: %w", err)
		}
		expire = ttl < 0
	}
	if expire {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}

// RateLimit rejects clients over the limit with 429. A nil limiter allows
// everything; limiter errors are logged and the request is let through.
func RateLimit(limiter Limiter, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warnf("rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// Metrics tracks request counts and latency.
type Metrics struct {
	totalRequests   atomic.Int64
	failedRequests  atomic.Int64
	rateLimited     atomic.Int64
	totalLatencyMic atomic.Int64
	startedAt       time.Time
}

// NewMetrics creates an empty collector.
func NewMetrics() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

// Middleware records every request.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.totalRequests.Add(1)
		switch status := c.Writer.Status(); {
		case status == http.StatusTooManyRequests:
			m.rateLimited.Add(1)
		case status >= http.StatusInternalServerError:
			m.failedRequests.Add(1)
		}
		m.totalLatencyMic.Add(time.Since(start).Microseconds())
	}
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() gin.H {
	reqs := m.totalRequests.Load()
	var avg int64
	if reqs > 0 {
		avg = m.totalLatencyMic.Load() / reqs
	}
	return gin.H{
		"requests_total":        reqs,
		"requests_failed":       m.failedRequests.Load(),
		"requests_rate_limited": m.rateLimited.Load(),
		"avg_latency_micros":    avg,
		"uptime_seconds":        int64(time.Since(m.startedAt).Seconds()),
	}
}

// Handler serves Snapshot as JSON.
func (m *Metrics) Handler(c *gin.Context) {
	c.JSON(http.StatusOK, m.Snapshot())
}
