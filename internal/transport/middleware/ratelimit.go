package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key fits the budget.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit returns middleware that answers 429 once the client IP exceeds
// the limiter's budget. retryAfter is advertised in the Retry-After header.
func RateLimit(l Limiter, retryAfter time.Duration) Middleware {
	seconds := strconv.Itoa(int(retryAfter.Seconds()) + 1)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), clientIP(r)) {
				w.Header().Set("Retry-After", seconds)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ---------------------------------------------------------------------------
// In-process token bucket
// ---------------------------------------------------------------------------

// RateLimiter implements per-key token bucket rate limiting in process memory.
type RateLimiter struct {
	buckets    sync.Map // map[string]*bucket
	maxTokens  float64
	refillRate float64 // tokens per second
	stop       chan struct{}
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a limiter allowing limit requests per window with
// background cleanup. Call Stop() on shutdown.
func NewRateLimiter(limit int, window time.Duration, cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		maxTokens:  float64(limit),
		refillRate: float64(limit) / window.Seconds(),
		stop:       make(chan struct{}),
	}
	go rl.cleanup(cleanupInterval)
	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(_ context.Context, key string) bool {
	val, _ := rl.buckets.LoadOrStore(key, &bucket{
		tokens:     rl.maxTokens,
		lastRefill: time.Now(),
	})
	return rl.take(val.(*bucket))
}

func (rl *RateLimiter) take(b *bucket) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * rl.refillRate
	if b.tokens > rl.maxTokens {
		b.tokens = rl.maxTokens
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			now := time.Now()
			rl.buckets.Range(func(key, value any) bool {
				b := value.(*bucket)
				b.mu.Lock()
				idle := now.Sub(b.lastRefill)
				b.mu.Unlock()
				if idle > 10*time.Minute {
					rl.buckets.Delete(key)
				}
				return true
			})
		}
	}
}

// ---------------------------------------------------------------------------
// Redis fixed window
// ---------------------------------------------------------------------------

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisLimiter counts requests per key in fixed windows shared by every
// server instance. Redis errors fail closed.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
	log    *slog.Logger
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client redis.Scripter, prefix string, limit int, window time.Duration, logger *slog.Logger) (*RedisLimiter, error) {
	if limit <= 0 || window < time.Millisecond {
		return nil, fmt.Errorf("rate limiter requires positive limit and window")
	}
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		log:    logger.With("adapter", "redis_ratelimit"),
		now:    time.Now,
	}, nil
}

// Allow increments the counter of the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		l.log.WarnContext(ctx, "rate limit check failed", slog.String("error", err.Error()))
		return false
	}
	return n <= int64(l.limit)
}
