package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// defaultIdleTTL is how long an idle client's bucket is kept.
const defaultIdleTTL = 10 * time.Minute

// RateLimiter implements token bucket rate limiting per client IP. Buckets of
// clients that stay idle longer than the TTL are dropped.
type RateLimiter struct {
	limiters  sync.Map // key -> *clientLimiter
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep atomic.Int64
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// NewRateLimiter allows requestsPerSecond with bursts up to burst.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	ttl := defaultIdleTTL
	// keep a bucket at least until it would have refilled
	if requestsPerSecond > 0 {
		if refill := time.Duration(float64(burst) / requestsPerSecond * float64(time.Second)); refill > ttl {
			ttl = refill
		}
	}

	rl := &RateLimiter{
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
		idleTTL: ttl,
		now:     time.Now,
	}
	rl.lastSweep.Store(rl.now().UnixNano())
	return rl
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()

	v, ok := rl.limiters.Load(key)
	if !ok {
		v, _ = rl.limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	}
	cl := v.(*clientLimiter)
	cl.lastSeen.Store(now.UnixNano())

	rl.sweep(now)
	return cl.limiter
}

// sweep drops idle buckets at most once per TTL.
func (rl *RateLimiter) sweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(rl.idleTTL) || !rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-rl.idleTTL).UnixNano()
	rl.limiters.Range(func(k, v any) bool {
		if v.(*clientLimiter).lastSeen.Load() < cutoff {
			rl.limiters.Delete(k)
		}
		return true
	})
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getLimiter("ip:" + c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "rate limit exceeded"})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}
