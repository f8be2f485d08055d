package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/sevenext/backend/internal/interfaces/http/dto"
)

// RateLimiter hands out one token bucket per client key. Buckets of idle clients
// expire after a few windows.
type RateLimiter struct {
	requests int
	every    rate.Limit
	buckets  *gocache.Cache
}

// NewRateLimiter allows requests per window, refilling continuously, with a burst of requests
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		requests: requests,
		every:    rate.Limit(float64(requests) / window.Seconds()),
		buckets:  gocache.New(3*window, 6*window),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := rl.buckets.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.every, rl.requests)
	if err := rl.buckets.Add(key, l, gocache.DefaultExpiration); err != nil {
		// another request created the bucket first
		if v, ok := rl.buckets.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// Reserve takes a token for key. It returns zero when the request may proceed,
// otherwise how long the client should wait.
func (rl *RateLimiter) Reserve(key string) time.Duration {
	l := rl.limiter(key)
	rl.buckets.SetDefault(key, l)
	now := time.Now()
	r := l.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	return delay
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.requests)
	return func(c *gin.Context) {
		c.Header("X-RateLimit-Limit", limit)
		if wait := limiter.Reserve(keyFunc(c)); wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
