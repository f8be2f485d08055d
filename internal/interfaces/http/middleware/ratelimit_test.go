package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sevenext/backend/internal/interfaces/http/dto"
)

func TestRateLimiter_Reserve(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.Zero(t, rl.Reserve("10.0.0.1"))
	assert.Zero(t, rl.Reserve("10.0.0.1"))
	wait := rl.Reserve("10.0.0.1")
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, 30*time.Second)

	assert.Zero(t, rl.Reserve("10.0.0.2"), "keys have separate buckets")
}

func TestRateLimiter_DeniedRequestsDoNotConsume(t *testing.T) {
	rl := NewRateLimiter(1, 100*time.Millisecond)

	assert.Zero(t, rl.Reserve("k"))
	for i := 0; i < 5; i++ {
		assert.Positive(t, rl.Reserve("k"))
	}
	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, rl.Reserve("k"))
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(1, time.Minute)))
	router.GET("/", okHandler)

	get := func(remote string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		router.ServeHTTP(w, req)
		return w
	}

	first := get("192.168.1.10:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := get("192.168.1.10:5001")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decodeError(t, second).Code)

	assert.Equal(t, http.StatusOK, get("192.168.1.11:5000").Code)
}

func TestRateLimitByKey(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitByKey(NewRateLimiter(1, time.Minute), func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}))
	router.GET("/", okHandler)

	send := func(client string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", client)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"))
}
