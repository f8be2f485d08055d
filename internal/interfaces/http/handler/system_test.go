package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestSystemHandler_Health(t *testing.T) {
	healthy := NewSystemHandler(pingFunc(func(context.Context) error { return nil }), "1.2.3")
	down := NewSystemHandler(pingFunc(func(context.Context) error { return errors.New("refused") }), "1.2.3")

	r := gin.New()
	r.GET("/up", healthy.Health)
	r.GET("/down", down.Health)

	w := performJSON(r, http.MethodGet, "/up", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData[HealthResponse](t, w)
	assert.Equal(t, "healthy", data.Status)
	assert.Equal(t, "1.2.3", data.Version)

	w = performJSON(r, http.MethodGet, "/down", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "down", resp.Data.(map[string]any)["database"])
}
