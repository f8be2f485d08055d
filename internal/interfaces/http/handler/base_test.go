package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/domain/shared"
	"github.com/sevenext/backend/internal/infrastructure/auth"
	"github.com/sevenext/backend/internal/infrastructure/config"
	"github.com/sevenext/backend/internal/interfaces/http/dto"
	"github.com/sevenext/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func performJSON(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp struct {
		Success bool      `json:"success"`
		Data    T         `json:"data"`
		Meta    *dto.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

type testAuth struct {
	jwt *auth.JWTService
}

func newTestAuth() testAuth {
	return testAuth{jwt: auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-32-characters",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "sevenext-test",
	})}
}

func (a testAuth) token(t *testing.T, userID uuid.UUID, email string, userType pricing.Audience) string {
	t.Helper()
	pair, err := a.jwt.GenerateTokenPair(auth.Subject{UserID: userID, Email: email, UserType: userType})
	require.NoError(t, err)
	return pair.AccessToken
}

func (a testAuth) required() gin.HandlerFunc {
	return middleware.JWTAuth(middleware.JWTConfig{JWTService: a.jwt})
}

func (a testAuth) optional() gin.HandlerFunc {
	return middleware.OptionalJWTAuth(middleware.JWTConfig{JWTService: a.jwt})
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", shared.NewValidationError("INVALID_ITEM", "bad item"), http.StatusBadRequest, "INVALID_ITEM"},
		{"not found", shared.NewNotFoundError("PRODUCT_NOT_FOUND", "missing"), http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"business rule", shared.NewDomainError("MINIMUM_NOT_MET", "too small"), http.StatusUnprocessableEntity, "MINIMUM_NOT_MET"},
		{"upstream", shared.NewUpstreamError("SERVICEABILITY_UNAVAILABLE", "later"), http.StatusServiceUnavailable, "SERVICEABILITY_UNAVAILABLE"},
		{"forbidden", shared.NewForbiddenError("B2B_NOT_APPROVED", "pending"), http.StatusForbidden, "B2B_NOT_APPROVED"},
		{"conflict", shared.NewConflictError("EMAIL_EXISTS", "taken"), http.StatusConflict, "EMAIL_EXISTS"},
		{"wrapped", errors.Join(errors.New("ctx"), shared.NewNotFoundError("ORDER_NOT_FOUND", "missing")), http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h BaseHandler
			r := gin.New()
			r.Use(middleware.RequestID())
			r.GET("/", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := performJSON(r, http.MethodGet, "/", nil, "")

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
			assert.NotContains(t, resp.Error.Message, "connection reset")
		})
	}
}

func TestBaseHandler_CurrentUserRequiresClaims(t *testing.T) {
	var h BaseHandler
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		if _, ok := h.currentUserID(c); ok {
			c.Status(http.StatusOK)
		}
	})

	w := performJSON(r, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
