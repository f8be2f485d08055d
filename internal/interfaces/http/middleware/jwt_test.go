package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenext/backend/internal/domain/pricing"
	"github.com/sevenext/backend/internal/infrastructure/auth"
	"github.com/sevenext/backend/internal/infrastructure/config"
)

func newTestJWT(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "middleware-test-secret-32-characters",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "sevenext-test",
	})
}

func issue(t *testing.T, svc *auth.JWTService, userType pricing.Audience) *auth.TokenPair {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.Subject{UserID: uuid.New(), Email: "asha@example.com", UserType: userType})
	require.NoError(t, err)
	return pair
}

func protectedRouter(cfg JWTConfig) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetJWTUserID(c),
			"user_type": c.GetString(JWTUserTypeKey),
			"email":     GetJWTClaims(c).Email(),
		})
	})
	return r
}

func callWithToken(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestJWT(time.Minute)
	pair := issue(t, svc, pricing.AudienceB2B)

	w := callWithToken(protectedRouter(JWTConfig{JWTService: svc}), "/me", pair.AccessToken)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_type":"b2b"`)
	assert.Contains(t, w.Body.String(), `"email":"asha@example.com"`)
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := newTestJWT(time.Minute)
	pair := issue(t, svc, pricing.AudienceB2C)
	expired := issue(t, newTestJWT(-time.Minute), pricing.AudienceB2C)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"garbage", "not-a-jwt", "INVALID_TOKEN"},
		{"expired", expired.AccessToken, "TOKEN_EXPIRED"},
		{"refresh used as access", pair.RefreshToken, "INVALID_TOKEN_TYPE"},
	}
	router := protectedRouter(JWTConfig{JWTService: svc})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := callWithToken(router, "/me", tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestJWTAuth_MissingCredentials(t *testing.T) {
	svc := newTestJWT(time.Minute)
	pair := issue(t, svc, pricing.AudienceB2C)
	router := protectedRouter(JWTConfig{JWTService: svc})

	for name, header := range map[string]string{
		"no header":    "",
		"basic scheme": "Basic dXNlcjpwYXNz",
		"raw token":    pair.AccessToken,
		"empty bearer": "Bearer   ",
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set(AuthHeaderKey, header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, "UNAUTHORIZED", errInfo.Code)
			assert.Equal(t, "Authentication required", errInfo.Message)
		})
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := newTestJWT(time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()
	pair := issue(t, svc, pricing.AudienceB2C)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	w := callWithToken(protectedRouter(JWTConfig{JWTService: svc, Blacklist: blacklist}), "/me", pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REVOKED", decodeError(t, w).Code)
}

func TestJWTAuth_UserTokensInvalidated(t *testing.T) {
	svc := newTestJWT(time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()
	pair := issue(t, svc, pricing.AudienceB2C)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddUserTokensToBlacklist(context.Background(), claims.UserID, time.Minute))

	w := callWithToken(protectedRouter(JWTConfig{JWTService: svc, Blacklist: blacklist}), "/me", pair.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalJWTAuth(t *testing.T) {
	svc := newTestJWT(time.Minute)
	r := gin.New()
	r.GET("/products", OptionalJWTAuth(JWTConfig{JWTService: svc}), func(c *gin.Context) {
		c.String(http.StatusOK, string(ResolveAudience(c)))
	})

	t.Run("anonymous defaults to b2c", func(t *testing.T) {
		w := callWithToken(r, "/products", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "b2c", w.Body.String())
	})

	t.Run("anonymous query parameter", func(t *testing.T) {
		w := callWithToken(r, "/products?user_type=b2b", "")
		assert.Equal(t, "b2b", w.Body.String())
	})

	t.Run("token wins over query", func(t *testing.T) {
		pair := issue(t, svc, pricing.AudienceB2C)
		w := callWithToken(r, "/products?user_type=b2b", pair.AccessToken)
		assert.Equal(t, "b2c", w.Body.String())
	})

	t.Run("invalid token treated as anonymous", func(t *testing.T) {
		w := callWithToken(r, "/products?user_type=b2b", "broken")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "b2b", w.Body.String())
	})
}

func TestGetJWTClaims_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
}
