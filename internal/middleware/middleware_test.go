package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/bloodlink/internal/entity"
	userDto "anoa.com/bloodlink/internal/modules/user/dto"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

func signToken(t *testing.T, role string, ttl time.Duration, key string) string {
	t.Helper()
	claims := userDto.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(userRepo.NewTokenRepository(nil), secret)

	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		p, err := response.GetPrincipal(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "jti": c.GetString(response.KeyJTI)})
	})
	r.GET("/bank", m.RequireAuth(), m.RequireRole(entity.RoleBank), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter()

	w := get(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", signToken(t, "donor", time.Hour, "other-secret"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", signToken(t, "donor", -time.Minute, secret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", signToken(t, "admin", time.Hour, secret))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", signToken(t, "donor", time.Hour, secret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"donor"`)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	w := get(r, "/bank", signToken(t, "doctor", time.Hour, secret))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "bank access required")

	w = get(r, "/bank", signToken(t, "bank", time.Hour, secret))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIPRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mw, err := IPRateLimit("2-M", "test_auth", nil)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/login", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.1.2.3:4567"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = IPRateLimit("lots", "bad", nil)
	assert.Error(t, err)
}
