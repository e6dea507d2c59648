package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/bloodlink/internal/entity"
	"anoa.com/bloodlink/pkg/apperror"
	"anoa.com/bloodlink/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetPrincipal(t *testing.T) {
	c, _ := newContext()
	id := uuid.New()
	c.Set(KeyUserID, id.String())
	c.Set(KeyRole, "doctor")

	p, err := GetPrincipal(c)
	require.NoError(t, err)
	assert.Equal(t, id, p.UserID)
	assert.Equal(t, entity.RoleDoctor, p.Role)
}

func TestGetPrincipalRejectsMissingOrBadValues(t *testing.T) {
	c, _ := newContext()
	_, err := GetPrincipal(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set(KeyUserID, "not-a-uuid")
	_, err = GetPrincipal(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set(KeyUserID, uuid.NewString())
	c.Set(KeyRole, "admin")
	_, err = GetPrincipal(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"not found", fmt.Errorf("alert: %w", apperror.ErrNotFound), http.StatusNotFound, "alert: resource not found"},
		{"conflict", apperror.ErrConflict, http.StatusConflict, "conflict"},
		{"internal hides detail", fmt.Errorf("pq: broken pipe"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			ResponseError(c, tt.err)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestResponseErrorRateLimit(t *testing.T) {
	c, w := newContext()
	ResponseError(c, &ratelimiter.RateLimitError{Message: "slow down", RetryAfter: 42 * time.Second})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
}
