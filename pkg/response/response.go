package response

import (
	"errors"
	"net/http"
	"strconv"

	"anoa.com/bloodlink/internal/entity"
	"anoa.com/bloodlink/pkg/apperror"
	"anoa.com/bloodlink/pkg/logger"
	"anoa.com/bloodlink/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware.
const (
	KeyUserID   = "user_id"
	KeyRole     = "role"
	KeyJTI      = "jti"
	KeyTokenExp = "token_exp"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(KeyUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	s, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetPrincipal builds the caller identity from the values the auth middleware stored.
func GetPrincipal(c *gin.Context) (entity.Principal, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return entity.Principal{}, err
	}

	role := entity.Role(c.GetString(KeyRole))
	if !role.Valid() {
		return entity.Principal{}, apperror.ErrUnauthorized
	}

	return entity.Principal{UserID: userID, Role: role}, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	var rlErr *ratelimiter.RateLimitError
	if errors.As(err, &rlErr) {
		code = http.StatusTooManyRequests
		if secs := int(rlErr.RetryAfter.Seconds()); secs > 0 {
			c.Header("Retry-After", strconv.Itoa(secs))
		}
	}

	if code == http.StatusInternalServerError {
		logger.Error("internal error",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
