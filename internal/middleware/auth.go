package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"anoa.com/bloodlink/internal/entity"
	userDto "anoa.com/bloodlink/internal/modules/user/dto"
	userRepo "anoa.com/bloodlink/internal/modules/user/repository"
	"anoa.com/bloodlink/pkg/logger"
	"anoa.com/bloodlink/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	tokens userRepo.TokenRepository
	secret string
}

func NewAuthMiddleware(tokens userRepo.TokenRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		secret: secret,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims := &userDto.Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return []byte(m.secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if !entity.Role(claims.Role).Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		revoked, err := m.tokens.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// fail open: sessions stay usable while redis is down
			logger.Warn("token revocation lookup failed", zap.Error(err))
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
			return
		}

		c.Set(response.KeyUserID, claims.Subject)
		c.Set(response.KeyRole, claims.Role)
		c.Set(response.KeyJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(response.KeyTokenExp, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := response.GetPrincipal(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if !principal.Is(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s access required", joinRoles(roles))})
			return
		}

		c.Next()
	}
}

func joinRoles(roles []entity.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, " or ")
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}
