package auth

import (
	"errors"
	"net/http"
	"strings"

	"go-shop/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CookieName is the HTTP-only cookie carrying the token for browser clients.
const CookieName = "token"

// TokenFromRequest prefers the Authorization header and falls back to the
// token cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid token and attaches the
// resolved user to the request context.
func AuthMiddleware(tokens *TokenService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token not provided"})
			return
		}
		u, err := tokens.Verify(c.Request.Context(), tokenStr)
		if errors.Is(err, apperr.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if err != nil {
			log.WithError(err).Error("[Auth] token verification failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u, tokenStr))
		c.Set("userId", u.ID)
		c.Set("userRole", u.Role)
		c.Next()
	}
}
