package middleware

import (
	"net/http"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by RequireRole for downstream handlers.
const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// RequireRole returns a gin middleware that authenticates the request from
// the role's JWT cookie. A missing or unparseable token yields 401; a valid
// token carrying a different role yields 403.
func RequireRole(manager *auth.Manager, role string) gin.HandlerFunc {
	cookieName := auth.CookieForRole(role)
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authentication required",
			})
			return
		}

		claims, err := manager.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}

		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "insufficient permissions",
			})
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
