package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/schoolhub/internal/authz"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
)

// RequireRole gates a route group on role membership. It must run after
// RequireAuth; a missing profile context is an authentication failure, not a
// permission one.
func (m *AuthMiddleware) RequireRole(allowed ...profile.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := ProfileFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if err := authz.RequireRole(p, allowed...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": err.Error(),
				},
			})
			return
		}

		c.Next()
	}
}
