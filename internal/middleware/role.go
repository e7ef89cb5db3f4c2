package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/lahiru-voiceai/site/pkg/response"
)

// RequireRole lets through requests whose token carries one of roles. It must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		switch {
		case role == "":
			response.Unauthorized(c, "not signed in")
		case !slices.Contains(roles, role):
			response.Forbidden(c, "admin access required")
		default:
			c.Next()
			return
		}
		c.Abort()
	}
}
