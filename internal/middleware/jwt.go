package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lahiru-voiceai/site/internal/auth"
	"github.com/lahiru-voiceai/site/pkg/response"
)

// Context keys set by JWT.
const (
	ContextSubject  = "subject"
	ContextUserRole = "user_role"
)

// JWT rejects requests without a valid admin bearer token and stores its subject and role.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "bearer token required")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextSubject, claims.Subject)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
