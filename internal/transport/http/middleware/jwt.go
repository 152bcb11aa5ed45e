package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"mvp-foundry/internal/pkg/jwtutil"
	"mvp-foundry/internal/transport/http/response"
)

const ContextOperatorKey = "operator"

// AuthJWT requires a valid bearer token signed with secret. With an empty
// secret every request passes through unauthenticated.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, 401, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, 401, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextOperatorKey, claims.Operator)
		c.Next()
	}
}

// Operator returns the authenticated operator name, or "" when the request
// was not authenticated.
func Operator(c *gin.Context) string {
	return c.GetString(ContextOperatorKey)
}
