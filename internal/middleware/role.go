package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/saemahesh/webinar-ai/internal/auth"
	"github.com/saemahesh/webinar-ai/internal/models"
	"github.com/saemahesh/webinar-ai/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireApproved blocks hosts whose account is not approved. Admins pass
// through; host approval status is read from the token, so a revocation takes
// effect at next login.
func RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsVal, ok := c.Get(ContextClaims)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		claims, _ := claimsVal.(*auth.Claims)
		if claims == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if claims.Role == string(models.RoleHost) && claims.Status != string(models.StatusApproved) {
			response.Forbidden(c, "account not approved")
			c.Abort()
			return
		}
		c.Next()
	}
}
