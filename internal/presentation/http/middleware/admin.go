package middleware

import (
	"net/http"

	"github.com/brightforge/brightforge-go/internal/application/services"
	"github.com/brightforge/brightforge-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// adminUserKey is the context key carrying the verified admin username.
const adminUserKey = "adminUser"

// AdminAuthMiddleware guards dashboard routes with the admin session
// cookie. Every rejection is the same 401 regardless of cause.
func AdminAuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(config.SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := authService.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(adminUserKey, claims.Username)
		c.Next()
	}
}

// GetAdminUser returns the authenticated admin username, if any.
func GetAdminUser(c *gin.Context) (string, bool) {
	v, ok := c.Get(adminUserKey)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok
}
