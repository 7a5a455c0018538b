package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/user/llm-router-go/internal/service"
)

// GetSessionToken extracts the session token from cookie or Authorization header.
func GetSessionToken(c *gin.Context) string {
	if token, err := c.Cookie("session_token"); err == nil && token != "" {
		return token
	}

	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}

	return ""
}

// GetCurrentAdmin retrieves the authenticated admin from context.
func GetCurrentAdmin(c *gin.Context) *service.CurrentAdmin {
	v, ok := c.Get("current_admin")
	if !ok {
		return nil
	}
	admin, ok := v.(*service.CurrentAdmin)
	if !ok {
		return nil
	}
	return admin
}

// RequireAuth requires a valid management session.
func RequireAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := GetSessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{"detail": "missing authentication token"})
			return
		}

		admin, err := authService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"detail": "invalid or expired session"})
			return
		}

		c.Set("current_admin", admin)
		c.Next()
	}
}
