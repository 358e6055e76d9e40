package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ctxIsAdmin  = "auth.isAdmin"
	ctxUsername = "auth.username"
)

// Sessions decodes the session cookie when present and records the
// caller's identity on the context. Requests without a valid session
// proceed as anonymous; gating happens per-route.
func Sessions(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			if claims, err := ParseSession(secret, cookie); err == nil {
				c.Set(ctxIsAdmin, claims.Admin)
				c.Set(ctxUsername, claims.Username)
			}
		}
		c.Next()
	}
}

// RequireAdmin aborts with 401 unless the caller holds an admin
// session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin login required"})
			return
		}
		c.Next()
	}
}

// IsAdmin reports whether the request carries an admin session.
func IsAdmin(c *gin.Context) bool {
	admin, ok := c.Get(ctxIsAdmin)
	return ok && admin == true
}

// Username returns the session username, empty for anonymous callers.
func Username(c *gin.Context) string {
	if v, ok := c.Get(ctxUsername); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
