package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKey returns a gin middleware that enforces API key authentication.
func APIKey(mode, header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Non-apikey modes or unconfigured key → allow everything.
		if mode != "apikey" || key == "" {
			c.Next()
			return
		}

		got := extractKey(c, header)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			slog.Warn("auth: rejected request", "path", c.FullPath(), "remote", c.ClientIP(), "key_present", got != "")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

// extractKey prefers the configured header and falls back to a bearer token.
func extractKey(c *gin.Context, header string) string {
	if v := c.GetHeader(header); v != "" {
		return v
	}
	bearer := c.GetHeader("Authorization")
	parts := strings.SplitN(bearer, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
