package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"pixelgate/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminAuth guards the admin API with the static ADMIN_TOKEN. With no token
// configured the API is open, which is how local development runs.
func (h *Handler) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cfg.AdminToken == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.AdminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func (h *Handler) RateLimitMiddleware(limiter *services.IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}

// noStore marks list responses as private and briefly revalidatable so the
// admin console never shows a stale index.
func noStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, max-age=0, stale-while-revalidate=30")
		c.Next()
	}
}
