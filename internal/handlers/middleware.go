package handlers

import (
	"net/http"

	"affilink/internal/services"
	"affilink/pkg/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AdminRequired lets the request through only when the session belongs to
// the allow-listed administrator. Any other session is signed out.
func (h *Handler) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email, _ := session.Get(sessionEmailKey).(string)

		if email == "" || !h.authService.IsAllowed(email) {
			if email != "" {
				h.log(c).Warn("Signing out session for non-admin email", "email", email)
				session.Clear()
				if err := session.Save(); err != nil {
					h.log(c).Error("Failed to clear session", "error", err)
				}
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(sessionEmailKey, email)
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

// RequestID propagates X-Request-ID, generating one when absent.
func (h *Handler) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = utils.NewRequestID()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
