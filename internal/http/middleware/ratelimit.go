package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit caps how often a route group can be hit, across all callers.
// The manual sweep trigger is open to anyone on the network; sweeps are
// idempotent, so refusing the overflow loses nothing.
func RateLimit(every time.Duration, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(every), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
