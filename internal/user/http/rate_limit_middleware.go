package http

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds per-client rate limit settings for the login endpoint.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// loginRateLimiter keeps one token bucket per client IP.
type loginRateLimiter struct {
	cfg      RateLimitConfig
	limiters sync.Map
}

func (l *loginRateLimiter) limiter(clientIP string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(clientIP); ok {
		return limiter.(*rate.Limiter)
	}

	limiter, _ := l.limiters.LoadOrStore(
		clientIP,
		rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst),
	)
	return limiter.(*rate.Limiter)
}

// LoginRateLimitMiddleware throttles authentication attempts per client IP to
// slow down credential stuffing. Over-limit requests get 429.
func LoginRateLimitMiddleware(cfg RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	rl := &loginRateLimiter{cfg: cfg}

	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			if logger != nil {
				logger.Warn("login rate limit exceeded", slog.String("client_ip", c.ClientIP()))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "too_many_requests",
				"message": "too many login attempts, slow down",
			})
			return
		}
		c.Next()
	}
}
