package mockapi

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AccessLog logs every request once it has been served.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		logger.Debug("request served", fields...)
	}
}

// RateLimit answers 429 once the server-wide request rate exceeds qps.
func RateLimit(qps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(qps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "request limited",
				"ts":     time.Now().Unix(),
			})
			return
		}

		c.Next()
	}
}

// Latency delays every response by d.
func Latency(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			c.Next()
		case <-c.Request.Context().Done():
			c.Abort()
		}
	}
}

// FaultInjection fails the given fraction of requests with 503.
func FaultInjection(failureRate float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rand.Float64() < failureRate {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "injected failure"})
			return
		}
		c.Next()
	}
}
