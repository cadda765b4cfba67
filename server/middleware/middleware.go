// Package middleware holds the gin middleware chain of the audit service.
package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "auditserver/server/errors"
)

// RequestID attaches a unique request ID to every request. An incoming
// X-Request-ID header is honored so upstream proxies can correlate logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// GetRequestID extracts the request ID from the gin context.
func GetRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// CORS adds permissive CORS headers. The tool runs on the internal network
// and the front-end may be served from a different host.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Request-ID, X-Audit-User")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Gzip compresses responses. Result workbooks are already compressed, but
// JSON previews and audit listings shrink well.
func Gzip() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// Logger logs every request with its latency and request ID.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s -> %d (%s) request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Millisecond), GetRequestID(c))
	}
}

// RateLimit caps criterion runs across all users. Runs parse whole extracts
// in memory, so a handful per minute is plenty for one audit team.
func RateLimit(runsPerMinute, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(float64(runsPerMinute)/60.0), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			appErr := apperrors.NewTooManyRequestsError("too many criterion runs, retry shortly")
			c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{
				"error": appErr.UserMessage(),
			})
			return
		}
		c.Next()
	}
}
