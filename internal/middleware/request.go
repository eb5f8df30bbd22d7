package middleware

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	maxRequestIDLen = 128
)

// RequestID propagates the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one entry when a request arrives and one when it
// completes. The completion entry carries the matched route template and,
// once the auth and tenant guards have run, the caller's identity.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		entry := logger.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
		})
		entry.WithField("user_agent", c.Request.UserAgent()).Debug("Request received")

		c.Next()

		status := c.Writer.Status()
		done := entry.WithFields(logrus.Fields{
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(started).Milliseconds(),
			"bytes_out":  c.Writer.Size(),
		})
		if user, ok := CurrentUser(c); ok {
			done = done.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role})
		}
		if tenant := TenantID(c); tenant != "" {
			done = done.WithField("tenant_id", tenant)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			done = done.WithField("errors", errs.String())
		}

		switch {
		case status >= 500:
			done.Error("Request failed")
		case status >= 400:
			done.Warn("Request rejected")
		default:
			done.Info("Request served")
		}
	}
}

// Recovery turns a panic into a generic 500 envelope.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": GetRequestID(c),
			"panic":      recovered,
		}).Error("Middleware: Recovered from panic")
		response.Abort(c, 500, "An unexpected error occurred")
	})
}
