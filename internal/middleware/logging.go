package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates one, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(RequestIDHeader, reqID)
		c.Next()
	}
}

// RequestLogger logs every request twice: on arrival and once the handlers are done.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		base := requestFields(c)
		logger.WithFields(base).WithField("user_agent", c.Request.UserAgent()).Info("Incoming request")

		c.Next()

		status := c.Writer.Status()
		done := logger.WithFields(base).WithFields(logrus.Fields{
			"status_code": status,
			"latency_ms":  time.Since(started).Milliseconds(),
		})
		if caller, ok := CallerFromContext(c); ok {
			done = done.WithField("caller", caller.Email)
		}

		switch {
		case len(c.Errors) > 0:
			done.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case status >= 500:
			done.Error("Request completed with server error")
		case status >= 400:
			done.Warn("Request completed with client error")
		default:
			done.Info("Request completed successfully")
		}
	}
}

func requestFields(c *gin.Context) logrus.Fields {
	fields := logrus.Fields{
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"remote_ip": c.ClientIP(),
	}
	if reqID := c.Writer.Header().Get(RequestIDHeader); reqID != "" {
		fields["request_id"] = reqID
	}
	return fields
}
