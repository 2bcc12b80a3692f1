package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/ahvar/team-activity-monitor/common/id"
	"github.com/ahvar/team-activity-monitor/common/logger"
	"github.com/gin-gonic/gin"
)

const RequestIDHeader = "X-Request-Id"

// Logger tags the request context with a request ID, echoes it in the
// response header, and logs one line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		requestID := id.New()
		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
			RequestID: logger.Ptr(requestID),
			Component: "monitor.http",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, strconv.FormatInt(requestID, 10))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}
