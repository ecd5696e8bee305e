package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "github.com/mrlokans/bookclub/internal/errors"
)

const (
	headerRequestID     = "X-Request-ID"
	contextKeyRequestID = "request_id"
	contextKeyLogger    = "logger"
)

// RequestIDMiddleware tags each request with an ID, reusing the caller's
// X-Request-ID when present, and stores a logger carrying it.
func RequestIDMiddleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Set(contextKeyLogger, log.With("request_id", id))
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// AccessLogMiddleware logs one line per request.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		requestLogger(c).Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// RecoveryMiddleware turns a panic into a Mason 500. The request
// transaction has already been rolled back by the time it gets here.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLogger(c).Error("panic recovered", "panic", recovered)
		respondError(c, domainerrors.Internal("Internal server error"))
		c.Abort()
	})
}

func requestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
