package middleware

import (
	"net/http"
	"strings"
	"time"

	"cebuano/internal/metrics"
	"cebuano/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// UserIDHeader identifies the learner on API requests
	UserIDHeader = "X-User-ID"

	userIDKey = "user_id"
)

// RequireLearner reads the learner id header and makes sure the learner exists
func RequireLearner(settings *service.SettingsService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "missing_user", "message": UserIDHeader + " header is required"},
			})
			return
		}

		if err := settings.EnsureUser(c.Request.Context(), userID); err != nil {
			logger.Error("Failed to ensure learner exists", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "internal", "message": "failed to load learner"},
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the learner id stored by RequireLearner
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RequestLogger logs every request and records its duration
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)
		m.ObserveRequest(c.Request.Method, route, status, duration)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		}
		if userID := UserID(c); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
			return
		}
		logger.Info("Request handled", fields...)
	}
}
