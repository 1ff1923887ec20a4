package middleware

import (
	"context"
	"strconv"
	"time"

	"cebuano/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const ensureTimeout = 5 * time.Second

// EnsureLearner creates the learner record before any bot handler runs
func EnsureLearner(settings *service.SettingsService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), ensureTimeout)
			defer cancel()

			userID := strconv.FormatInt(sender.ID, 10)
			if err := settings.EnsureUser(ctx, userID); err != nil {
				logger.Error("Failed to ensure learner exists in middleware",
					zap.String("user_id", userID),
					zap.Error(err))
				return c.Send("Something went wrong. Please try again later.")
			}

			return next(c)
		}
	}
}
