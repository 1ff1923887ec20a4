package service

import (
	"context"

	"cebuano/internal/domain"
	"cebuano/internal/repository"

	"go.uber.org/zap"
)

// ProgressService reports learner progress for one item kind
type ProgressService struct {
	reviews repository.ReviewRepository
	clock   Clock
	logger  *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(reviews repository.ReviewRepository, clock Clock, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		reviews: reviews,
		clock:   clock,
		logger:  logger,
	}
}

// GetProgress returns the learner's totals, due count and streak
func (s *ProgressService) GetProgress(ctx context.Context, userID string) (domain.Progress, error) {
	snap, err := s.reviews.GetProgressSnapshot(ctx, userID, s.clock())
	if err != nil {
		s.logger.Error("Failed to load progress", zap.String("user_id", userID), zap.Error(err))
		return domain.Progress{}, err
	}

	return domain.Progress{
		TotalLearned: snap.ReviewsCompleted,
		DueToday:     snap.DueCount,
		Streak:       snap.ConsecutiveDays,
	}, nil
}
