package service

import (
	"context"
	"fmt"

	"cebuano/internal/domain"
	"cebuano/internal/repository"
	"cebuano/internal/srs"

	"go.uber.org/zap"
)

// DefaultDailyReviewCap applies when a caller passes a non-positive cap
const DefaultDailyReviewCap = 300

// ReviewObserver is notified after a review has been persisted
type ReviewObserver interface {
	OnReviewRecorded(ctx context.Context, review domain.RecordedReview) error
}

// LimitObserver is implemented by observers that also want to know about
// submissions rejected by the daily cap
type LimitObserver interface {
	OnDailyLimitReached(ctx context.Context, kind domain.ItemKind, userID string)
}

// ReviewRecorder records review submissions for one item kind
type ReviewRecorder struct {
	kind      domain.ItemKind
	reviews   repository.ReviewRepository
	clock     Clock
	observers []ReviewObserver
	logger    *zap.Logger
	locks     *keyedMutex
}

// NewReviewRecorder creates a new review recorder
func NewReviewRecorder(
	kind domain.ItemKind,
	reviews repository.ReviewRepository,
	clock Clock,
	logger *zap.Logger,
	observers ...ReviewObserver,
) *ReviewRecorder {
	return &ReviewRecorder{
		kind:      kind,
		reviews:   reviews,
		clock:     clock,
		observers: observers,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// Record schedules and persists one review. It fails with
// domain.ErrDailyLimitReached once dailyReviewCap reviews exist today.
func (r *ReviewRecorder) Record(ctx context.Context, userID, itemID string, rating domain.Rating, dailyReviewCap int) (*domain.ReviewState, error) {
	if _, err := rating.Quality(); err != nil {
		return nil, err
	}
	if dailyReviewCap <= 0 {
		dailyReviewCap = DefaultDailyReviewCap
	}

	// Serialize per learner so the cap check and the state read stay valid
	// until the write commits
	unlock := r.locks.Lock(string(r.kind) + ":" + userID)
	defer unlock()

	now := r.clock()

	count, err := r.reviews.CountReviewsOnDate(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	if count >= dailyReviewCap {
		r.logger.Info("Daily review cap reached",
			zap.String("user_id", userID),
			zap.String("kind", string(r.kind)),
			zap.Int("cap", dailyReviewCap))
		for _, o := range r.observers {
			if lo, ok := o.(LimitObserver); ok {
				lo.OnDailyLimitReached(ctx, r.kind, userID)
			}
		}
		return nil, domain.ErrDailyLimitReached
	}

	existing, err := r.reviews.FindByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	var state *domain.ReviewState
	if existing == nil {
		next, err := srs.InitialSchedule(rating, now)
		if err != nil {
			return nil, err
		}
		state, err = r.reviews.Create(ctx, domain.NewReviewInput(userID, itemID, next, now), rating)
		if err != nil {
			return nil, fmt.Errorf("failed to create review state: %w", err)
		}
	} else {
		next, err := srs.ScheduleNext(*existing, rating, now)
		if err != nil {
			return nil, err
		}
		state, err = r.reviews.Update(ctx, existing.ID, domain.NewReviewInput(userID, itemID, next, now), rating)
		if err != nil {
			return nil, fmt.Errorf("failed to update review state: %w", err)
		}
	}

	r.notify(ctx, domain.RecordedReview{
		UserID:     userID,
		Kind:       r.kind,
		ItemID:     itemID,
		Rating:     rating,
		Introduced: existing == nil,
		State:      *state,
		At:         now,
	})

	return state, nil
}

func (r *ReviewRecorder) notify(ctx context.Context, review domain.RecordedReview) {
	for _, o := range r.observers {
		if err := o.OnReviewRecorded(ctx, review); err != nil {
			r.logger.Error("Review observer failed",
				zap.String("user_id", review.UserID),
				zap.String("item_id", review.ItemID),
				zap.Error(err))
		}
	}
}
