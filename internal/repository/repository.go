package repository

import (
	"context"
	"time"

	"cebuano/internal/domain"
)

// UserRepository defines learner data operations
type UserRepository interface {
	EnsureUserExists(ctx context.Context, userID string) error
	GetSettings(ctx context.Context, userID string) (domain.Settings, error)
	UpdateSettings(ctx context.Context, userID string, settings domain.Settings) error
}

// ReviewRepository defines review state and review event operations.
// An implementation is bound to a single item kind.
type ReviewRepository interface {
	// FindByUserAndItem returns nil when the learner never reviewed the item
	FindByUserAndItem(ctx context.Context, userID, itemID string) (*domain.ReviewState, error)
	// FindDueByUser returns states with due <= now ordered by due ascending
	FindDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]domain.ReviewState, error)
	ListIntroducedItemIDs(ctx context.Context, userID string) ([]string, error)
	// CountReviewsOnDate counts review events on date's calendar day (in date's location)
	CountReviewsOnDate(ctx context.Context, userID string, date time.Time) (int, error)
	// CountIntroductionsOnDate counts review states created on date's calendar day
	CountIntroductionsOnDate(ctx context.Context, userID string, date time.Time) (int, error)
	// Create persists a new state and its first review event atomically
	Create(ctx context.Context, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error)
	// Update overwrites the mutable fields of state id and appends a review event atomically
	Update(ctx context.Context, id string, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error)
	GetProgressSnapshot(ctx context.Context, userID string, now time.Time) (domain.ProgressSnapshot, error)
}

// ItemRepository defines read access to an item catalog
type ItemRepository interface {
	// FindByID returns nil when the item does not exist
	FindByID(ctx context.Context, id string) (*domain.Item, error)
	// ListAllActive returns active items ordered by rank ascending
	ListAllActive(ctx context.Context) ([]domain.Item, error)
}
