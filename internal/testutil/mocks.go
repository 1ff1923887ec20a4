package testutil

import (
	"context"
	"time"

	"cebuano/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) EnsureUserExists(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockUserRepository) UpdateSettings(ctx context.Context, userID string, settings domain.Settings) error {
	args := m.Called(ctx, userID, settings)
	return args.Error(0)
}

// MockReviewRepository is a mock for ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByUserAndItem(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewState), args.Error(1)
}

func (m *MockReviewRepository) FindDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]domain.ReviewState, error) {
	args := m.Called(ctx, userID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewState), args.Error(1)
}

func (m *MockReviewRepository) ListIntroducedItemIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockReviewRepository) CountReviewsOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	args := m.Called(ctx, userID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) CountIntroductionsOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	args := m.Called(ctx, userID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error) {
	args := m.Called(ctx, data, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewState), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, id string, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error) {
	args := m.Called(ctx, id, data, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewState), args.Error(1)
}

func (m *MockReviewRepository) GetProgressSnapshot(ctx context.Context, userID string, now time.Time) (domain.ProgressSnapshot, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(domain.ProgressSnapshot), args.Error(1)
}

// MockItemRepository is a mock for ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepository) ListAllActive(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

// MockReviewObserver is a mock for service.ReviewObserver
type MockReviewObserver struct {
	mock.Mock
}

func (m *MockReviewObserver) OnReviewRecorded(ctx context.Context, review domain.RecordedReview) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
