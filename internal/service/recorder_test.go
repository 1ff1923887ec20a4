package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cebuano/internal/domain"
	"cebuano/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestReviewRecorder_Record_NewItem(t *testing.T) {
	ctx := context.Background()
	reviews := new(testutil.MockReviewRepository)
	observer := new(testutil.MockReviewObserver)

	expectedInput := domain.ReviewInput{
		UserID:         "123",
		ItemID:         "7",
		EaseFactor:     2.6,
		Interval:       3,
		Repetitions:    1,
		Due:            testNow.AddDate(0, 0, 3),
		LastReviewedAt: testNow,
	}
	created := &domain.ReviewState{ID: "state-7", UserID: "123", ItemID: "7", EaseFactor: 2.6, Interval: 3, Repetitions: 1, Due: expectedInput.Due}

	reviews.On("CountReviewsOnDate", ctx, "123", testNow).Return(5, nil)
	reviews.On("FindByUserAndItem", ctx, "123", "7").Return(nil, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(in domain.ReviewInput) bool {
		return in.UserID == expectedInput.UserID &&
			in.ItemID == expectedInput.ItemID &&
			math.Abs(expectedInput.EaseFactor-in.EaseFactor) < 1e-9 &&
			in.Interval == expectedInput.Interval &&
			in.Repetitions == expectedInput.Repetitions &&
			in.Due.Equal(expectedInput.Due) &&
			in.LastReviewedAt.Equal(testNow)
	}), domain.RatingGood).Return(created, nil)
	observer.On("OnReviewRecorded", ctx, mock.MatchedBy(func(r domain.RecordedReview) bool {
		return r.Introduced && r.Kind == domain.KindFlashcard && r.Rating == domain.RatingGood && r.State.ID == "state-7"
	})).Return(nil)

	recorder := NewReviewRecorder(domain.KindFlashcard, reviews, fixedClock(testNow), testutil.NewTestLogger(), observer)

	state, err := recorder.Record(ctx, "123", "7", domain.RatingGood, 300)
	require.NoError(t, err)
	assert.Equal(t, created, state)

	reviews.AssertExpectations(t)
	reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	observer.AssertExpectations(t)
}

func TestReviewRecorder_Record_ExistingItem(t *testing.T) {
	ctx := context.Background()
	reviews := new(testutil.MockReviewRepository)

	prior := testutil.NewTestReviewState("123", "7", testNow.Add(-time.Hour))
	prior.EaseFactor = 2.5
	prior.Interval = 6
	prior.Repetitions = 2
	updated := prior
	updated.Interval = 16

	reviews.On("CountReviewsOnDate", ctx, "123", testNow).Return(0, nil)
	reviews.On("FindByUserAndItem", ctx, "123", "7").Return(&prior, nil)
	reviews.On("Update", ctx, "state-7", mock.MatchedBy(func(in domain.ReviewInput) bool {
		return in.Interval == 16 && in.Repetitions == 3 && in.Due.Equal(testNow.AddDate(0, 0, 16))
	}), domain.RatingEasy).Return(&updated, nil)

	recorder := NewReviewRecorder(domain.KindFlashcard, reviews, fixedClock(testNow), testutil.NewTestLogger())

	state, err := recorder.Record(ctx, "123", "7", domain.RatingEasy, 300)
	require.NoError(t, err)
	assert.Equal(t, 16, state.Interval)

	reviews.AssertExpectations(t)
	reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewRecorder_Record_DailyLimit(t *testing.T) {
	tests := []struct {
		name  string
		count int
		cap   int
	}{
		{name: "count equals cap", count: 300, cap: 300},
		{name: "count above cap", count: 12, cap: 10},
		{name: "non-positive cap uses default", count: DefaultDailyReviewCap, cap: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			reviews := new(testutil.MockReviewRepository)
			observer := new(testutil.MockReviewObserver)
			reviews.On("CountReviewsOnDate", ctx, "123", testNow).Return(tt.count, nil)

			recorder := NewReviewRecorder(domain.KindPhrase, reviews, fixedClock(testNow), testutil.NewTestLogger(), observer)

			state, err := recorder.Record(ctx, "123", "7", domain.RatingGood, tt.cap)
			assert.ErrorIs(t, err, domain.ErrDailyLimitReached)
			assert.Nil(t, state)

			reviews.AssertNotCalled(t, "FindByUserAndItem", mock.Anything, mock.Anything, mock.Anything)
			reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			observer.AssertNotCalled(t, "OnReviewRecorded", mock.Anything, mock.Anything)
		})
	}
}

func TestReviewRecorder_Record_InvalidRating(t *testing.T) {
	reviews := new(testutil.MockReviewRepository)
	recorder := NewReviewRecorder(domain.KindFlashcard, reviews, fixedClock(testNow), testutil.NewTestLogger())

	state, err := recorder.Record(context.Background(), "123", "7", domain.Rating("meh"), 300)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	assert.Nil(t, state)
	assert.Empty(t, reviews.Calls)
}

func TestReviewRecorder_Record_RepositoryErrors(t *testing.T) {
	dbErr := fmt.Errorf("db error")

	tests := []struct {
		name  string
		setup func(reviews *testutil.MockReviewRepository)
	}{
		{
			name: "count fails",
			setup: func(reviews *testutil.MockReviewRepository) {
				reviews.On("CountReviewsOnDate", mock.Anything, "123", testNow).Return(0, dbErr)
			},
		},
		{
			name: "lookup fails",
			setup: func(reviews *testutil.MockReviewRepository) {
				reviews.On("CountReviewsOnDate", mock.Anything, "123", testNow).Return(0, nil)
				reviews.On("FindByUserAndItem", mock.Anything, "123", "7").Return(nil, dbErr)
			},
		},
		{
			name: "create fails",
			setup: func(reviews *testutil.MockReviewRepository) {
				reviews.On("CountReviewsOnDate", mock.Anything, "123", testNow).Return(0, nil)
				reviews.On("FindByUserAndItem", mock.Anything, "123", "7").Return(nil, nil)
				reviews.On("Create", mock.Anything, mock.Anything, domain.RatingHard).Return(nil, dbErr)
			},
		},
		{
			name: "update fails",
			setup: func(reviews *testutil.MockReviewRepository) {
				prior := testutil.NewTestReviewState("123", "7", testNow)
				reviews.On("CountReviewsOnDate", mock.Anything, "123", testNow).Return(0, nil)
				reviews.On("FindByUserAndItem", mock.Anything, "123", "7").Return(&prior, nil)
				reviews.On("Update", mock.Anything, "state-7", mock.Anything, domain.RatingHard).Return(nil, dbErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(testutil.MockReviewRepository)
			observer := new(testutil.MockReviewObserver)
			tt.setup(reviews)

			recorder := NewReviewRecorder(domain.KindFlashcard, reviews, fixedClock(testNow), testutil.NewTestLogger(), observer)

			state, err := recorder.Record(context.Background(), "123", "7", domain.RatingHard, 300)
			assert.ErrorIs(t, err, dbErr)
			assert.Nil(t, state)
			observer.AssertNotCalled(t, "OnReviewRecorded", mock.Anything, mock.Anything)
		})
	}
}

func TestReviewRecorder_Record_ObserverErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	reviews := new(testutil.MockReviewRepository)
	failing := new(testutil.MockReviewObserver)
	next := new(testutil.MockReviewObserver)

	created := &domain.ReviewState{ID: "state-7", UserID: "123", ItemID: "7"}
	reviews.On("CountReviewsOnDate", ctx, "123", testNow).Return(0, nil)
	reviews.On("FindByUserAndItem", ctx, "123", "7").Return(nil, nil)
	reviews.On("Create", ctx, mock.Anything, domain.RatingAgain).Return(created, nil)
	failing.On("OnReviewRecorded", ctx, mock.Anything).Return(fmt.Errorf("observer down"))
	next.On("OnReviewRecorded", ctx, mock.Anything).Return(nil)

	recorder := NewReviewRecorder(domain.KindFlashcard, reviews, fixedClock(testNow), testutil.NewTestLogger(), failing, next)

	state, err := recorder.Record(ctx, "123", "7", domain.RatingAgain, 300)
	require.NoError(t, err)
	assert.Equal(t, created, state)
	failing.AssertExpectations(t)
	next.AssertExpectations(t)
}

// capRepo is a minimal in-memory review store that counts events, used to
// check the cap holds under concurrent submissions
type capRepo struct {
	testutil.MockReviewRepository
	mu     sync.Mutex
	events int
}

func (r *capRepo) CountReviewsOnDate(context.Context, string, time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, nil
}

func (r *capRepo) FindByUserAndItem(context.Context, string, string) (*domain.ReviewState, error) {
	return nil, nil
}

func (r *capRepo) Create(_ context.Context, data domain.ReviewInput, _ domain.Rating) (*domain.ReviewState, error) {
	time.Sleep(time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events++
	return &domain.ReviewState{UserID: data.UserID, ItemID: data.ItemID}, nil
}

func TestReviewRecorder_Record_ConcurrentCap(t *testing.T) {
	repo := &capRepo{}
	recorder := NewReviewRecorder(domain.KindFlashcard, repo, fixedClock(testNow), testutil.NewTestLogger())

	const reviewCap = 5
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.Record(context.Background(), "123", fmt.Sprint(i), domain.RatingGood, reviewCap)
			if err == nil {
				accepted.Add(1)
			} else if assert.ErrorIs(t, err, domain.ErrDailyLimitReached) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(reviewCap), accepted.Load())
	assert.Equal(t, int32(15), rejected.Load())
	assert.Equal(t, reviewCap, repo.events)
}

type limitRecorder struct {
	testutil.MockReviewObserver
	rejected []string
}

func (l *limitRecorder) OnDailyLimitReached(_ context.Context, kind domain.ItemKind, userID string) {
	l.rejected = append(l.rejected, string(kind)+":"+userID)
}

func TestReviewRecorder_Record_NotifiesLimitObservers(t *testing.T) {
	reviews := new(testutil.MockReviewRepository)
	reviews.On("CountReviewsOnDate", mock.Anything, "123", testNow).Return(3, nil)
	observer := &limitRecorder{}

	recorder := NewReviewRecorder(domain.KindPhrase, reviews, fixedClock(testNow), testutil.NewTestLogger(), observer)

	_, err := recorder.Record(context.Background(), "123", "7", domain.RatingGood, 3)
	assert.ErrorIs(t, err, domain.ErrDailyLimitReached)
	assert.Equal(t, []string{"phrase:123"}, observer.rejected)
}
