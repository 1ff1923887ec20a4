package srs

import (
	"testing"
	"time"

	"cebuano/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func priorState() domain.ReviewState {
	return domain.ReviewState{
		ID:          "review-1",
		UserID:      "user-1",
		ItemID:      "card-1",
		EaseFactor:  2.5,
		Interval:    6,
		Repetitions: 2,
		Due:         baseDate,
	}
}

func TestInitialSchedule(t *testing.T) {
	tests := []struct {
		name                string
		rating              domain.Rating
		expectedInterval    int
		expectedRepetitions int
		expectedEase        float64
	}{
		{name: "again", rating: domain.RatingAgain, expectedInterval: 1, expectedRepetitions: 0, expectedEase: 2.3},
		{name: "hard", rating: domain.RatingHard, expectedInterval: 1, expectedRepetitions: 1, expectedEase: 2.5},
		{name: "good", rating: domain.RatingGood, expectedInterval: 3, expectedRepetitions: 1, expectedEase: 2.6},
		{name: "easy", rating: domain.RatingEasy, expectedInterval: 3, expectedRepetitions: 1, expectedEase: 2.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := InitialSchedule(tt.rating, baseDate)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedInterval, result.Interval)
			assert.Equal(t, tt.expectedRepetitions, result.Repetitions)
			assert.InDelta(t, tt.expectedEase, result.EaseFactor, 1e-9)
			assert.Equal(t, baseDate.AddDate(0, 0, tt.expectedInterval), result.Due)
		})
	}
}

func TestInitialSchedule_Good(t *testing.T) {
	result, err := InitialSchedule(domain.RatingGood, baseDate)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), result.Due)
}

func TestScheduleNext_Easy(t *testing.T) {
	result, err := ScheduleNext(priorState(), domain.RatingEasy, baseDate)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Repetitions)
	assert.Equal(t, 16, result.Interval)
	assert.InDelta(t, 2.6, result.EaseFactor, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), result.Due)
}

func TestScheduleNext_Again(t *testing.T) {
	result, err := ScheduleNext(priorState(), domain.RatingAgain, baseDate)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Repetitions)
	assert.Equal(t, 1, result.Interval)
	assert.GreaterOrEqual(t, result.EaseFactor, domain.MinEaseFactor)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), result.Due)
}

func TestScheduleNext_EarlySteps(t *testing.T) {
	tests := []struct {
		name             string
		priorReps        int
		priorInterval    int
		rating           domain.Rating
		expectedReps     int
		expectedInterval int
	}{
		{name: "first success after lapse", priorReps: 0, priorInterval: 1, rating: domain.RatingGood, expectedReps: 1, expectedInterval: 1},
		{name: "second success", priorReps: 1, priorInterval: 1, rating: domain.RatingGood, expectedReps: 2, expectedInterval: 6},
		{name: "hard still counts as success", priorReps: 1, priorInterval: 3, rating: domain.RatingHard, expectedReps: 2, expectedInterval: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := priorState()
			prior.Repetitions = tt.priorReps
			prior.Interval = tt.priorInterval

			result, err := ScheduleNext(prior, tt.rating, baseDate)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedReps, result.Repetitions)
			assert.Equal(t, tt.expectedInterval, result.Interval)
		})
	}
}

func TestScheduleNext_EaseAdjustments(t *testing.T) {
	tests := []struct {
		rating   domain.Rating
		expected float64
	}{
		{domain.RatingAgain, 2.5 - 0.54},
		{domain.RatingHard, 2.5 - 0.14},
		{domain.RatingGood, 2.5},
		{domain.RatingEasy, 2.6},
	}

	for _, tt := range tests {
		t.Run(string(tt.rating), func(t *testing.T) {
			result, err := ScheduleNext(priorState(), tt.rating, baseDate)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, result.EaseFactor, 1e-9)
		})
	}
}

func TestScheduleNext_EaseFloor(t *testing.T) {
	for _, rating := range domain.Ratings {
		for _, ease := range []float64{1.3, 1.31, 1.5, 2.5, 3.2} {
			prior := priorState()
			prior.EaseFactor = ease

			result, err := ScheduleNext(prior, rating, baseDate)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.EaseFactor, domain.MinEaseFactor, "rating %s ease %v", rating, ease)
		}
	}
}

func TestScheduleNext_RepeatedLapsesStayAtFloor(t *testing.T) {
	state := priorState()
	for i := 0; i < 20; i++ {
		result, err := ScheduleNext(state, domain.RatingAgain, baseDate)
		require.NoError(t, err)
		state.EaseFactor = result.EaseFactor
		state.Interval = result.Interval
		state.Repetitions = result.Repetitions
	}
	assert.Equal(t, domain.MinEaseFactor, state.EaseFactor)
	assert.Equal(t, 1, state.Interval)
}

func TestScheduleNext_EasyIntervalsGrow(t *testing.T) {
	state := priorState()
	now := baseDate

	for i := 0; i < 8; i++ {
		result, err := ScheduleNext(state, domain.RatingEasy, now)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, float64(result.Interval), float64(state.Interval)*domain.MinEaseFactor-0.5)
		assert.GreaterOrEqual(t, result.Interval, state.Interval)

		state.EaseFactor = result.EaseFactor
		state.Interval = result.Interval
		state.Repetitions = result.Repetitions
		now = result.Due
	}
}

func TestScheduleNext_Idempotent(t *testing.T) {
	prior := priorState()

	first, err := ScheduleNext(prior, domain.RatingGood, baseDate)
	require.NoError(t, err)
	second, err := ScheduleNext(prior, domain.RatingGood, baseDate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, priorState(), prior)
}

func TestSchedule_InvalidRating(t *testing.T) {
	_, err := InitialSchedule(domain.Rating("medium"), baseDate)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = ScheduleNext(priorState(), domain.Rating(""), baseDate)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestSchedule_PicksBranch(t *testing.T) {
	initial, err := Schedule(nil, domain.RatingGood, baseDate)
	require.NoError(t, err)
	assert.Equal(t, 3, initial.Interval)

	prior := priorState()
	next, err := Schedule(&prior, domain.RatingEasy, baseDate)
	require.NoError(t, err)
	assert.Equal(t, 16, next.Interval)
}
