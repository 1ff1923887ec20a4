package service

import (
	"context"
	"fmt"
	"testing"

	"cebuano/internal/domain"
	"cebuano/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestProgressService_GetProgress(t *testing.T) {
	tests := []struct {
		name          string
		snapshot      domain.ProgressSnapshot
		mockError     error
		expected      domain.Progress
		expectedError bool
	}{
		{
			name:     "active learner",
			snapshot: domain.ProgressSnapshot{ReviewsCompleted: 57, ConsecutiveDays: 3, DueCount: 6},
			expected: domain.Progress{TotalLearned: 57, DueToday: 6, Streak: 3},
		},
		{
			name:     "new learner",
			snapshot: domain.ProgressSnapshot{},
			expected: domain.Progress{},
		},
		{
			name:          "database error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(testutil.MockReviewRepository)
			mockRepo.On("GetProgressSnapshot", ctx, "123", testNow).Return(tt.snapshot, tt.mockError)

			service := NewProgressService(mockRepo, fixedClock(testNow), testutil.NewTestLogger())
			progress, err := service.GetProgress(ctx, "123")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, progress)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
