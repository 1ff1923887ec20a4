package domain

import "time"

// MinEaseFactor is the floor every ease factor is clamped to
const MinEaseFactor = 1.3

// ReviewState is the per (user, item) memory record
type ReviewState struct {
	ID             string
	UserID         string
	ItemID         string
	Kind           ItemKind
	EaseFactor     float64
	Interval       int
	Repetitions    int
	Due            time.Time
	LastReviewedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SchedulingResult is the output of a scheduling computation
type SchedulingResult struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
	Due         time.Time
}

// ReviewInput carries the fields written on create or update
type ReviewInput struct {
	UserID         string
	ItemID         string
	EaseFactor     float64
	Interval       int
	Repetitions    int
	Due            time.Time
	LastReviewedAt time.Time
}

// NewReviewInput builds a persistence payload from a schedule
func NewReviewInput(userID, itemID string, s SchedulingResult, reviewedAt time.Time) ReviewInput {
	return ReviewInput{
		UserID:         userID,
		ItemID:         itemID,
		EaseFactor:     s.EaseFactor,
		Interval:       s.Interval,
		Repetitions:    s.Repetitions,
		Due:            s.Due,
		LastReviewedAt: reviewedAt,
	}
}

// ProgressSnapshot is the raw progress data read from a review store
type ProgressSnapshot struct {
	ReviewsCompleted int
	ConsecutiveDays  int
	DueCount         int
}

// Progress is the learner-facing progress summary
type Progress struct {
	TotalLearned int
	DueToday     int
	Streak       int
}

// RecordedReview describes a review that was persisted
type RecordedReview struct {
	UserID     string
	Kind       ItemKind
	ItemID     string
	Rating     Rating
	Introduced bool
	State      ReviewState
	At         time.Time
}
