package domain

import "errors"

var (
	// ErrInvalidRating is returned for a rating outside again/hard/good/easy
	ErrInvalidRating = errors.New("invalid rating")

	// ErrDailyLimitReached is returned when the learner has used up today's review submissions
	ErrDailyLimitReached = errors.New("daily review limit reached")

	// ErrItemNotFound is returned when an item id does not exist in the catalog
	ErrItemNotFound = errors.New("item not found")
)
