package domain

import "fmt"

// Rating is the learner's self-reported recall difficulty
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Ratings lists all ratings from worst to best recall
var Ratings = []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy}

// ParseRating converts user input into a Rating. Only the exact lowercase
// names are accepted.
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if _, err := r.Quality(); err != nil {
		return "", err
	}
	return r, nil
}

// Quality maps the rating onto the 1-5 SM-2 quality scale
func (r Rating) Quality() (int, error) {
	switch r {
	case RatingAgain:
		return 1, nil
	case RatingHard:
		return 3, nil
	case RatingGood:
		return 4, nil
	case RatingEasy:
		return 5, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, string(r))
	}
}

// Label returns the button caption for the rating
func (r Rating) Label() string {
	switch r {
	case RatingAgain:
		return "Again"
	case RatingHard:
		return "Hard"
	case RatingGood:
		return "Good"
	case RatingEasy:
		return "Easy"
	}
	return string(r)
}
