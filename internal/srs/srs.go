// Package srs implements the SM-2 variant used to schedule reviews.
// Every function here is pure: no storage, no logging, no clock.
package srs

import (
	"math"
	"time"

	"cebuano/internal/domain"
)

const (
	initialEaseFactor = 2.5
	firstInterval     = 1
	secondInterval    = 6
	goodFirstInterval = 3
)

// InitialSchedule computes the first state for an item the learner has never reviewed
func InitialSchedule(rating domain.Rating, now time.Time) (domain.SchedulingResult, error) {
	quality, err := rating.Quality()
	if err != nil {
		return domain.SchedulingResult{}, err
	}

	ease := math.Max(initialEaseFactor+float64(quality-3)*0.1, domain.MinEaseFactor)

	repetitions := 1
	if quality < 3 {
		repetitions = 0
	}

	// "hard" (quality 3) is folded into the one-day branch
	interval := firstInterval
	if quality > 3 {
		interval = goodFirstInterval
	}

	return domain.SchedulingResult{
		EaseFactor:  ease,
		Interval:    interval,
		Repetitions: repetitions,
		Due:         domain.AddDays(now, interval),
	}, nil
}

// ScheduleNext computes the state following prior after a review rated rating
func ScheduleNext(prior domain.ReviewState, rating domain.Rating, now time.Time) (domain.SchedulingResult, error) {
	quality, err := rating.Quality()
	if err != nil {
		return domain.SchedulingResult{}, err
	}

	ease := nextEaseFactor(prior.EaseFactor, quality)

	repetitions := prior.Repetitions + 1
	if quality < 3 {
		repetitions = 0
	}

	interval := nextInterval(quality, repetitions, prior.Interval, ease)

	return domain.SchedulingResult{
		EaseFactor:  ease,
		Interval:    interval,
		Repetitions: repetitions,
		Due:         domain.AddDays(now, interval),
	}, nil
}

// Schedule picks InitialSchedule or ScheduleNext depending on whether prior exists
func Schedule(prior *domain.ReviewState, rating domain.Rating, now time.Time) (domain.SchedulingResult, error) {
	if prior == nil {
		return InitialSchedule(rating, now)
	}
	return ScheduleNext(*prior, rating, now)
}

func nextEaseFactor(previous float64, quality int) float64 {
	miss := float64(5 - quality)
	next := previous + (0.1 - miss*(0.08+miss*0.02))
	return math.Max(next, domain.MinEaseFactor)
}

func nextInterval(quality, repetitions, previousInterval int, ease float64) int {
	switch {
	case quality < 3:
		return firstInterval
	case repetitions == 1:
		return firstInterval
	case repetitions == 2:
		return secondInterval
	}

	interval := int(math.Round(float64(previousInterval) * ease))
	if interval < 1 {
		return 1
	}
	return interval
}
