package api

import (
	"time"

	"cebuano/internal/domain"
	"cebuano/internal/service"
)

// ItemDTO is an item as exposed over HTTP
type ItemDTO struct {
	ID          string `json:"id"`
	Rank        int    `json:"rank"`
	Cebuano     string `json:"cebuano"`
	English     string `json:"english"`
	Explanation string `json:"explanation,omitempty"`
	New         bool   `json:"new"`
}

// ReviewStateDTO is a review state as exposed over HTTP
type ReviewStateDTO struct {
	ItemID         string     `json:"itemId"`
	EaseFactor     float64    `json:"easeFactor"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	Due            time.Time  `json:"due"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
}

// ReviewRequest is the body of a review submission
type ReviewRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Rating string `json:"rating" binding:"required"`
}

// SettingsRequest is a partial settings update. Omitted fields keep their
// stored value.
type SettingsRequest struct {
	SessionLimit    *int `json:"sessionLimit" binding:"omitempty,gt=0"`
	NewDailyCap     *int `json:"newDailyCap" binding:"omitempty,gte=0"`
	DailyReviewCap  *int `json:"dailyReviewCap" binding:"omitempty,gt=0"`
	LastLearnedRank *int `json:"lastLearnedRank" binding:"omitempty,gte=0"`
}

// Apply overlays the supplied fields on current
func (r SettingsRequest) Apply(current domain.Settings) domain.Settings {
	if r.SessionLimit != nil {
		current.SessionLimit = *r.SessionLimit
	}
	if r.NewDailyCap != nil {
		current.NewDailyCap = *r.NewDailyCap
	}
	if r.DailyReviewCap != nil {
		current.DailyReviewCap = *r.DailyReviewCap
	}
	if r.LastLearnedRank != nil {
		current.LastLearnedRank = *r.LastLearnedRank
	}
	return current
}

// DueResponse lists a study session
type DueResponse struct {
	Kind  domain.ItemKind `json:"kind"`
	Items []ItemDTO       `json:"items"`
}

// ReviewResponse returns the updated schedule
type ReviewResponse struct {
	ReviewState ReviewStateDTO `json:"reviewState"`
}

// ProgressResponse summarizes learner progress
type ProgressResponse struct {
	TotalLearned int `json:"totalLearned"`
	DueToday     int `json:"dueToday"`
	Streak       int `json:"streak"`
}

func newItemDTO(s service.StudyItem) ItemDTO {
	return ItemDTO{
		ID:          s.Item.ID,
		Rank:        s.Item.Rank,
		Cebuano:     s.Item.Cebuano,
		English:     s.Item.English,
		Explanation: s.Item.Explanation,
		New:         s.IsNew(),
	}
}

func newReviewStateDTO(s *domain.ReviewState) ReviewStateDTO {
	return ReviewStateDTO{
		ItemID:         s.ItemID,
		EaseFactor:     s.EaseFactor,
		Interval:       s.Interval,
		Repetitions:    s.Repetitions,
		Due:            s.Due,
		LastReviewedAt: s.LastReviewedAt,
	}
}
