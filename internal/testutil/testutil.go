package testutil

import (
	"strconv"
	"time"

	"cebuano/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestItem creates an active test item whose id is its rank
func NewTestItem(kind domain.ItemKind, rank int) domain.Item {
	return domain.Item{
		ID:      strconv.Itoa(rank),
		Kind:    kind,
		Rank:    rank,
		Cebuano: "pulong " + strconv.Itoa(rank),
		English: "word " + strconv.Itoa(rank),
		Active:  true,
	}
}

// NewTestItems creates active test items for ranks 1..n
func NewTestItems(kind domain.ItemKind, n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for rank := 1; rank <= n; rank++ {
		items = append(items, NewTestItem(kind, rank))
	}
	return items
}

// NewTestReviewState creates a test review state due at due
func NewTestReviewState(userID, itemID string, due time.Time) domain.ReviewState {
	reviewed := due.AddDate(0, 0, -1)
	return domain.ReviewState{
		ID:             "state-" + itemID,
		UserID:         userID,
		ItemID:         itemID,
		Kind:           domain.KindFlashcard,
		EaseFactor:     2.5,
		Interval:       1,
		Repetitions:    1,
		Due:            due,
		LastReviewedAt: &reviewed,
		CreatedAt:      reviewed,
		UpdatedAt:      reviewed,
	}
}
