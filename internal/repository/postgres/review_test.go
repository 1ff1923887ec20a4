package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"cebuano/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stateColumns = []string{"id", "user_id", "item_id", "ease_factor", "interval_days", "repetitions", "due", "last_reviewed_at", "created_at", "updated_at"}
	testNow      = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
)

func TestReviewRepo_FindByUserAndItem(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedNil   bool
		expectedError bool
	}{
		{
			name: "state found",
			mockRows: sqlmock.NewRows(stateColumns).
				AddRow("review-1", "123", "7", 2.5, 6, 2, testNow, testNow, testNow, testNow),
		},
		{
			name: "never reviewed timestamp",
			mockRows: sqlmock.NewRows(stateColumns).
				AddRow("review-1", "123", "7", 2.5, 6, 2, testNow, nil, testNow, testNow),
		},
		{
			name:        "no state",
			mockError:   sql.ErrNoRows,
			expectedNil: true,
		},
		{
			name: "scan error",
			mockRows: sqlmock.NewRows(stateColumns).
				AddRow("review-1", "123", "7", "invalid", 6, 2, testNow, nil, testNow, testNow),
			expectedNil:   true,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewReviewRepo(db, domain.KindFlashcard)

			query := "SELECT (.+) FROM review_states WHERE user_id = \\$1 AND item_kind = \\$2 AND item_id = \\$3"
			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs("123", "flashcard", "7").WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs("123", "flashcard", "7").WillReturnRows(tt.mockRows)
			}

			state, err := repo.FindByUserAndItem(context.Background(), "123", "7")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expectedNil {
				assert.Nil(t, state)
			} else {
				require.NotNil(t, state)
				assert.Equal(t, "review-1", state.ID)
				assert.Equal(t, 6, state.Interval)
				assert.Equal(t, domain.KindFlashcard, state.Kind)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReviewRepo_FindDueByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindPhrase)

	rows := sqlmock.NewRows(stateColumns).
		AddRow("r1", "123", "4", 2.5, 1, 0, testNow.AddDate(0, 0, -2), nil, testNow, testNow).
		AddRow("r2", "123", "9", 2.3, 1, 0, testNow.AddDate(0, 0, -1), testNow, testNow, testNow)

	mock.ExpectQuery("SELECT (.+) FROM review_states WHERE user_id = \\$1 AND item_kind = \\$2 AND due <= \\$3 ORDER BY due ASC LIMIT \\$4").
		WithArgs("123", "phrase", testNow, 10).
		WillReturnRows(rows)

	states, err := repo.FindDueByUser(context.Background(), "123", testNow, 10)

	assert.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "4", states[0].ItemID)
	assert.Nil(t, states[0].LastReviewedAt)
	assert.NotNil(t, states[1].LastReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_FindDueByUser_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindFlashcard)

	queryErr := fmt.Errorf("query error")
	mock.ExpectQuery("SELECT (.+) FROM review_states").
		WillReturnError(queryErr)

	states, err := repo.FindDueByUser(context.Background(), "123", testNow, 10)

	assert.Equal(t, queryErr, err)
	assert.Nil(t, states)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_ListIntroducedItemIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindFlashcard)

	mock.ExpectQuery("SELECT item_id FROM review_states WHERE user_id = \\$1 AND item_kind = \\$2").
		WithArgs("123", "flashcard").
		WillReturnRows(sqlmock.NewRows([]string{"item_id"}).AddRow("1").AddRow("2"))

	ids, err := repo.ListIntroducedItemIDs(context.Background(), "123")

	assert.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_CountOnDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("reviews", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM review_events WHERE user_id = \\$1 AND item_kind = \\$2 AND created_at >= \\$3 AND created_at < \\$4").
			WithArgs("123", "flashcard", start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := NewReviewRepo(db, domain.KindFlashcard).CountReviewsOnDate(context.Background(), "123", testNow)

		assert.NoError(t, err)
		assert.Equal(t, 12, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("introductions", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM review_states WHERE user_id = \\$1 AND item_kind = \\$2 AND created_at >= \\$3 AND created_at < \\$4").
			WithArgs("123", "flashcard", start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := NewReviewRepo(db, domain.KindFlashcard).CountIntroductionsOnDate(context.Background(), "123", testNow)

		assert.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindFlashcard)
	due := testNow.AddDate(0, 0, 3)
	input := domain.ReviewInput{
		UserID: "123", ItemID: "7", EaseFactor: 2.6, Interval: 3, Repetitions: 1, Due: due, LastReviewedAt: testNow,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO review_states (.+) RETURNING").
		WithArgs(sqlmock.AnyArg(), "123", "flashcard", "7", 2.6, 3, 1, due, testNow).
		WillReturnRows(sqlmock.NewRows(stateColumns).
			AddRow("generated", "123", "7", 2.6, 3, 1, due, testNow, testNow, testNow))
	mock.ExpectExec("INSERT INTO review_events").
		WithArgs("123", "flashcard", "7", "good", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	state, err := repo.Create(context.Background(), input, domain.RatingGood)

	require.NoError(t, err)
	assert.Equal(t, "generated", state.ID)
	assert.Equal(t, 3, state.Interval)
	assert.Equal(t, testNow, *state.LastReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_Create_EventFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindFlashcard)
	input := domain.ReviewInput{UserID: "123", ItemID: "7", EaseFactor: 2.3, Interval: 1, Due: testNow.AddDate(0, 0, 1), LastReviewedAt: testNow}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO review_states").
		WillReturnRows(sqlmock.NewRows(stateColumns).
			AddRow("generated", "123", "7", 2.3, 1, 0, input.Due, testNow, testNow, testNow))
	mock.ExpectExec("INSERT INTO review_events").
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	state, err := repo.Create(context.Background(), input, domain.RatingAgain)

	assert.Error(t, err)
	assert.Nil(t, state)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindPhrase)
	due := testNow.AddDate(0, 0, 16)
	input := domain.ReviewInput{
		UserID: "123", ItemID: "3", EaseFactor: 2.6, Interval: 16, Repetitions: 3, Due: due, LastReviewedAt: testNow,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE review_states SET (.+) WHERE id = \\$1 AND item_kind = \\$7 RETURNING").
		WithArgs("review-1", 2.6, 16, 3, due, testNow, "phrase").
		WillReturnRows(sqlmock.NewRows(stateColumns).
			AddRow("review-1", "123", "3", 2.6, 16, 3, due, testNow, testNow.AddDate(0, 0, -10), testNow))
	mock.ExpectExec("INSERT INTO review_events").
		WithArgs("123", "phrase", "3", "easy", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	state, err := repo.Update(context.Background(), "review-1", input, domain.RatingEasy)

	require.NoError(t, err)
	assert.Equal(t, 16, state.Interval)
	assert.Equal(t, 3, state.Repetitions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_Update_MissingState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindFlashcard)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE review_states").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	state, err := repo.Update(context.Background(), "missing", domain.ReviewInput{LastReviewedAt: testNow}, domain.RatingGood)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.EqualError(t, err, "update review state missing: sql: no rows in result set")
	assert.Nil(t, state)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_GetProgressSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReviewRepo(db, domain.KindFlashcard)
	since := time.Date(2023, 12, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM review_events WHERE user_id = \\$1 AND item_kind = \\$2$").
		WithArgs("123", "flashcard").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(57))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM review_states WHERE user_id = \\$1 AND item_kind = \\$2 AND due <= \\$3").
		WithArgs("123", "flashcard", testNow).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))
	mock.ExpectQuery("SELECT created_at FROM review_events").
		WithArgs("123", "flashcard", since, testNow).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).
			AddRow(testNow.Add(-time.Hour)).
			AddRow(testNow.AddDate(0, 0, -1)).
			AddRow(testNow.AddDate(0, 0, -2)).
			AddRow(testNow.AddDate(0, 0, -5)))

	snap, err := repo.GetProgressSnapshot(context.Background(), "123", testNow)

	assert.NoError(t, err)
	assert.Equal(t, domain.ProgressSnapshot{ReviewsCompleted: 57, DueCount: 6, ConsecutiveDays: 3}, snap)
	assert.NoError(t, mock.ExpectationsWereMet())
}
