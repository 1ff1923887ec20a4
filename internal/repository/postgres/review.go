package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cebuano/internal/domain"

	"github.com/google/uuid"
)

const reviewStateColumns = `id, user_id, item_id, ease_factor, interval_days, repetitions, due, last_reviewed_at, created_at, updated_at`

// ReviewRepo implements repository.ReviewRepository for one item kind
type ReviewRepo struct {
	db   *sql.DB
	kind domain.ItemKind
}

// NewReviewRepo creates a new review repository
func NewReviewRepo(db *sql.DB, kind domain.ItemKind) *ReviewRepo {
	return &ReviewRepo{db: db, kind: kind}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ReviewRepo) scanState(row rowScanner) (*domain.ReviewState, error) {
	var s domain.ReviewState
	var lastReviewed sql.NullTime
	err := row.Scan(
		&s.ID, &s.UserID, &s.ItemID, &s.EaseFactor, &s.Interval, &s.Repetitions,
		&s.Due, &lastReviewed, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Kind = r.kind
	if lastReviewed.Valid {
		s.LastReviewedAt = &lastReviewed.Time
	}
	return &s, nil
}

// FindByUserAndItem returns the learner's state for an item or nil
func (r *ReviewRepo) FindByUserAndItem(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	query := `
		SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND item_kind = $2 AND item_id = $3
	`
	s, err := r.scanState(r.db.QueryRowContext(ctx, query, userID, r.kind, itemID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindDueByUser returns states due at now, oldest due first
func (r *ReviewRepo) FindDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]domain.ReviewState, error) {
	query := `
		SELECT ` + reviewStateColumns + `
		FROM review_states
		WHERE user_id = $1 AND item_kind = $2 AND due <= $3
		ORDER BY due ASC
		LIMIT $4
	`

	rows, err := r.db.QueryContext(ctx, query, userID, r.kind, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []domain.ReviewState
	for rows.Next() {
		s, err := r.scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *s)
	}

	return states, rows.Err()
}

// ListIntroducedItemIDs returns ids of every item the learner has a state for
func (r *ReviewRepo) ListIntroducedItemIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT item_id FROM review_states WHERE user_id = $1 AND item_kind = $2`

	rows, err := r.db.QueryContext(ctx, query, userID, r.kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountReviewsOnDate counts review events on date's calendar day
func (r *ReviewRepo) CountReviewsOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	start, end := domain.DayRange(date)
	query := `
		SELECT COUNT(*)
		FROM review_events
		WHERE user_id = $1 AND item_kind = $2 AND created_at >= $3 AND created_at < $4
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, r.kind, start, end).Scan(&count)
	return count, err
}

// CountIntroductionsOnDate counts review states created on date's calendar day
func (r *ReviewRepo) CountIntroductionsOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	start, end := domain.DayRange(date)
	query := `
		SELECT COUNT(*)
		FROM review_states
		WHERE user_id = $1 AND item_kind = $2 AND created_at >= $3 AND created_at < $4
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID, r.kind, start, end).Scan(&count)
	return count, err
}

// Create inserts a new review state and its first review event in one transaction
func (r *ReviewRepo) Create(ctx context.Context, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO review_states (id, user_id, item_kind, item_id, ease_factor, interval_days, repetitions, due, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $9)
		RETURNING ` + reviewStateColumns

	s, err := r.scanState(tx.QueryRowContext(ctx, query,
		uuid.NewString(), data.UserID, r.kind, data.ItemID,
		data.EaseFactor, data.Interval, data.Repetitions, data.Due, data.LastReviewedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("insert review state: %w", err)
	}

	if err := r.insertEvent(ctx, tx, s.UserID, s.ItemID, rating, data.LastReviewedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review transaction: %w", err)
	}
	return s, nil
}

// Update overwrites a review state's schedule and appends a review event in one transaction
func (r *ReviewRepo) Update(ctx context.Context, id string, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE review_states
		SET ease_factor = $2, interval_days = $3, repetitions = $4, due = $5, last_reviewed_at = $6, updated_at = $6
		WHERE id = $1 AND item_kind = $7
		RETURNING ` + reviewStateColumns

	s, err := r.scanState(tx.QueryRowContext(ctx, query,
		id, data.EaseFactor, data.Interval, data.Repetitions, data.Due, data.LastReviewedAt, r.kind,
	))
	if err != nil {
		return nil, fmt.Errorf("update review state %s: %w", id, err)
	}

	if err := r.insertEvent(ctx, tx, s.UserID, s.ItemID, rating, data.LastReviewedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review transaction: %w", err)
	}
	return s, nil
}

func (r *ReviewRepo) insertEvent(ctx context.Context, tx *sql.Tx, userID, itemID string, rating domain.Rating, at time.Time) error {
	query := `
		INSERT INTO review_events (user_id, item_kind, item_id, rating, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, userID, r.kind, itemID, rating, at); err != nil {
		return fmt.Errorf("insert review event: %w", err)
	}
	return nil
}

// GetProgressSnapshot returns total reviews, due count and the current streak
func (r *ReviewRepo) GetProgressSnapshot(ctx context.Context, userID string, now time.Time) (domain.ProgressSnapshot, error) {
	var snap domain.ProgressSnapshot

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_events WHERE user_id = $1 AND item_kind = $2`,
		userID, r.kind,
	).Scan(&snap.ReviewsCompleted)
	if err != nil {
		return snap, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_states WHERE user_id = $1 AND item_kind = $2 AND due <= $3`,
		userID, r.kind, now,
	).Scan(&snap.DueCount)
	if err != nil {
		return snap, err
	}

	since := domain.StreakWindowStart(now)
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at
		FROM review_events
		WHERE user_id = $1 AND item_kind = $2 AND created_at >= $3 AND created_at <= $4
		ORDER BY created_at DESC
	`, userID, r.kind, since, now)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return snap, err
		}
		timestamps = append(timestamps, ts)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	snap.ConsecutiveDays = domain.ConsecutiveDays(timestamps, now)
	return snap, nil
}
