package sqlite

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
	var due, created, updated int64
	var lastReviewed sql.NullInt64
	err := row.Scan(
		&s.ID, &s.UserID, &s.ItemID, &s.EaseFactor, &s.Interval, &s.Repetitions,
		&due, &lastReviewed, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	s.Kind = r.kind
	s.Due = fromUnix(due)
	s.CreatedAt = fromUnix(created)
	s.UpdatedAt = fromUnix(updated)
	if lastReviewed.Valid {
		t := fromUnix(lastReviewed.Int64)
		s.LastReviewedAt = &t
	}
	return &s, nil
}

// FindByUserAndItem returns the learner's state for an item or nil
func (r *ReviewRepo) FindByUserAndItem(ctx context.Context, userID, itemID string) (*domain.ReviewState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reviewStateColumns+`
		FROM review_states
		WHERE user_id = ? AND item_kind = ? AND item_id = ?
	`, userID, string(r.kind), itemID)

	s, err := r.scanState(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// FindDueByUser returns states due at now, oldest due first
func (r *ReviewRepo) FindDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]domain.ReviewState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reviewStateColumns+`
		FROM review_states
		WHERE user_id = ? AND item_kind = ? AND due <= ?
		ORDER BY due ASC
		LIMIT ?
	`, userID, string(r.kind), toUnix(now), limit)
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id FROM review_states WHERE user_id = ? AND item_kind = ?
	`, userID, string(r.kind))
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
	return r.countBetween(ctx, "review_events", userID, date)
}

// CountIntroductionsOnDate counts review states created on date's calendar day
func (r *ReviewRepo) CountIntroductionsOnDate(ctx context.Context, userID string, date time.Time) (int, error) {
	return r.countBetween(ctx, "review_states", userID, date)
}

func (r *ReviewRepo) countBetween(ctx context.Context, table, userID string, date time.Time) (int, error) {
	start, end := domain.DayRange(date)

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM `+table+`
		WHERE user_id = ? AND item_kind = ? AND created_at >= ? AND created_at < ?
	`, userID, string(r.kind), toUnix(start), toUnix(end)).Scan(&count)
	return count, err
}

// Create inserts a new review state and its first review event in one transaction
func (r *ReviewRepo) Create(ctx context.Context, data domain.ReviewInput, rating domain.Rating) (*domain.ReviewState, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer tx.Rollback()

	reviewedAt := toUnix(data.LastReviewedAt)
	row := tx.QueryRowContext(ctx, `
		INSERT INTO review_states (id, user_id, item_kind, item_id, ease_factor, interval_days, repetitions, due, last_reviewed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+reviewStateColumns,
		uuid.NewString(), data.UserID, string(r.kind), data.ItemID,
		data.EaseFactor, data.Interval, data.Repetitions, toUnix(data.Due), reviewedAt, reviewedAt, reviewedAt,
	)
	s, err := r.scanState(row)
	if err != nil {
		return nil, fmt.Errorf("insert review state: %w", err)
	}

	if err := r.insertEvent(ctx, tx, s.UserID, s.ItemID, rating, reviewedAt); err != nil {
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

	reviewedAt := toUnix(data.LastReviewedAt)
	row := tx.QueryRowContext(ctx, `
		UPDATE review_states
		SET ease_factor = ?, interval_days = ?, repetitions = ?, due = ?, last_reviewed_at = ?, updated_at = ?
		WHERE id = ? AND item_kind = ?
		RETURNING `+reviewStateColumns,
		data.EaseFactor, data.Interval, data.Repetitions, toUnix(data.Due), reviewedAt, reviewedAt, id, string(r.kind),
	)
	s, err := r.scanState(row)
	if err != nil {
		return nil, fmt.Errorf("update review state %s: %w", id, err)
	}

	if err := r.insertEvent(ctx, tx, s.UserID, s.ItemID, rating, reviewedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review transaction: %w", err)
	}
	return s, nil
}

func (r *ReviewRepo) insertEvent(ctx context.Context, tx *sql.Tx, userID, itemID string, rating domain.Rating, at int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO review_events (user_id, item_kind, item_id, rating, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, string(r.kind), itemID, string(rating), at)
	if err != nil {
		return fmt.Errorf("insert review event: %w", err)
	}
	return nil
}

// GetProgressSnapshot returns total reviews, due count and the current streak
func (r *ReviewRepo) GetProgressSnapshot(ctx context.Context, userID string, now time.Time) (domain.ProgressSnapshot, error) {
	var snap domain.ProgressSnapshot

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM review_events WHERE user_id = ? AND item_kind = ?),
			(SELECT COUNT(*) FROM review_states WHERE user_id = ? AND item_kind = ? AND due <= ?)
	`, userID, string(r.kind), userID, string(r.kind), toUnix(now)).Scan(&snap.ReviewsCompleted, &snap.DueCount)
	if err != nil {
		return snap, err
	}

	since := domain.StreakWindowStart(now)
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at FROM review_events
		WHERE user_id = ? AND item_kind = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at DESC
	`, userID, string(r.kind), toUnix(since), toUnix(now))
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var ts int64
		if err := rows.Scan(&ts); err != nil {
			return snap, err
		}
		timestamps = append(timestamps, fromUnix(ts))
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	snap.ConsecutiveDays = domain.ConsecutiveDays(timestamps, now)
	return snap, nil
}
