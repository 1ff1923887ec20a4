package sqlite

import (
	"context"
	"database/sql"

	"cebuano/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureUserExists creates user with default settings if not exists
func (r *UserRepo) EnsureUserExists(ctx context.Context, userID string) error {
	def := domain.DefaultSettings()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, session_limit, new_daily_cap, daily_review_cap, last_learned_rank)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, def.SessionLimit, def.NewDailyCap, def.DailyReviewCap, def.LastLearnedRank)
	return err
}

// GetSettings returns the learner's settings, defaults if the learner is unknown
func (r *UserRepo) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	var s domain.Settings
	err := r.db.QueryRowContext(ctx, `
		SELECT session_limit, new_daily_cap, daily_review_cap, last_learned_rank
		FROM users WHERE user_id = ?
	`, userID).Scan(&s.SessionLimit, &s.NewDailyCap, &s.DailyReviewCap, &s.LastLearnedRank)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, err
	}
	return s, nil
}

// UpdateSettings stores the learner's settings, creating the learner if needed
func (r *UserRepo) UpdateSettings(ctx context.Context, userID string, s domain.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, session_limit, new_daily_cap, daily_review_cap, last_learned_rank)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			session_limit = excluded.session_limit,
			new_daily_cap = excluded.new_daily_cap,
			daily_review_cap = excluded.daily_review_cap,
			last_learned_rank = excluded.last_learned_rank
	`, userID, s.SessionLimit, s.NewDailyCap, s.DailyReviewCap, s.LastLearnedRank)
	return err
}
