package postgres

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
	query := `
		INSERT INTO users (user_id, session_limit, new_daily_cap, daily_review_cap, last_learned_rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, def.SessionLimit, def.NewDailyCap, def.DailyReviewCap, def.LastLearnedRank)
	return err
}

// GetSettings returns the learner's settings, defaults if the learner is unknown
func (r *UserRepo) GetSettings(ctx context.Context, userID string) (domain.Settings, error) {
	var s domain.Settings
	query := `
		SELECT session_limit, new_daily_cap, daily_review_cap, last_learned_rank
		FROM users
		WHERE user_id = $1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.SessionLimit, &s.NewDailyCap, &s.DailyReviewCap, &s.LastLearnedRank,
	)

	if err == sql.ErrNoRows {
		// User doesn't exist yet
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}

	return s, nil
}

// UpdateSettings stores the learner's settings, creating the learner if needed
func (r *UserRepo) UpdateSettings(ctx context.Context, userID string, s domain.Settings) error {
	query := `
		INSERT INTO users (user_id, session_limit, new_daily_cap, daily_review_cap, last_learned_rank)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			session_limit = EXCLUDED.session_limit,
			new_daily_cap = EXCLUDED.new_daily_cap,
			daily_review_cap = EXCLUDED.daily_review_cap,
			last_learned_rank = EXCLUDED.last_learned_rank
	`
	_, err := r.db.ExecContext(ctx, query, userID, s.SessionLimit, s.NewDailyCap, s.DailyReviewCap, s.LastLearnedRank)
	return err
}
