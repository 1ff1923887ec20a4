package postgres

import (
	"context"
	"database/sql"

	"cebuano/internal/domain"
)

// ItemRepo implements repository.ItemRepository over the items table
type ItemRepo struct {
	db   *sql.DB
	kind domain.ItemKind
}

// NewItemRepo creates a new item repository
func NewItemRepo(db *sql.DB, kind domain.ItemKind) *ItemRepo {
	return &ItemRepo{db: db, kind: kind}
}

// FindByID returns an item by id or nil
func (r *ItemRepo) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	query := `
		SELECT id, rank, cebuano, english, explanation, active
		FROM items
		WHERE kind = $1 AND id = $2
	`
	err := r.db.QueryRowContext(ctx, query, r.kind, id).Scan(
		&it.ID, &it.Rank, &it.Cebuano, &it.English, &it.Explanation, &it.Active,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	it.Kind = r.kind
	return &it, nil
}

// ListAllActive returns active items by rank
func (r *ItemRepo) ListAllActive(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT id, rank, cebuano, english, explanation, active
		FROM items
		WHERE kind = $1 AND active = TRUE
		ORDER BY rank ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, r.kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Rank, &it.Cebuano, &it.English, &it.Explanation, &it.Active); err != nil {
			return nil, err
		}
		it.Kind = r.kind
		items = append(items, it)
	}

	return items, rows.Err()
}

// Upsert inserts or refreshes catalog items
func (r *ItemRepo) Upsert(ctx context.Context, items []domain.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO items (id, kind, rank, cebuano, english, explanation, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, id)
		DO UPDATE SET rank = EXCLUDED.rank, cebuano = EXCLUDED.cebuano, english = EXCLUDED.english,
			explanation = EXCLUDED.explanation, active = EXCLUDED.active
	`
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, query, it.ID, r.kind, it.Rank, it.Cebuano, it.English, it.Explanation, it.Active); err != nil {
			return err
		}
	}

	return tx.Commit()
}
