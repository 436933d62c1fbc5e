package roster

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo reads humans from the humans table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListCallable(ctx context.Context) ([]Human, error) {
	// ORDER BY id is required: the seeded tie-break consumes one draw per
	// row in this order.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, priority
		FROM humans
		WHERE priority > 0
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Human
	for rows.Next() {
		var h Human
		if err := rows.Scan(&h.ID, &h.Name, &h.Phone, &h.Priority); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Human, error) {
	var h Human
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, priority
		FROM humans
		WHERE id = $1`, id).Scan(&h.ID, &h.Name, &h.Phone, &h.Priority)
	if errors.Is(err, sql.ErrNoRows) {
		return Human{}, ErrNotFound
	}
	if err != nil {
		return Human{}, err
	}
	return h, nil
}
