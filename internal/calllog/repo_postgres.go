package calllog

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepo persists call logs. Each Append is a single transaction:
// the first write for a SID creates the calls row, later writes reuse it.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, sid string, at time.Time, message string) error {
	// ON CONFLICT ... DO UPDATE is a no-op write that still returns the
	// id, which keeps first-seen-wins in one round trip.
	var callID int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO calls (sid, started_at)
		VALUES ($1, $2)
		ON CONFLICT (sid) DO UPDATE SET sid = EXCLUDED.sid
		RETURNING id`, sid, at).Scan(&callID)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO call_log (call_id, time, message)
		VALUES ($1, $2, $3)`, callID, at, message)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, sid string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.call_id, l.time, l.message
		FROM call_log AS l
		JOIN calls AS c ON c.id = l.call_id
		WHERE c.sid = $1
		ORDER BY l.time ASC, l.id ASC`, sid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CallID, &e.Time, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
