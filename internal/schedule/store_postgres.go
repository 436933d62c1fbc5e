package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"launch-line/pkg/utils"
)

// PostgresStore persists windows in a tstzrange column so overlap (&&)
// and containment (<@) checks run in the database. All four upsert steps
// run inside one transaction; a concurrent ActiveAt never observes a
// half-applied conflict resolution.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const windowColumns = `id, short_name, lower(active_when), upper(active_when),
	web_short_text, web_long_text, COALESCE(call_text, ''), COALESCE(forward_to, 0)`

func (s *PostgresStore) Upsert(ctx context.Context, w Window, existingID int64) ([]ConflictAction, error) {
	if err := w.ValidateRange(); err != nil {
		return nil, err
	}

	var actions []ConflictAction
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT `+windowColumns+`
			FROM windows
			WHERE active_when && tstzrange($1, $2, '[)') AND id <> $3
			ORDER BY id
			FOR UPDATE`,
			w.Lower, w.Upper, existingID)
		if err != nil {
			return err
		}
		overlapping, err := scanWindows(rows)
		if err != nil {
			return err
		}

		plan := planConflicts(overlapping, w)
		for _, id := range plan.deleteIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM windows WHERE id = $1`, id); err != nil {
				return err
			}
		}
		for _, tr := range plan.truncations {
			if _, err := tx.ExecContext(ctx, `
				UPDATE windows SET active_when = tstzrange($1, $2, '[)') WHERE id = $3`,
				tr.window.Lower, tr.window.Upper, tr.id); err != nil {
				return err
			}
		}

		if existingID == 0 {
			return insertWindowTx(ctx, tx, w, nil)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE windows
			SET active_when = tstzrange($1, $2, '[)'),
			    short_name = $3, web_short_text = $4, web_long_text = $5,
			    call_text = NULLIF($6, ''), forward_to = NULLIF($7, 0)
			WHERE id = $8`,
			w.Lower, w.Upper, w.ShortName, w.WebShortText, w.WebLongText,
			w.CallText, w.ForwardTo, existingID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, existingID)
		}
		actions = plan.actions
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrConflictWrite, err)
	}
	return actions, nil
}

func (s *PostgresStore) InsertPlain(ctx context.Context, w Window) (int64, error) {
	if err := w.ValidateRange(); err != nil {
		return 0, err
	}
	var id int64
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		return insertWindowTx(ctx, tx, w, &id)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConflictWrite, err)
	}
	return id, nil
}

func insertWindowTx(ctx context.Context, tx *sql.Tx, w Window, id *int64) error {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO windows (active_when, short_name, web_short_text, web_long_text, call_text, forward_to)
		VALUES (tstzrange($1, $2, '[)'), $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0))
		RETURNING id`,
		w.Lower, w.Upper, w.ShortName, w.WebShortText, w.WebLongText, w.CallText, w.ForwardTo)
	var got int64
	if err := row.Scan(&got); err != nil {
		return err
	}
	if id != nil {
		*id = got
	}
	return nil
}

func (s *PostgresStore) RangeClear(ctx context.Context, lower, upper time.Time) (bool, error) {
	var clear bool
	err := s.db.QueryRowContext(ctx, `
		SELECT NOT EXISTS (
			SELECT 1 FROM windows WHERE active_when && tstzrange($1, $2, '[)')
		)`, lower, upper).Scan(&clear)
	if err != nil {
		return false, err
	}
	return clear, nil
}

func (s *PostgresStore) ActiveAt(ctx context.Context, t time.Time) ([]Window, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+windowColumns+`
		FROM windows
		WHERE $1::timestamptz <@ active_when
		ORDER BY id`, t)
	if err != nil {
		return nil, err
	}
	return scanWindows(rows)
}

func (s *PostgresStore) List(ctx context.Context) ([]Window, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+windowColumns+`
		FROM windows
		ORDER BY lower(active_when)`)
	if err != nil {
		return nil, err
	}
	return scanWindows(rows)
}

func scanWindows(rows *sql.Rows) ([]Window, error) {
	defer rows.Close()

	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.ShortName, &w.Lower, &w.Upper,
			&w.WebShortText, &w.WebLongText, &w.CallText, &w.ForwardTo); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
