package guest

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventdesk/internal/store"
)

// PostgresRepository persists guests. State transitions are guarded in SQL:
// the UPDATE only matches rows still in the expected state, so a raced or
// out-of-order transition simply affects zero rows.
type PostgresRepository struct {
	db store.DBTX
}

func NewPostgresRepository(db store.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const guestColumns = `id, name, phone, status, attended_by, notes, day, checked_in_at, checked_out_at, created_at`

func scanGuest(row interface{ Scan(dest ...any) error }) (Guest, error) {
	var g Guest
	var attendedBy, notes sql.NullString
	err := row.Scan(&g.ID, &g.Name, &g.Phone, &g.Status, &attendedBy, &notes,
		&g.Day, &g.CheckedInAt, &g.CheckedOutAt, &g.CreatedAt)
	g.AttendedBy = attendedBy.String
	g.Notes = notes.String
	return g, err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Guest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id)
	g, err := scanGuest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *PostgresRepository) ListByDay(ctx context.Context, day string) ([]Guest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+guestColumns+`
		FROM guests
		WHERE day = $1
		ORDER BY name
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, g Guest) (Guest, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO guests (id, name, phone, status, notes, day)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, g.ID, g.Name, g.Phone, g.Status, g.Notes, g.Day)
	if err := row.Scan(&g.CreatedAt); err != nil {
		return Guest{}, err
	}
	return g, nil
}

func (r *PostgresRepository) Transition(ctx context.Context, id string, from, to Status, attendedBy string, at time.Time) (bool, error) {
	var res sql.Result
	var err error
	switch to {
	case StatusCheckedIn:
		res, err = r.db.ExecContext(ctx, `
			UPDATE guests
			SET status = $3, attended_by = $4, checked_in_at = $5
			WHERE id = $1 AND status = $2
		`, id, from, to, attendedBy, at)
	case StatusCheckedOut:
		res, err = r.db.ExecContext(ctx, `
			UPDATE guests
			SET status = $3, checked_out_at = $4
			WHERE id = $1 AND status = $2
		`, id, from, to, at)
	default:
		res, err = r.db.ExecContext(ctx, `
			UPDATE guests SET status = $3 WHERE id = $1 AND status = $2
		`, id, from, to)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
