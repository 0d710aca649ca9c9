package registration

import (
	"context"
	"database/sql"
	"errors"

	"eventdesk/internal/store"
)

// PostgresRepository persists registrations. Student identifiers come from a
// database sequence so they stay unique across racing submissions.
type PostgresRepository struct {
	db       store.DBTX
	idPrefix string
}

func NewPostgresRepository(db store.DBTX, idPrefix string) *PostgresRepository {
	return &PostgresRepository{db: db, idPrefix: idPrefix}
}

const regColumns = `id, student_id, full_name, class, school, email, mobile, program, gender, status, payment, created_at`

func scanReg(row interface{ Scan(dest ...any) error }) (Registration, error) {
	var reg Registration
	err := row.Scan(&reg.ID, &reg.StudentID, &reg.FullName, &reg.Class, &reg.School,
		&reg.Email, &reg.Mobile, &reg.Program, &reg.Gender, &reg.Status, &reg.Payment, &reg.CreatedAt)
	return reg, err
}

// Create inserts a registration, assigning student_id from the sequence
// (e.g. STU0001) and created_at server-side. Padding widens past four digits
// instead of truncating, so sequence values beyond 9999 stay unique.
func (r *PostgresRepository) Create(ctx context.Context, reg Registration) (Registration, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO registrations
			(id, student_id, full_name, class, school, email, mobile, program, gender, status, payment)
		SELECT $1, $2 || lpad(seq.n::text, greatest(4, length(seq.n::text)), '0'),
			$3,$4,$5,$6,$7,$8,$9,$10,$11
		FROM (SELECT nextval('student_id_seq') AS n) AS seq
		RETURNING student_id, created_at
	`, reg.ID, r.idPrefix, reg.FullName, reg.Class, reg.School, reg.Email, reg.Mobile,
		reg.Program, reg.Gender, reg.Status, reg.Payment)
	if err := row.Scan(&reg.StudentID, &reg.CreatedAt); err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, st Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE status = $1`, st).Scan(&n)
	return n, err
}

func (r *PostgresRepository) List(ctx context.Context, st Status) ([]Registration, error) {
	query := `SELECT ` + regColumns + ` FROM registrations`
	args := []any{}
	if st != "" {
		query += ` WHERE status = $1`
		args = append(args, st)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		reg, err := scanReg(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SetPayment(ctx context.Context, id string, p Payment) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET payment = $2 WHERE id = $1`, id, p)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *PostgresRepository) OldestWaitlisted(ctx context.Context) (*Registration, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+regColumns+`
		FROM registrations
		WHERE status = 'waitlisted'
		ORDER BY created_at
		LIMIT 1
	`)
	reg, err := scanReg(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, st Status) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1`, id, st)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
