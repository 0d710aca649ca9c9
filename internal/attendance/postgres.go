package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"eventdesk/internal/store"
)

// PostgresRepository persists the ledger in Postgres. The table carries a
// UNIQUE (student_id, day) constraint, so even two devices racing past their
// session guards cannot double-mark a student.
type PostgresRepository struct {
	db store.DBTX
}

func NewPostgresRepository(db store.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const recordColumns = `id, student_id, full_name, class, school, email, gender, program, day, accompaniment, participating, created_at`

// Insert appends a record; created_at is assigned by the database.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records
			(id, student_id, full_name, class, school, email, gender, program, day, accompaniment, participating)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, rec.ID, rec.StudentID, rec.FullName, rec.Class, rec.School, rec.Email, rec.Gender,
		rec.Program, rec.Day, rec.Accompaniment, rec.Participating)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrAlreadyMarked
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByDay returns records for one calendar day, newest first.
func (r *PostgresRepository) ListByDay(ctx context.Context, day string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE day = $1
		ORDER BY created_at DESC
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.FullName, &rec.Class, &rec.School,
			&rec.Email, &rec.Gender, &rec.Program, &rec.Day, &rec.Accompaniment,
			&rec.Participating, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ExistsOnDay reports whether a student already has a record for day.
func (r *PostgresRepository) ExistsOnDay(ctx context.Context, studentID, day string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM attendance_records
		WHERE student_id = $1 AND day = $2
		LIMIT 1
	`, studentID, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByDay removes every record for one calendar day.
func (r *PostgresRepository) DeleteByDay(ctx context.Context, day string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE day = $1`, day)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
