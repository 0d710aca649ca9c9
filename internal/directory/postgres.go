package directory

import (
	"context"
	"database/sql"
	"errors"

	"eventdesk/internal/store"
)

// PostgresRepository reads confirmed registrations as the student directory.
// Schema normalization happens here and nowhere else: the scan maps the
// registration row into the fixed Student shape.
type PostgresRepository struct {
	db store.DBTX
}

func NewPostgresRepository(db store.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const studentColumns = `student_id, full_name, class, school, email, mobile, program, gender`

func scanStudent(row interface{ Scan(dest ...any) error }) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.FullName, &s.Class, &s.School, &s.Email, &s.Mobile, &s.Program, &s.Gender)
	return s, err
}

// FindByID returns the confirmed student with this exact identifier, or nil.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM registrations
		WHERE status = 'confirmed' AND student_id = $1
	`, id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindByPrefix returns confirmed students whose identifier starts with
// prefix, case-insensitively, ordered by identifier.
func (r *PostgresRepository) FindByPrefix(ctx context.Context, prefix string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		FROM registrations
		WHERE status = 'confirmed' AND student_id ILIKE $1 || '%'
		ORDER BY student_id
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

// List returns all confirmed students ordered by identifier.
func (r *PostgresRepository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		FROM registrations
		WHERE status = 'confirmed'
		ORDER BY student_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStudents(rows)
}

func collectStudents(rows *sql.Rows) ([]Student, error) {
	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
