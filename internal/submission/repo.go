package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"campusattend/internal/normalize"
)

// ErrDuplicate is returned when the partial unique index rejects a second
// live submission for the same student/subject/day.
var ErrDuplicate = errors.New("duplicate submission")

// Repository persists submissions in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const submissionColumns = `id, student_id, professor_id, subject, date, time, status,
	photo_bucket, photo_path, latitude, longitude, attendance_value, created_at, updated_at`

func scanSubmission(row interface{ Scan(...any) error }) (Submission, error) {
	var s Submission
	var date time.Time
	err := row.Scan(&s.ID, &s.StudentID, &s.ProfessorID, &s.Subject, &date, &s.Time, &s.Status,
		&s.PhotoBucket, &s.PhotoPath, &s.Latitude, &s.Longitude, &s.AttendanceValue,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}
	s.Date = date.Format("2006-01-02")
	return s, nil
}

// Insert writes a new submission. A unique-index violation surfaces as
// ErrDuplicate so the service can report it the same way as the pre-check.
func (r *Repository) Insert(ctx context.Context, s Submission) (Submission, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_submissions
			(id, student_id, professor_id, subject, subject_norm, date, time, status,
			 photo_bucket, photo_path, latitude, longitude, attendance_value)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at
	`, s.ID, s.StudentID, s.ProfessorID, s.Subject, normalize.Subject(s.Subject), s.Date, s.Time,
		s.Status, s.PhotoBucket, s.PhotoPath, s.Latitude, s.Longitude, s.AttendanceValue)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Submission{}, ErrDuplicate
		}
		return Submission{}, err
	}
	return s, nil
}

// FindLive returns the student's non-Rejected submission for a subject and
// date, or nil.
func (r *Repository) FindLive(ctx context.Context, studentID, subject, date string) (*Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+`
		FROM attendance_submissions
		WHERE student_id = $1 AND subject_norm = $2 AND date = $3 AND status <> 'Rejected'
		LIMIT 1
	`, studentID, normalize.Subject(subject), date)
	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Get returns a submission by id.
func (r *Repository) Get(ctx context.Context, id string) (*Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM attendance_submissions WHERE id = $1
	`, id)
	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListFilter narrows listing queries. Zero values mean "any".
type ListFilter struct {
	Date    string
	Subject string
	Status  string
	Limit   int
	Offset  int
}

// ListByProfessor returns submissions addressed to a professor.
func (r *Repository) ListByProfessor(ctx context.Context, professorID string, f ListFilter) ([]Submission, error) {
	return r.list(ctx, "professor_id", professorID, f)
}

// ListByStudent returns a student's own submissions.
func (r *Repository) ListByStudent(ctx context.Context, studentID string, f ListFilter) ([]Submission, error) {
	return r.list(ctx, "student_id", studentID, f)
}

func (r *Repository) list(ctx context.Context, ownerCol, ownerID string, f ListFilter) ([]Submission, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	query := `SELECT ` + submissionColumns + ` FROM attendance_submissions WHERE ` + ownerCol + ` = $1`
	args := []any{ownerID}
	if f.Date != "" {
		query += fmt.Sprintf(" AND date = $%d", len(args)+1)
		args = append(args, f.Date)
	}
	if f.Subject != "" {
		query += fmt.Sprintf(" AND subject_norm = $%d", len(args)+1)
		args = append(args, normalize.Subject(f.Subject))
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, f.Status)
	}
	query += fmt.Sprintf(" ORDER BY date DESC, time DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// UpdateStatus moves a Pending submission owned by professorID to a new
// status. Returns sql.ErrNoRows when the row is missing, not owned, or not
// Pending.
func (r *Repository) UpdateStatus(ctx context.Context, id, professorID, status string) (Submission, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_submissions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND professor_id = $2 AND status = 'Pending'
		RETURNING `+submissionColumns+`
	`, id, professorID, status)
	return scanSubmission(row)
}

// ExistsByPhotoPath reports whether any submission references the storage
// key. Used by the orphan-photo sweep.
func (r *Repository) ExistsByPhotoPath(ctx context.Context, path string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM attendance_submissions WHERE photo_path = $1
	`, path).Scan(&n)
	return n > 0, err
}
