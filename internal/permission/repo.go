package permission

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists permission windows in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const permissionColumns = `id, professor_id, subject, date, start_time, end_time, status,
	location_required, latitude, longitude, radius_meters, session_hours, created_at, updated_at`

func scanPermission(row interface{ Scan(...any) error }) (Permission, error) {
	var p Permission
	var date time.Time
	err := row.Scan(&p.ID, &p.ProfessorID, &p.Subject, &date, &p.StartTime, &p.EndTime, &p.Status,
		&p.LocationRequired, &p.Latitude, &p.Longitude, &p.RadiusMeters, &p.SessionHours,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Permission{}, err
	}
	p.Date = date.Format("2006-01-02")
	return p, nil
}

// Insert writes a new permission.
func (r *Repository) Insert(ctx context.Context, p Permission) (Permission, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_permissions
			(id, professor_id, subject, date, start_time, end_time, status,
			 location_required, latitude, longitude, radius_meters, session_hours)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at
	`, p.ID, p.ProfessorID, p.Subject, p.Date, p.StartTime, p.EndTime, p.Status,
		p.LocationRequired, p.Latitude, p.Longitude, p.RadiusMeters, p.SessionHours)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return Permission{}, err
	}
	return p, nil
}

// Update rewrites the mutable fields of a permission owned by professorID.
// Returns sql.ErrNoRows when the row does not exist or is not owned.
func (r *Repository) Update(ctx context.Context, p Permission) (Permission, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_permissions
		SET subject = $3, date = $4, start_time = $5, end_time = $6, status = $7,
		    location_required = $8, latitude = $9, longitude = $10,
		    radius_meters = $11, session_hours = $12, updated_at = NOW()
		WHERE id = $1 AND professor_id = $2
		RETURNING `+permissionColumns+`
	`, p.ID, p.ProfessorID, p.Subject, p.Date, p.StartTime, p.EndTime, p.Status,
		p.LocationRequired, p.Latitude, p.Longitude, p.RadiusMeters, p.SessionHours)
	return scanPermission(row)
}

// Delete removes a permission owned by professorID.
func (r *Repository) Delete(ctx context.Context, id, professorID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM attendance_permissions WHERE id = $1 AND professor_id = $2
	`, id, professorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Get returns a permission by id.
func (r *Repository) Get(ctx context.Context, id string) (*Permission, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+permissionColumns+` FROM attendance_permissions WHERE id = $1
	`, id)
	p, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByProfessor returns a professor's permissions, newest date first.
func (r *Repository) ListByProfessor(ctx context.Context, professorID string) ([]Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+permissionColumns+`
		FROM attendance_permissions
		WHERE professor_id = $1
		ORDER BY date DESC, start_time DESC
	`, professorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// FindActiveAt returns Active permissions for a date whose window contains
// the HH:MM time. Subject matching happens in the service layer where the
// normalization rules live. professorID narrows the search when non-empty.
func (r *Repository) FindActiveAt(ctx context.Context, date, hhmm, professorID string) ([]Permission, error) {
	query := `
		SELECT ` + permissionColumns + `
		FROM attendance_permissions
		WHERE date = $1 AND status = 'Active' AND start_time <= $2 AND end_time >= $2`
	args := []any{date, hhmm}
	if professorID != "" {
		query += ` AND professor_id = $3`
		args = append(args, professorID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// DeactivateExpired flips Active permissions whose date is past to Inactive.
// Used by the worker's hourly sweep.
func (r *Repository) DeactivateExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_permissions
		SET status = 'Inactive', updated_at = NOW()
		WHERE status = 'Active' AND date < $1
	`, before.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
