package profile

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists profiles in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const profileColumns = `user_id, role, name, email, phone, department, program, branch,
	year, semester, reg_no, photo_path, verification_status, updated_at`

// Get returns a profile by user id, or nil.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE user_id = $1
	`, userID)
	var p Profile
	err := row.Scan(&p.UserID, &p.Role, &p.Name, &p.Email, &p.Phone, &p.Department,
		&p.Program, &p.Branch, &p.Year, &p.Semester, &p.RegNo, &p.PhotoPath,
		&p.VerificationStatus, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Upsert writes the caller-editable fields, preserving photo and
// verification state on update.
func (r *Repository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, role, name, email, phone, department, program,
			branch, year, semester, reg_no)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			department = EXCLUDED.department,
			program = EXCLUDED.program,
			branch = EXCLUDED.branch,
			year = EXCLUDED.year,
			semester = EXCLUDED.semester,
			reg_no = EXCLUDED.reg_no,
			updated_at = NOW()
		RETURNING `+profileColumns+`
	`, p.UserID, p.Role, p.Name, p.Email, p.Phone, p.Department, p.Program,
		p.Branch, p.Year, p.Semester, p.RegNo)
	var out Profile
	err := row.Scan(&out.UserID, &out.Role, &out.Name, &out.Email, &out.Phone, &out.Department,
		&out.Program, &out.Branch, &out.Year, &out.Semester, &out.RegNo, &out.PhotoPath,
		&out.VerificationStatus, &out.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	return out, nil
}

// SetPhotoPath records where the profile photo lives in object storage.
func (r *Repository) SetPhotoPath(ctx context.Context, userID, path string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET photo_path = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, path)
	return err
}

// SetVerification updates the verification status.
func (r *Repository) SetVerification(ctx context.Context, userID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET verification_status = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, status)
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

// GetVerification returns the stored verification status, or the empty
// string when the profile does not exist.
func (r *Repository) GetVerification(ctx context.Context, userID string) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT verification_status FROM profiles WHERE user_id = $1
	`, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return status, err
}
