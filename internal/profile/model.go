package profile

import "time"

// Verification statuses.
const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
)

// Profile holds contact and academic fields for a student or professor.
// Student-only fields stay empty for professors and vice versa.
type Profile struct {
	UserID             string    `json:"user_id"`
	Role               string    `json:"role"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Department         string    `json:"department"`
	Program            string    `json:"program,omitempty"`
	Branch             string    `json:"branch,omitempty"`
	Year               string    `json:"year,omitempty"`
	Semester           string    `json:"semester,omitempty"`
	RegNo              string    `json:"reg_no,omitempty"`
	PhotoPath          string    `json:"-"`
	PhotoURL           string    `json:"photo_url,omitempty"` // presigned, short-lived
	VerificationStatus string    `json:"verification_status"`
	UpdatedAt          time.Time `json:"updated_at"`
}
