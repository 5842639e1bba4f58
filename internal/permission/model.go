package permission

import "time"

// Statuses for a permission window.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// DefaultRadiusMeters applies when a location-required permission does not
// specify its own radius.
const DefaultRadiusMeters = 150

// Permission is a professor-defined window during which a subject's
// attendance may be submitted.
type Permission struct {
	ID               string    `json:"id"`
	ProfessorID      string    `json:"professor_id"`
	Subject          string    `json:"subject"`
	Date             string    `json:"date"`       // YYYY-MM-DD
	StartTime        string    `json:"start_time"` // HH:MM
	EndTime          string    `json:"end_time"`   // HH:MM
	Status           string    `json:"status"`
	LocationRequired bool      `json:"location_required"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	RadiusMeters     float64   `json:"radius_meters"`
	SessionHours     float64   `json:"session_hours"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ValidationResult is the soft outcome of a permission check. A rule miss is
// Allowed=false with a reason, never an error.
type ValidationResult struct {
	Allowed      bool    `json:"allowed"`
	Reason       string  `json:"reason,omitempty"`
	PermissionID string  `json:"permission_id,omitempty"`
	SessionHours float64 `json:"session_hours,omitempty"`
}
