package submission

import "time"

// Submission statuses.
const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// Submission is one student's attendance proof for a subject on a date.
type Submission struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	ProfessorID     string    `json:"professor_id"`
	Subject         string    `json:"subject"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Time            string    `json:"time"` // HH:MM
	Status          string    `json:"status"`
	PhotoBucket     string    `json:"photo_bucket"`
	PhotoPath       string    `json:"photo_path"`
	PhotoURL        string    `json:"photo_url,omitempty"` // presigned, short-lived
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	AttendanceValue float64   `json:"attendance_value"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
