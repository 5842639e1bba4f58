package permission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusattend/internal/apierr"
	"campusattend/internal/metrics"
	"campusattend/internal/normalize"
)

// Window duration bounds enforced at create and update.
const (
	MinWindow = 5 * time.Minute
	MaxWindow = 20 * time.Minute
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Insert(ctx context.Context, p Permission) (Permission, error)
	Update(ctx context.Context, p Permission) (Permission, error)
	Delete(ctx context.Context, id, professorID string) error
	Get(ctx context.Context, id string) (*Permission, error)
	ListByProfessor(ctx context.Context, professorID string) ([]Permission, error)
	FindActiveAt(ctx context.Context, date, hhmm, professorID string) ([]Permission, error)
}

// TimetableChecker answers whether a class context has any entry on a
// weekday. Implemented by the timetable service.
type TimetableChecker interface {
	HasEntry(ctx context.Context, program, branch, year, semester string, day time.Weekday) (bool, error)
}

// Service owns permission CRUD and the submission-side validation rules.
type Service struct {
	repo      Repo
	timetable TimetableChecker
}

// NewService creates a service backed by a repository. timetable may be nil
// when contextual validation is not needed (tests).
func NewService(repo Repo, timetable TimetableChecker) *Service {
	return &Service{repo: repo, timetable: timetable}
}

// Create validates and stores a new permission for professorID.
func (s *Service) Create(ctx context.Context, p Permission) (Permission, error) {
	if err := validateFields(&p); err != nil {
		return Permission{}, err
	}
	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Permission{}, fmt.Errorf("insert permission: %w", err)
	}
	return created, nil
}

// Update applies changes to a permission owned by professorID.
func (s *Service) Update(ctx context.Context, p Permission) (Permission, error) {
	if err := validateFields(&p); err != nil {
		return Permission{}, err
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Permission{}, apierr.NotFound("permission not found")
		}
		return Permission{}, fmt.Errorf("update permission: %w", err)
	}
	return updated, nil
}

// Delete removes a permission owned by professorID.
func (s *Service) Delete(ctx context.Context, id, professorID string) error {
	if err := s.repo.Delete(ctx, id, professorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("permission not found")
		}
		return fmt.Errorf("delete permission: %w", err)
	}
	return nil
}

// ListForProfessor returns the caller's permissions.
func (s *Service) ListForProfessor(ctx context.Context, professorID string) ([]Permission, error) {
	return s.repo.ListByProfessor(ctx, professorID)
}

// ValidateQuery carries the inputs of a validation check. Program, Branch,
// Year and Semester are optional; when all are present the timetable is
// consulted as well.
type ValidateQuery struct {
	Subject     string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	ProfessorID string
	Program     string
	Branch      string
	Year        string
	Semester    string
}

// Validate decides whether a student may submit attendance. Rule misses are
// reported as Allowed=false with a reason; only infrastructure failures
// return an error.
func (s *Service) Validate(ctx context.Context, q ValidateQuery) (ValidationResult, error) {
	if q.Subject == "" || q.Date == "" || q.Time == "" {
		return deny("missing_fields", "subject, date and time are required"), nil
	}
	day, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		return deny("bad_date", "date must be YYYY-MM-DD"), nil
	}
	if _, err := time.Parse("15:04", q.Time); err != nil {
		return deny("bad_time", "time must be HH:MM"), nil
	}

	perms, err := s.repo.FindActiveAt(ctx, q.Date, q.Time, q.ProfessorID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("query permissions: %w", err)
	}

	var match *Permission
	for i := range perms {
		if normalize.SubjectEqual(perms[i].Subject, q.Subject) {
			match = &perms[i]
			break
		}
	}
	if match == nil {
		return deny("no_active_window", "no active permission window for this subject and time"), nil
	}

	if s.timetable != nil && q.Program != "" && q.Branch != "" && q.Year != "" && q.Semester != "" {
		ok, err := s.timetable.HasEntry(ctx, q.Program, q.Branch, q.Year, q.Semester, day.Weekday())
		if err != nil {
			return ValidationResult{}, fmt.Errorf("query timetable: %w", err)
		}
		if !ok {
			return deny("no_timetable_entry", "no timetable entry for this class context on "+day.Weekday().String()), nil
		}
	}

	return ValidationResult{
		Allowed:      true,
		PermissionID: match.ID,
		SessionHours: match.SessionHours,
	}, nil
}

// Resolve returns the matching permission itself; the submission flow needs
// the stored location and radius, not just the id.
func (s *Service) Resolve(ctx context.Context, q ValidateQuery) (*Permission, ValidationResult, error) {
	res, err := s.Validate(ctx, q)
	if err != nil || !res.Allowed {
		return nil, res, err
	}
	p, err := s.repo.Get(ctx, res.PermissionID)
	if err != nil {
		return nil, ValidationResult{}, fmt.Errorf("load permission: %w", err)
	}
	return p, res, nil
}

func deny(reason, msg string) ValidationResult {
	metrics.ValidationDeniedTotal.WithLabelValues(reason).Inc()
	return ValidationResult{Allowed: false, Reason: msg}
}

func validateFields(p *Permission) error {
	if p.ProfessorID == "" {
		return apierr.Invalid("professor id required")
	}
	if p.Subject == "" {
		return apierr.Invalid("subject required")
	}
	if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return apierr.Invalid("date must be YYYY-MM-DD")
	}
	start, err := time.Parse("15:04", p.StartTime)
	if err != nil {
		return apierr.Invalid("start_time must be HH:MM")
	}
	end, err := time.Parse("15:04", p.EndTime)
	if err != nil {
		return apierr.Invalid("end_time must be HH:MM")
	}
	if dur := end.Sub(start); dur < MinWindow || dur > MaxWindow {
		return apierr.Invalid(fmt.Sprintf("window must be between %d and %d minutes",
			int(MinWindow.Minutes()), int(MaxWindow.Minutes())))
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return apierr.Invalid("status must be Active or Inactive")
	}
	if p.LocationRequired {
		if p.Latitude == nil || p.Longitude == nil {
			return apierr.Invalid("latitude and longitude required when location_required")
		}
		if p.RadiusMeters <= 0 {
			p.RadiusMeters = DefaultRadiusMeters
		}
	} else if p.RadiusMeters <= 0 {
		p.RadiusMeters = DefaultRadiusMeters
	}
	if p.SessionHours <= 0 {
		p.SessionHours = 1
	}
	return nil
}
