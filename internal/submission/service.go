package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"campusattend/internal/apierr"
	"campusattend/internal/geo"
	"campusattend/internal/metrics"
	"campusattend/internal/permission"
	"campusattend/internal/queue"
	"campusattend/internal/storage"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Insert(ctx context.Context, s Submission) (Submission, error)
	FindLive(ctx context.Context, studentID, subject, date string) (*Submission, error)
	Get(ctx context.Context, id string) (*Submission, error)
	ListByProfessor(ctx context.Context, professorID string, f ListFilter) ([]Submission, error)
	ListByStudent(ctx context.Context, studentID string, f ListFilter) ([]Submission, error)
	UpdateStatus(ctx context.Context, id, professorID, status string) (Submission, error)
}

// Permissions resolves whether a permission window allows the submission.
type Permissions interface {
	Resolve(ctx context.Context, q permission.ValidateQuery) (*permission.Permission, permission.ValidationResult, error)
}

// Storage is the object-store surface the service needs.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(key string, expiry time.Duration) (string, error)
	Bucket() string
}

// Service owns the submission intake rules and status transitions.
type Service struct {
	repo         Repo
	perms        Permissions
	store        Storage
	jobs         queue.Queue
	signedURLTTL time.Duration
	now          func() time.Time
}

// NewService creates a service. jobs may be nil; orphan cleanup is then
// skipped (tests).
func NewService(repo Repo, perms Permissions, store Storage, jobs queue.Queue, signedURLTTL time.Duration) *Service {
	if signedURLTTL <= 0 {
		signedURLTTL = 10 * time.Minute
	}
	return &Service{
		repo:         repo,
		perms:        perms,
		store:        store,
		jobs:         jobs,
		signedURLTTL: signedURLTTL,
		now:          time.Now,
	}
}

// SubmitInput carries everything from the multipart submission form.
type SubmitInput struct {
	StudentID    string
	StudentRegNo string
	ProfessorID  string
	Subject      string
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	Program      string
	Branch       string
	Year         string
	SemRoman     string
	Latitude     *float64
	Longitude    *float64
	Photo        []byte
	Filename     string
}

// Submit runs the full intake: field checks, duplicate check, permission
// window resolution, geofence, photo upload, row insert, presigned URL.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Submission, error) {
	if in.Subject == "" || in.Date == "" || in.Time == "" {
		return Submission{}, apierr.Invalid("subject, date and time are required")
	}
	if len(in.Photo) == 0 {
		return Submission{}, apierr.Invalid("photo file is required")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return Submission{}, apierr.Invalid("time must be HH:MM")
	}
	today := s.now().Format("2006-01-02")
	if in.Date != today {
		return Submission{}, apierr.Invalid("submissions are accepted only for today")
	}

	existing, err := s.repo.FindLive(ctx, in.StudentID, in.Subject, in.Date)
	if err != nil {
		return Submission{}, fmt.Errorf("check existing submission: %w", err)
	}
	if existing != nil {
		metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		return Submission{}, apierr.Invalid("already submitted today for this subject")
	}

	perm, res, err := s.perms.Resolve(ctx, permission.ValidateQuery{
		Subject:     in.Subject,
		Date:        in.Date,
		Time:        in.Time,
		ProfessorID: in.ProfessorID,
		Program:     in.Program,
		Branch:      in.Branch,
		Year:        in.Year,
		Semester:    in.SemRoman,
	})
	if err != nil {
		return Submission{}, err
	}
	if perm == nil || !res.Allowed {
		metrics.SubmissionsTotal.WithLabelValues("denied").Inc()
		return Submission{}, apierr.Invalid(res.Reason)
	}

	if perm.LocationRequired && perm.Latitude != nil && perm.Longitude != nil {
		if in.Latitude == nil || in.Longitude == nil {
			return Submission{}, apierr.Invalid("location is required for this permission")
		}
		dist := geo.Distance(*in.Latitude, *in.Longitude, *perm.Latitude, *perm.Longitude)
		if dist > perm.RadiusMeters {
			metrics.SubmissionsTotal.WithLabelValues("out_of_range").Inc()
			return Submission{}, apierr.Invalid(fmt.Sprintf(
				"you are %.0fm from the class location; must be within %.0fm", dist, perm.RadiusMeters))
		}
	}

	key := storage.PhotoKey(in.Program, in.Branch, in.Year, in.SemRoman, in.Date, in.Subject, in.StudentID, in.Filename)
	if err := s.store.Upload(ctx, key, in.Photo, storage.ContentTypeFor(in.Filename)); err != nil {
		return Submission{}, fmt.Errorf("upload photo: %w", err)
	}

	sub, err := s.repo.Insert(ctx, Submission{
		StudentID:       in.StudentID,
		ProfessorID:     perm.ProfessorID,
		Subject:         in.Subject,
		Date:            in.Date,
		Time:            in.Time,
		Status:          StatusPending,
		PhotoBucket:     s.store.Bucket(),
		PhotoPath:       key,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		AttendanceValue: perm.SessionHours,
	})
	if err != nil {
		// The photo is already in object storage; hand it to the worker
		// rather than leaving it orphaned.
		s.enqueueCleanup(ctx, key)
		if errors.Is(err, ErrDuplicate) {
			metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
			return Submission{}, apierr.Invalid("already submitted today for this subject")
		}
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}

	sub.PhotoURL = s.signURL(key)
	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	return sub, nil
}

// ListForProfessor returns submissions addressed to the professor, with
// presigned photo URLs.
func (s *Service) ListForProfessor(ctx context.Context, professorID string, f ListFilter) ([]Submission, error) {
	subs, err := s.repo.ListByProfessor(ctx, professorID, f)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	s.attachURLs(subs)
	return subs, nil
}

// ListForStudent returns the student's own submissions.
func (s *Service) ListForStudent(ctx context.Context, studentID string, f ListFilter) ([]Submission, error) {
	subs, err := s.repo.ListByStudent(ctx, studentID, f)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	s.attachURLs(subs)
	return subs, nil
}

// SetStatus transitions a Pending submission to Accepted or Rejected. Only
// the owning professor may do this; anyone else sees not-found.
func (s *Service) SetStatus(ctx context.Context, id, professorID, status string) (Submission, error) {
	if status != StatusAccepted && status != StatusRejected {
		return Submission{}, apierr.Invalid("status must be Accepted or Rejected")
	}
	sub, err := s.repo.UpdateStatus(ctx, id, professorID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, apierr.NotFound("submission not found")
		}
		return Submission{}, fmt.Errorf("update submission status: %w", err)
	}
	return sub, nil
}

func (s *Service) attachURLs(subs []Submission) {
	for i := range subs {
		if subs[i].PhotoPath != "" {
			subs[i].PhotoURL = s.signURL(subs[i].PhotoPath)
		}
	}
}

// signURL is best-effort; a presign failure should not fail the request.
func (s *Service) signURL(key string) string {
	url, err := s.store.SignedURL(key, s.signedURLTTL)
	if err != nil {
		log.Printf("presign %s failed: %v", key, err)
		return ""
	}
	return url
}

func (s *Service) enqueueCleanup(ctx context.Context, key string) {
	if s.jobs == nil {
		return
	}
	msg, err := queue.NewMessage(queue.TypePhotoCleanup, queue.PhotoCleanup{Key: key})
	if err == nil {
		err = s.jobs.Publish(ctx, msg)
	}
	if err != nil {
		log.Printf("enqueue photo cleanup for %s failed: %v", key, err)
	}
}
