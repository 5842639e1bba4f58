package profile

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"campusattend/internal/apierr"
	"campusattend/internal/auth"
	"campusattend/internal/queue"
	"campusattend/internal/storage"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p Profile) (Profile, error)
	SetPhotoPath(ctx context.Context, userID, path string) error
	SetVerification(ctx context.Context, userID, status string) error
	GetVerification(ctx context.Context, userID string) (string, error)
}

// Storage is the object-store surface the service needs.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(key string, expiry time.Duration) (string, error)
}

// Directory is the best-effort verification mirror read at token issuance.
type Directory interface {
	LookupVerified(ctx context.Context, userID string) string
}

// Codes holds the per-role shared verification secrets.
type Codes struct {
	Professor string
	Student   string
}

// Service owns profile reads/writes and the verification flow.
type Service struct {
	repo         Repo
	store        Storage
	directory    Directory
	jobs         queue.Queue
	codes        Codes
	signedURLTTL time.Duration
}

// NewService creates a service. directory and jobs may be nil; verification
// then only updates Postgres.
func NewService(repo Repo, store Storage, directory Directory, jobs queue.Queue, codes Codes, signedURLTTL time.Duration) *Service {
	if signedURLTTL <= 0 {
		signedURLTTL = 10 * time.Minute
	}
	return &Service{repo: repo, store: store, directory: directory, jobs: jobs, codes: codes, signedURLTTL: signedURLTTL}
}

// Me returns the caller's profile with a presigned photo URL.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profile not found")
	}
	s.attachURL(p)
	return p, nil
}

// Upsert writes the caller's editable profile fields. Role and user id come
// from the token, never from the body.
func (s *Service) Upsert(ctx context.Context, userID, role string, p Profile) (Profile, error) {
	p.UserID = userID
	p.Role = role
	if p.Name == "" {
		return Profile{}, apierr.Invalid("name is required")
	}
	out, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	s.attachURL(&out)
	return out, nil
}

// UploadPhoto stores a profile photo and returns its presigned URL.
func (s *Service) UploadPhoto(ctx context.Context, userID, role, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apierr.Invalid("photo file is required")
	}
	key := storage.ProfilePhotoKey(role, userID, filename)
	if err := s.store.Upload(ctx, key, data, storage.ContentTypeFor(filename)); err != nil {
		return "", fmt.Errorf("upload profile photo: %w", err)
	}
	if err := s.repo.SetPhotoPath(ctx, userID, key); err != nil {
		return "", fmt.Errorf("record photo path: %w", err)
	}
	url, err := s.store.SignedURL(key, s.signedURLTTL)
	if err != nil {
		log.Printf("presign %s failed: %v", key, err)
		return "", nil
	}
	return url, nil
}

// Verify compares the submitted code against the role's shared secret. On a
// match the status flips in Postgres and a mirror job is enqueued; mirror
// failures are logged and swallowed.
func (s *Service) Verify(ctx context.Context, userID, role, code string) error {
	var want string
	switch role {
	case auth.RoleProfessor:
		want = s.codes.Professor
	case auth.RoleStudent:
		want = s.codes.Student
	default:
		return apierr.Forbidden("unknown role")
	}
	if want == "" {
		return apierr.Internal("verification not configured")
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(want)) != 1 {
		return apierr.Invalid("incorrect verification code")
	}
	if err := s.repo.SetVerification(ctx, userID, StatusVerified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("profile not found; save your profile first")
		}
		return fmt.Errorf("set verification: %w", err)
	}
	s.enqueueMirror(ctx, userID, StatusVerified)
	return nil
}

// IsVerified consults the directory mirror first and falls back to Postgres.
// Satisfies account.VerifiedLookup.
func (s *Service) IsVerified(ctx context.Context, userID string) bool {
	if s.directory != nil {
		if status := s.directory.LookupVerified(ctx, userID); status != "" {
			return status == StatusVerified
		}
	}
	status, err := s.repo.GetVerification(ctx, userID)
	if err != nil {
		log.Printf("verification lookup for %s failed: %v", userID, err)
		return false
	}
	return status == StatusVerified
}

func (s *Service) enqueueMirror(ctx context.Context, userID, status string) {
	if s.jobs == nil {
		return
	}
	msg, err := queue.NewMessage(queue.TypeProfileSync, queue.ProfileSync{UserID: userID, Status: status})
	if err == nil {
		err = s.jobs.Publish(ctx, msg)
	}
	if err != nil {
		log.Printf("enqueue profile sync for %s failed: %v", userID, err)
	}
}

func (s *Service) attachURL(p *Profile) {
	if p.PhotoPath == "" {
		return
	}
	url, err := s.store.SignedURL(p.PhotoPath, s.signedURLTTL)
	if err != nil {
		log.Printf("presign %s failed: %v", p.PhotoPath, err)
		return
	}
	p.PhotoURL = url
}
