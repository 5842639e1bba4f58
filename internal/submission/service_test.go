package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"campusattend/internal/apierr"
	"campusattend/internal/permission"
	"campusattend/internal/queue"
)

type mockRepo struct {
	rows      map[string]Submission
	nextID    int
	insertErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{rows: make(map[string]Submission)}
}

func (m *mockRepo) Insert(_ context.Context, s Submission) (Submission, error) {
	if m.insertErr != nil {
		return Submission{}, m.insertErr
	}
	for _, existing := range m.rows {
		if existing.StudentID == s.StudentID && existing.Subject == s.Subject &&
			existing.Date == s.Date && existing.Status != StatusRejected {
			return Submission{}, ErrDuplicate
		}
	}
	m.nextID++
	s.ID = fmt.Sprintf("sub-%d", m.nextID)
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.rows[s.ID] = s
	return s, nil
}

func (m *mockRepo) FindLive(_ context.Context, studentID, subject, date string) (*Submission, error) {
	for _, s := range m.rows {
		if s.StudentID == studentID && s.Subject == subject && s.Date == date && s.Status != StatusRejected {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) Get(_ context.Context, id string) (*Submission, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *mockRepo) ListByProfessor(_ context.Context, professorID string, _ ListFilter) ([]Submission, error) {
	var res []Submission
	for _, s := range m.rows {
		if s.ProfessorID == professorID {
			res = append(res, s)
		}
	}
	return res, nil
}

func (m *mockRepo) ListByStudent(_ context.Context, studentID string, _ ListFilter) ([]Submission, error) {
	var res []Submission
	for _, s := range m.rows {
		if s.StudentID == studentID {
			res = append(res, s)
		}
	}
	return res, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id, professorID, status string) (Submission, error) {
	s, ok := m.rows[id]
	if !ok || s.ProfessorID != professorID || s.Status != StatusPending {
		return Submission{}, sql.ErrNoRows
	}
	s.Status = status
	m.rows[id] = s
	return s, nil
}

type mockPerms struct {
	perm *permission.Permission
	res  permission.ValidationResult
}

func (m *mockPerms) Resolve(context.Context, permission.ValidateQuery) (*permission.Permission, permission.ValidationResult, error) {
	return m.perm, m.res, nil
}

type mockStorage struct {
	uploads map[string][]byte
	deleted []string
	failUp  bool
}

func newMockStorage() *mockStorage {
	return &mockStorage{uploads: make(map[string][]byte)}
}

func (m *mockStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	if m.failUp {
		return errors.New("upload failed")
	}
	m.uploads[key] = data
	return nil
}

func (m *mockStorage) SignedURL(key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (m *mockStorage) Bucket() string { return "attendance-photos" }

func coord(v float64) *float64 { return &v }

func allowedPerm(locationRequired bool) *permission.Permission {
	return &permission.Permission{
		ID:               "perm-1",
		ProfessorID:      "prof-1",
		Subject:          "Data Structures",
		Date:             time.Now().Format("2006-01-02"),
		StartTime:        "09:00",
		EndTime:          "09:15",
		Status:           permission.StatusActive,
		LocationRequired: locationRequired,
		Latitude:         coord(28.6139),
		Longitude:        coord(77.2090),
		RadiusMeters:     150,
		SessionHours:     2,
	}
}

func baseInput() SubmitInput {
	return SubmitInput{
		StudentID:   "stu-1",
		ProfessorID: "prof-1",
		Subject:     "Data Structures",
		Date:        time.Now().Format("2006-01-02"),
		Time:        "09:10",
		Program:     "B.Tech",
		Branch:      "CSE",
		Year:        "2",
		SemRoman:    "IV",
		Photo:       []byte("jpeg-bytes"),
		Filename:    "proof.jpg",
	}
}

func newTestService(repo Repo, perms Permissions, store *mockStorage, jobs queue.Queue) *Service {
	return NewService(repo, perms, store, jobs, time.Minute)
}

func TestSubmitHappyPath(t *testing.T) {
	repo := newMockRepo()
	store := newMockStorage()
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true, PermissionID: "perm-1"}}
	svc := newTestService(repo, perms, store, nil)

	sub, err := svc.Submit(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != StatusPending {
		t.Errorf("status = %q, want Pending", sub.Status)
	}
	if sub.AttendanceValue != 2 {
		t.Errorf("attendance_value = %f, want the permission's session hours", sub.AttendanceValue)
	}
	if sub.PhotoURL == "" {
		t.Error("expected presigned photo URL")
	}
	if len(store.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(store.uploads))
	}
	for key := range store.uploads {
		if !strings.Contains(key, sub.Date) || !strings.Contains(key, "stu-1") {
			t.Errorf("photo key %q should encode date and student id", key)
		}
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	repo := newMockRepo()
	store := newMockStorage()
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(repo, perms, store, nil)

	if _, err := svc.Submit(context.Background(), baseInput()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), baseInput())
	var apiErr *apierr.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeInvalidArgument {
		t.Fatalf("second submit = %v, want invalid-argument", err)
	}
	if !strings.Contains(apiErr.Message, "already submitted") {
		t.Errorf("message %q should say already submitted", apiErr.Message)
	}
}

func TestSubmitAfterRejectionAllowed(t *testing.T) {
	repo := newMockRepo()
	store := newMockStorage()
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(repo, perms, store, nil)

	first, err := svc.Submit(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), first.ID, "prof-1", StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Submit(context.Background(), baseInput()); err != nil {
		t.Errorf("resubmit after rejection: %v", err)
	}
}

func TestSubmitGeofence(t *testing.T) {
	repo := newMockRepo()
	store := newMockStorage()
	perms := &mockPerms{perm: allowedPerm(true), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(repo, perms, store, nil)

	// ~110m north of the stored location: inside the 150m radius.
	in := baseInput()
	in.Latitude = coord(28.6149)
	in.Longitude = coord(77.2090)
	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("in-range submit: %v", err)
	}

	// ~1.1km away: outside.
	repo2 := newMockRepo()
	svc2 := newTestService(repo2, perms, newMockStorage(), nil)
	far := baseInput()
	far.Latitude = coord(28.6239)
	far.Longitude = coord(77.2090)
	_, err := svc2.Submit(context.Background(), far)
	var apiErr *apierr.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeInvalidArgument {
		t.Fatalf("out-of-range submit = %v, want invalid-argument", err)
	}
	if !strings.Contains(apiErr.Message, "m from the class location") {
		t.Errorf("message %q should report the distance", apiErr.Message)
	}
}

func TestSubmitGeofenceMissingCoordinates(t *testing.T) {
	perms := &mockPerms{perm: allowedPerm(true), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(newMockRepo(), perms, newMockStorage(), nil)
	if _, err := svc.Submit(context.Background(), baseInput()); err == nil {
		t.Fatal("expected error when location required but not supplied")
	}
}

func TestSubmitWrongDate(t *testing.T) {
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(newMockRepo(), perms, newMockStorage(), nil)
	in := baseInput()
	in.Date = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if _, err := svc.Submit(context.Background(), in); err == nil {
		t.Fatal("expected error for non-today date")
	}
}

func TestSubmitBadTimeFormat(t *testing.T) {
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(newMockRepo(), perms, newMockStorage(), nil)
	in := baseInput()
	in.Time = "9:10am"
	if _, err := svc.Submit(context.Background(), in); err == nil {
		t.Fatal("expected error for malformed time")
	}
}

func TestSubmitDeniedPermission(t *testing.T) {
	perms := &mockPerms{res: permission.ValidationResult{Allowed: false, Reason: "no active permission window for this subject and time"}}
	svc := newTestService(newMockRepo(), perms, newMockStorage(), nil)
	_, err := svc.Submit(context.Background(), baseInput())
	var apiErr *apierr.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeInvalidArgument {
		t.Fatalf("denied submit = %v, want invalid-argument", err)
	}
}

func TestSubmitInsertFailureEnqueuesCleanup(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("insert failed")
	store := newMockStorage()
	jobs := queue.NewInMemory(4)
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(repo, perms, store, jobs)

	if _, err := svc.Submit(context.Background(), baseInput()); err == nil {
		t.Fatal("expected insert failure to surface")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	messages, err := jobs.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case msg := <-messages:
		if msg.Type != queue.TypePhotoCleanup {
			t.Errorf("job type = %q, want %q", msg.Type, queue.TypePhotoCleanup)
		}
	case <-ctx.Done():
		t.Fatal("expected a cleanup job on the queue")
	}
}

func TestSetStatusRules(t *testing.T) {
	repo := newMockRepo()
	perms := &mockPerms{perm: allowedPerm(false), res: permission.ValidationResult{Allowed: true}}
	svc := newTestService(repo, perms, newMockStorage(), nil)

	sub, err := svc.Submit(context.Background(), baseInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.SetStatus(context.Background(), sub.ID, "prof-1", "Present"); err == nil {
		t.Error("expected error for unknown status value")
	}

	if _, err := svc.SetStatus(context.Background(), sub.ID, "prof-2", StatusAccepted); err == nil {
		t.Error("expected not-found for non-owning professor")
	}

	updated, err := svc.SetStatus(context.Background(), sub.ID, "prof-1", StatusAccepted)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Errorf("status = %q, want Accepted", updated.Status)
	}

	// Already decided; no second transition.
	if _, err := svc.SetStatus(context.Background(), sub.ID, "prof-1", StatusRejected); err == nil {
		t.Error("expected error transitioning a non-Pending submission")
	}
}
