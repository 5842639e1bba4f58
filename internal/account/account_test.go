package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusattend/internal/apierr"
	"campusattend/internal/auth"
)

type mockRepo struct {
	users   map[string]User // by email
	refresh map[string]string
	nextID  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]User), refresh: make(map[string]string)}
}

func (m *mockRepo) Insert(_ context.Context, u User) (User, error) {
	if _, ok := m.users[u.Email]; ok {
		return User{}, apierr.Conflict("email already registered")
	}
	m.nextID++
	u.ID = u.Email // stable, good enough for tests
	u.CreatedAt = time.Now()
	m.users[u.Email] = u
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockRepo) SaveRefreshToken(_ context.Context, userID, token string, _ time.Time) error {
	m.refresh[userID] = token
	return nil
}

type staticVerified map[string]bool

func (v staticVerified) IsVerified(_ context.Context, userID string) bool { return v[userID] }

var testTokens = TokenConfig{
	Issuer:     "campusattend",
	SigningKey: "test-key",
	AccessTTL:  time.Minute,
	RefreshTTL: time.Hour,
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, testTokens)
	ctx := context.Background()

	u, pair, err := svc.Register(ctx, "a@college.edu", "pass1234", auth.RoleStudent, "21CS001", "A Student")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if repo.refresh[u.ID] != pair.RefreshToken {
		t.Error("refresh token not persisted")
	}

	claims, err := auth.Parse(pair.AccessToken, testTokens.SigningKey, testTokens.Issuer)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != auth.RoleStudent || claims.Verified {
		t.Errorf("claims = %+v, want student/unverified", claims)
	}

	if _, _, err := svc.Login(ctx, "a@college.edu", "pass1234"); err != nil {
		t.Errorf("login: %v", err)
	}
	_, _, err = svc.Login(ctx, "a@college.edu", "wrong")
	var apiErr *apierr.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeUnauthorized {
		t.Fatalf("bad password = %v, want unauthorized", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@college.edu", "pass1234"); err == nil {
		t.Error("unknown email should not log in")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMockRepo(), nil, testTokens)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "", "pass", auth.RoleStudent, "", ""); err == nil {
		t.Error("missing email accepted")
	}
	if _, _, err := svc.Register(ctx, "b@college.edu", "pass", "admin", "", ""); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo(), nil, testTokens)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "c@college.edu", "pass1234", auth.RoleProfessor, "", "P"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Register(ctx, "c@college.edu", "other", auth.RoleProfessor, "", "P")
	var apiErr *apierr.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeConflict {
		t.Fatalf("duplicate = %v, want conflict", err)
	}
}

func TestTokensCarryVerifiedFlag(t *testing.T) {
	repo := newMockRepo()
	verified := staticVerified{}
	svc := NewService(repo, verified, testTokens)
	ctx := context.Background()

	u, pair, err := svc.Register(ctx, "d@college.edu", "pass1234", auth.RoleProfessor, "", "P")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, _ := auth.Parse(pair.AccessToken, testTokens.SigningKey, testTokens.Issuer)
	if claims.Verified {
		t.Error("fresh account should be unverified")
	}

	// Verification lands between sessions; the next login reflects it.
	verified[u.ID] = true
	_, pair, err = svc.Login(ctx, "d@college.edu", "pass1234")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, _ = auth.Parse(pair.AccessToken, testTokens.SigningKey, testTokens.Issuer)
	if !claims.Verified {
		t.Error("verified flag not carried into new tokens")
	}
}
