// Package account owns user records and credential checks. Tokens carry the
// role and verified flags so route guards never need a database read.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"campusattend/internal/apierr"
	"campusattend/internal/auth"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	RegNo        string    `json:"reg_no,omitempty"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists users and refresh tokens in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new user.
func (r *Repository) Insert(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, reg_no, name)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.RegNo, u.Name)
	if err := row.Scan(&u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, apierr.Conflict("email already registered")
		}
		return User{}, err
	}
	return u, nil
}

// GetByEmail returns a user by email, or nil.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, reg_no, name, created_at
		FROM users WHERE email = $1
	`, email)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.RegNo, &u.Name, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	return err
}

// Repo is the persistence surface the service needs.
type Repo interface {
	Insert(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
}

// VerifiedLookup answers whether a user's profile is verified. Backed by the
// Redis directory mirror with a Postgres fallback.
type VerifiedLookup interface {
	IsVerified(ctx context.Context, userID string) bool
}

// TokenConfig groups the signing parameters for token issuance.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service handles registration and login.
type Service struct {
	repo     Repo
	verified VerifiedLookup
	tokens   TokenConfig
}

// NewService creates a service. verified may be nil; tokens then carry
// verified=false until re-issued.
func NewService(repo Repo, verified VerifiedLookup, tokens TokenConfig) *Service {
	return &Service{repo: repo, verified: verified, tokens: tokens}
}

// Register creates an account and issues a token pair.
func (s *Service) Register(ctx context.Context, email, password, role, regNo, name string) (User, auth.TokenPair, error) {
	if email == "" || password == "" {
		return User{}, auth.TokenPair{}, apierr.Invalid("email and password are required")
	}
	if role != auth.RoleStudent && role != auth.RoleProfessor {
		return User{}, auth.TokenPair{}, apierr.Invalid("role must be student or professor")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, auth.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Insert(ctx, User{Email: email, PasswordHash: hash, Role: role, RegNo: regNo, Name: name})
	if err != nil {
		return User{}, auth.TokenPair{}, err
	}
	pair, err := s.issue(ctx, u)
	return u, pair, err
}

// Login checks credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (User, auth.TokenPair, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, auth.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return User{}, auth.TokenPair{}, apierr.Unauthorized("invalid credentials")
	}
	pair, err := s.issue(ctx, *u)
	return *u, pair, err
}

func (s *Service) issue(ctx context.Context, u User) (auth.TokenPair, error) {
	verified := false
	if s.verified != nil {
		verified = s.verified.IsVerified(ctx, u.ID)
	}
	pair, err := auth.Issue(u.ID, u.Role, verified, s.tokens.Issuer, s.tokens.SigningKey,
		s.tokens.AccessTTL, s.tokens.RefreshTTL)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.repo.SaveRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp); err != nil {
		return auth.TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	return pair, nil
}
