package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and ensures the
// schema exists.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL CHECK (role IN ('student','professor')),
		reg_no        TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		token      TEXT PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id),
		expires_at TIMESTAMPTZ NOT NULL,
		revoked    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_permissions (
		id                UUID PRIMARY KEY,
		professor_id      UUID NOT NULL REFERENCES users(id),
		subject           TEXT NOT NULL,
		date              DATE NOT NULL,
		start_time        TEXT NOT NULL,
		end_time          TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active','Inactive')),
		location_required BOOLEAN NOT NULL DEFAULT FALSE,
		latitude          DOUBLE PRECISION,
		longitude         DOUBLE PRECISION,
		radius_meters     DOUBLE PRECISION NOT NULL DEFAULT 150,
		session_hours     DOUBLE PRECISION NOT NULL DEFAULT 1,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_permissions_date ON attendance_permissions(date, status);

	CREATE TABLE IF NOT EXISTS attendance_submissions (
		id               UUID PRIMARY KEY,
		student_id       UUID NOT NULL REFERENCES users(id),
		professor_id     UUID NOT NULL REFERENCES users(id),
		subject          TEXT NOT NULL,
		subject_norm     TEXT NOT NULL,
		date             DATE NOT NULL,
		time             TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending','Accepted','Rejected')),
		photo_bucket     TEXT NOT NULL DEFAULT '',
		photo_path       TEXT NOT NULL DEFAULT '',
		latitude         DOUBLE PRECISION,
		longitude        DOUBLE PRECISION,
		attendance_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	-- One live submission per student/subject/day. Rejected rows do not count,
	-- so a student may retry after a rejection.
	CREATE UNIQUE INDEX IF NOT EXISTS uq_submission_per_day
		ON attendance_submissions (student_id, subject_norm, date)
		WHERE status <> 'Rejected';
	CREATE INDEX IF NOT EXISTS idx_submissions_professor ON attendance_submissions(professor_id, date);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id             UUID PRIMARY KEY REFERENCES users(id),
		role                TEXT NOT NULL CHECK (role IN ('student','professor')),
		name                TEXT NOT NULL DEFAULT '',
		email               TEXT NOT NULL DEFAULT '',
		phone               TEXT NOT NULL DEFAULT '',
		department          TEXT NOT NULL DEFAULT '',
		program             TEXT NOT NULL DEFAULT '',
		branch              TEXT NOT NULL DEFAULT '',
		year                TEXT NOT NULL DEFAULT '',
		semester            TEXT NOT NULL DEFAULT '',
		reg_no              TEXT NOT NULL DEFAULT '',
		photo_path          TEXT NOT NULL DEFAULT '',
		verification_status TEXT NOT NULL DEFAULT 'unverified',
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS timetable_entries (
		id          UUID PRIMARY KEY,
		program     TEXT NOT NULL,
		branch      TEXT NOT NULL,
		year        TEXT NOT NULL,
		semester    TEXT NOT NULL,
		day_of_week INT  NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		subject     TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_timetable_ctx ON timetable_entries(program, branch, year, semester, day_of_week);

	CREATE TABLE IF NOT EXISTS lms_subject_folders (
		id         UUID PRIMARY KEY,
		program    TEXT NOT NULL,
		branch     TEXT NOT NULL,
		year       TEXT NOT NULL,
		semester   TEXT NOT NULL,
		subject    TEXT NOT NULL,
		folder_url TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lms_ctx ON lms_subject_folders(program, branch, year, semester);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
