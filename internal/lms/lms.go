// Package lms resolves Google Drive folder links for class subjects.
package lms

import (
	"context"
	"database/sql"
	"fmt"

	"campusattend/internal/apierr"
	"campusattend/internal/normalize"
	"campusattend/internal/timetable"
)

// Folder maps a subject within a class context to its drive folder URL.
type Folder struct {
	ID        string `json:"id"`
	Program   string `json:"program"`
	Branch    string `json:"branch"`
	Year      string `json:"year"`
	Semester  string `json:"semester"`
	Subject   string `json:"subject"`
	FolderURL string `json:"folder_url"`
}

// Repository reads folder mappings from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Contexts returns the distinct class contexts that have folder mappings.
func (r *Repository) Contexts(ctx context.Context) ([]timetable.Context, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT program, branch, year, semester
		FROM lms_subject_folders
		ORDER BY program, branch, year, semester
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []timetable.Context
	for rows.Next() {
		var c timetable.Context
		if err := rows.Scan(&c.Program, &c.Branch, &c.Year, &c.Semester); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// FindByContext returns folder rows for any candidate spelling of the
// program and branch.
func (r *Repository) FindByContext(ctx context.Context, programs, branches []string, year, semester string) ([]Folder, error) {
	query := `SELECT id, program, branch, year, semester, subject, folder_url
		FROM lms_subject_folders WHERE program IN (`
	args := []any{}
	for i, p := range programs {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, p)
	}
	query += `) AND branch IN (`
	for i, b := range branches {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, b)
	}
	query += fmt.Sprintf(`) AND year = $%d AND semester = $%d ORDER BY subject`, len(args)+1, len(args)+2)
	args = append(args, year, semester)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Program, &f.Branch, &f.Year, &f.Semester, &f.Subject, &f.FolderURL); err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

// Repo is the persistence surface the service needs.
type Repo interface {
	Contexts(ctx context.Context) ([]timetable.Context, error)
	FindByContext(ctx context.Context, programs, branches []string, year, semester string) ([]Folder, error)
}

// Service answers LMS lookups with normalized context matching.
type Service struct {
	repo Repo
}

// NewService creates a service backed by a repository.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Contexts lists the class contexts with LMS mappings.
func (s *Service) Contexts(ctx context.Context) ([]timetable.Context, error) {
	return s.repo.Contexts(ctx)
}

// Subjects lists the subjects mapped for a class context.
func (s *Service) Subjects(ctx context.Context, program, branch, year, semester string) ([]string, error) {
	folders, err := s.lookup(ctx, program, branch, year, semester)
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(folders))
	for _, f := range folders {
		subjects = append(subjects, f.Subject)
	}
	return subjects, nil
}

// DriveFolder resolves the folder URL for a subject within a context.
func (s *Service) DriveFolder(ctx context.Context, program, branch, year, semester, subject string) (string, error) {
	folders, err := s.lookup(ctx, program, branch, year, semester)
	if err != nil {
		return "", err
	}
	for _, f := range folders {
		if normalize.SubjectEqual(f.Subject, subject) {
			return f.FolderURL, nil
		}
	}
	return "", apierr.NotFound("no drive folder mapped for this subject")
}

func (s *Service) lookup(ctx context.Context, program, branch, year, semester string) ([]Folder, error) {
	programs := normalize.Program(program)
	branches := normalize.Branch(branch)
	if len(programs) == 0 || len(branches) == 0 || year == "" || semester == "" {
		return nil, apierr.Invalid("program, branch, year and semester are required")
	}
	folders, err := s.repo.FindByContext(ctx, programs, branches, year, semester)
	if err != nil {
		return nil, fmt.Errorf("query lms folders: %w", err)
	}
	return folders, nil
}
