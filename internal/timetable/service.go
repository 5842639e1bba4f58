package timetable

import (
	"context"
	"fmt"
	"time"

	"campusattend/internal/apierr"
	"campusattend/internal/normalize"
)

// Repo is the persistence surface the service needs.
type Repo interface {
	FindDay(ctx context.Context, programs, branches []string, year, semester string, day int) ([]Entry, error)
	FindWeek(ctx context.Context, programs, branches []string, year, semester string) ([]Entry, error)
}

// Service resolves timetable lookups, fanning out over normalized
// program/branch spellings.
type Service struct {
	repo Repo
}

// NewService creates a service backed by a repository.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Day returns the entries for one weekday (0=Sunday).
func (s *Service) Day(ctx context.Context, program, branch, year, semester string, day time.Weekday) ([]Entry, error) {
	programs, branches, err := candidates(program, branch)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.FindDay(ctx, programs, branches, year, semester, int(day))
	if err != nil {
		return nil, fmt.Errorf("query timetable: %w", err)
	}
	return entries, nil
}

// Week returns the full week's entries for a class context.
func (s *Service) Week(ctx context.Context, program, branch, year, semester string) ([]Entry, error) {
	programs, branches, err := candidates(program, branch)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.FindWeek(ctx, programs, branches, year, semester)
	if err != nil {
		return nil, fmt.Errorf("query timetable: %w", err)
	}
	return entries, nil
}

// HasEntry reports whether the context has any slot on the weekday. Satisfies
// permission.TimetableChecker.
func (s *Service) HasEntry(ctx context.Context, program, branch, year, semester string, day time.Weekday) (bool, error) {
	entries, err := s.Day(ctx, program, branch, year, semester, day)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

func candidates(program, branch string) ([]string, []string, error) {
	programs := normalize.Program(program)
	branches := normalize.Branch(branch)
	if len(programs) == 0 || len(branches) == 0 {
		return nil, nil, apierr.Invalid("program and branch are required")
	}
	return programs, branches, nil
}
