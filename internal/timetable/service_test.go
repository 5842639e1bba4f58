package timetable

import (
	"context"
	"testing"
	"time"
)

type mockRepo struct {
	lastPrograms []string
	lastBranches []string
	lastDay      int
	entries      []Entry
}

func (m *mockRepo) FindDay(_ context.Context, programs, branches []string, _, _ string, day int) ([]Entry, error) {
	m.lastPrograms = programs
	m.lastBranches = branches
	m.lastDay = day
	return m.entries, nil
}

func (m *mockRepo) FindWeek(_ context.Context, programs, branches []string, _, _ string) ([]Entry, error) {
	m.lastPrograms = programs
	m.lastBranches = branches
	return m.entries, nil
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

func TestDayFansOutSpellings(t *testing.T) {
	repo := &mockRepo{entries: []Entry{{Subject: "DBMS"}}}
	svc := NewService(repo)

	entries, err := svc.Day(context.Background(), "B.Tech", "CSE(AIML)", "2", "IV", time.Monday)
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if repo.lastDay != int(time.Monday) {
		t.Errorf("day = %d, want %d", repo.lastDay, int(time.Monday))
	}
	// The query must match rows stored under either punctuation style.
	if !contains(repo.lastPrograms, "B.Tech") || !contains(repo.lastPrograms, "BTech") {
		t.Errorf("program candidates %v missing a spelling", repo.lastPrograms)
	}
	if !contains(repo.lastBranches, "CSE(AIML)") || !contains(repo.lastBranches, "CSE (AIML)") {
		t.Errorf("branch candidates %v missing a spelling", repo.lastBranches)
	}
}

func TestDayRequiresContext(t *testing.T) {
	svc := NewService(&mockRepo{})
	if _, err := svc.Day(context.Background(), "", "CSE", "2", "IV", time.Monday); err == nil {
		t.Fatal("expected error for missing program")
	}
	if _, err := svc.Week(context.Background(), "B.Tech", "", "2", "IV"); err == nil {
		t.Fatal("expected error for missing branch")
	}
}

func TestHasEntry(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	ok, err := svc.HasEntry(context.Background(), "B.Tech", "CSE", "2", "IV", time.Friday)
	if err != nil {
		t.Fatalf("has entry: %v", err)
	}
	if ok {
		t.Error("no entries, want false")
	}

	repo.entries = []Entry{{Subject: "OS"}}
	ok, err = svc.HasEntry(context.Background(), "B.Tech", "CSE", "2", "IV", time.Friday)
	if err != nil {
		t.Fatalf("has entry: %v", err)
	}
	if !ok {
		t.Error("want true when a slot exists")
	}
}
