package timetable

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository reads timetable entries from Postgres. Program and branch are
// matched against candidate spelling lists, so queries take slices.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const entryColumns = `id, program, branch, year, semester, day_of_week, subject, start_time, end_time`

// FindDay returns entries for one weekday across any candidate spelling of
// program and branch.
func (r *Repository) FindDay(ctx context.Context, programs, branches []string, year, semester string, day int) ([]Entry, error) {
	query, args := buildQuery(programs, branches, year, semester, &day)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// FindWeek returns all entries for the context, ordered by day then time.
func (r *Repository) FindWeek(ctx context.Context, programs, branches []string, year, semester string) ([]Entry, error) {
	query, args := buildQuery(programs, branches, year, semester, nil)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func buildQuery(programs, branches []string, year, semester string, day *int) (string, []any) {
	args := []any{}
	query := `SELECT ` + entryColumns + ` FROM timetable_entries WHERE program IN (` + placeholders(len(programs), len(args)+1) + `)`
	for _, p := range programs {
		args = append(args, p)
	}
	query += ` AND branch IN (` + placeholders(len(branches), len(args)+1) + `)`
	for _, b := range branches {
		args = append(args, b)
	}
	query += fmt.Sprintf(` AND year = $%d AND semester = $%d`, len(args)+1, len(args)+2)
	args = append(args, year, semester)
	if day != nil {
		query += fmt.Sprintf(` AND day_of_week = $%d`, len(args)+1)
		args = append(args, *day)
	}
	query += ` ORDER BY day_of_week, start_time`
	return query, args
}

func placeholders(n, start int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("$%d", start+i)
	}
	return out
}

func collect(rows *sql.Rows) ([]Entry, error) {
	var res []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Program, &e.Branch, &e.Year, &e.Semester,
			&e.DayOfWeek, &e.Subject, &e.StartTime, &e.EndTime); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
