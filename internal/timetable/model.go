package timetable

// Entry is one timetable slot for a class context.
type Entry struct {
	ID        string `json:"id"`
	Program   string `json:"program"`
	Branch    string `json:"branch"`
	Year      string `json:"year"`
	Semester  string `json:"semester"` // Roman numeral, e.g. "I", "II"
	DayOfWeek int    `json:"day_of_week"`
	Subject   string `json:"subject"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Context identifies a class cohort.
type Context struct {
	Program  string `json:"program"`
	Branch   string `json:"branch"`
	Year     string `json:"year"`
	Semester string `json:"semester"`
}
