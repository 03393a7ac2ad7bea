package dateutil

import "time"

// Layout is the canonical calendar-day format used everywhere a posting date
// is stored or compared. Lexicographic order equals chronological order.
const Layout = "2006-01-02"

// Format renders t as a calendar day in t's location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse validates and parses a calendar-day string.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// IsValid reports whether s is a well-formed calendar day.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// AddDays shifts a calendar day by n days. s must be valid.
func AddDays(s string, n int) string {
	t, err := Parse(s)
	if err != nil {
		return s
	}
	return Format(t.AddDate(0, 0, n))
}

// Yesterday returns the day before s.
func Yesterday(s string) string {
	return AddDays(s, -1)
}

// Before reports whether day a falls before day b.
func Before(a, b string) bool {
	return a < b
}
