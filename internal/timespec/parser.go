package timespec

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date layout accepted on the command line.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date ("2025-11-01") in now's location.
// An empty value returns the calendar date of now.
//
// Only real calendar dates are accepted: "2025-02-30" is rejected.
func ParseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return Today(now), nil
	}

	t, err := time.ParseInLocation(DateLayout, value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s (use ISO format like '2025-11-01')", value)
	}
	return t, nil
}

// Today truncates now to midnight in its own location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
