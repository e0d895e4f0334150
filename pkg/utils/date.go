package utils

import "time"

const dateOnlyLayout = "2006-01-02"

// DateOnly formats a timestamp as a calendar date. The daily stats bucket is
// keyed by this value, so rollover detection is a plain string comparison.
func DateOnly(t time.Time) string {
	return t.Format(dateOnlyLayout)
}

func PrettyDate(date time.Time) string {
	return date.Format("02 Jan 2006 - 15:04 MST")
}
