package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in queries and feature properties.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, ErrInvalidInput)
	}
	return t, nil
}

// DaysBetween counts calendar days from the date of from to the date of to,
// both taken in loc. The result is negative when to is earlier.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	a := from.In(loc)
	b := to.In(loc)
	// Noon UTC on both dates keeps DST transitions out of the division.
	da := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
