package domain

import (
	"time"
)

// DateLayout is the wire and storage format of a calendar date
const DateLayout = "2006-01-02"

// NormalizeDate maps an instant onto its UTC calendar date at midnight.
// Every rollup key is derived from a normalized date.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses either a YYYY-MM-DD date or an RFC3339 timestamp and
// normalizes it to a UTC calendar date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, NewValidationError("date", "must be YYYY-MM-DD or RFC3339")
	}

	return NormalizeDate(t), nil
}

// DayKey identifies one calendar day
type DayKey struct {
	Year  int
	Month time.Month
	Day   int
}

// DayKeyOf returns the UTC day key of t
func DayKeyOf(t time.Time) DayKey {
	u := t.UTC()
	return DayKey{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// Time returns the key as a UTC midnight timestamp
func (k DayKey) Time() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the month containing this day
func (k DayKey) MonthKey() MonthKey {
	return MonthKey{Year: k.Year, Month: k.Month}
}

// MonthKey identifies one calendar month
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf returns the UTC month key of t
func MonthKeyOf(t time.Time) MonthKey {
	u := t.UTC()
	return MonthKey{Year: u.Year(), Month: u.Month()}
}

// DaysIn returns the number of days in the month
func (k MonthKey) DaysIn() int {
	return time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
