package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
)

// Clock returns the current time. Stores take one so tests can pin "today".
type Clock func() time.Time

// SystemClock returns a Clock reading the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock always returns t. Useful in tests.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// DateKey formats the calendar date of t in t's own location as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDateKey parses a YYYY-MM-DD key at midnight in loc.
func ParseDateKey(day string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", day, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// DaysBack returns the calendar day n days before t. AddDate keeps this
// correct across DST changes, unlike subtracting 24h multiples.
func DaysBack(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -n)
}

// Window returns the date keys for today and the preceding days-1 days,
// newest first.
func Window(today time.Time, days int) []time.Time {
	out := make([]time.Time, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, DaysBack(today, i))
	}
	return out
}
