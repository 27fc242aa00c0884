package civildate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Layout is the canonical civil date format.
const Layout = "2006-01-02"

// anchorHour is the time of day every civil date is pinned to before arithmetic.
// Noon keeps a one-day step on the same calendar day across DST shifts.
const anchorHour = 12

// Domain errors
var (
	ErrInvalidDateFormat = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidRange      = errors.New("start date must be on or before end date")
)

// ParseIn parses a YYYY-MM-DD string into a time anchored at noon in loc.
// PRE: loc is non-nil
// POST: Returns the anchored time or ErrInvalidDateFormat
func ParseIn(loc *time.Location, s string) (time.Time, error) {
	if len(s) != len(Layout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	d, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), anchorHour, 0, 0, 0, loc), nil
}

// Parse parses a YYYY-MM-DD string anchored at local noon.
func Parse(s string) (time.Time, error) {
	return ParseIn(time.Local, s)
}

// Validate reports whether s is a well-formed civil date.
func Validate(s string) error {
	_, err := ParseIn(time.UTC, s)
	return err
}

// Format renders the civil date part of t.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays returns the civil date n days after s (n may be negative).
// PRE: s is a valid civil date
// POST: Returns the shifted date or ErrInvalidDateFormat
func AddDays(s string, n int) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// GenerateDateRangeIn returns every civil date from start to end inclusive,
// stepping one calendar day at a time from a noon anchor in loc.
// PRE: start and end are valid civil dates, start <= end
// POST: Returns an ordered slice containing both endpoints
func GenerateDateRangeIn(loc *time.Location, start, end string) ([]string, error) {
	s, err := ParseIn(loc, start)
	if err != nil {
		return nil, err
	}
	e, err := ParseIn(loc, end)
	if err != nil {
		return nil, err
	}
	if s.After(e) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	dates := make([]string, 0, DaysBetween(s, e)+1)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, Format(d))
	}
	return dates, nil
}

// GenerateDateRange is GenerateDateRangeIn anchored in the local time zone.
func GenerateDateRange(start, end string) ([]string, error) {
	return GenerateDateRangeIn(time.Local, start, end)
}

// DaysDifferenceIn returns the absolute number of calendar days between a and b.
// PRE: a and b are valid civil dates
// POST: Returns a non-negative day count
func DaysDifferenceIn(loc *time.Location, a, b string) (int, error) {
	ta, err := ParseIn(loc, a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseIn(loc, b)
	if err != nil {
		return 0, err
	}
	n := DaysBetween(ta, tb)
	if n < 0 {
		n = -n
	}
	return n, nil
}

// DaysDifference is DaysDifferenceIn for the local time zone.
func DaysDifference(a, b string) (int, error) {
	return DaysDifferenceIn(time.Local, a, b)
}

// DaysBetween counts signed whole days from a to b. Both must be anchored at the
// same hour; a 23h or 25h DST day rounds to one.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// MonthKey returns the YYYY-MM prefix of a civil date.
// PRE: s is a valid civil date
func MonthKey(s string) string {
	return s[:7]
}

// YearBounds returns the first and last civil dates of year.
func YearBounds(year int) (string, string) {
	y := strconv.Itoa(year)
	for len(y) < 4 {
		y = "0" + y
	}
	return y + "-01-01", y + "-12-31"
}

// InRange reports whether s lies within [start, end] by string comparison.
// Valid only for canonical YYYY-MM-DD strings.
func InRange(s, start, end string) bool {
	return s >= start && s <= end
}
