// Package month owns the YYYY-MM month strings used as budget and
// aggregation keys: validation, calendar arithmetic, and derivation from
// transaction dates.
package month

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/envelope-budget/internal"
)

const (
	Layout     = "2006-01"
	DateLayout = "2006-01-02"
)

// Validate checks a zero-padded YYYY-MM month string.
func Validate(s string) *errors.AppError {
	if len(s) != len(Layout) {
		return errors.NewValidationError(fmt.Sprintf("month must be in YYYY-MM format, got %q", s), errors.ErrCodeInvalidMonth)
	}
	if _, err := time.Parse(Layout, s); err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid month %q", s), errors.ErrCodeInvalidMonth)
	}
	return nil
}

// Previous returns the calendar month before s, rolling the year back over
// January boundaries.
func Previous(s string) (string, *errors.AppError) {
	if appErr := Validate(s); appErr != nil {
		return "", appErr
	}
	t, _ := time.Parse(Layout, s)
	return t.AddDate(0, -1, 0).Format(Layout), nil
}

// OfDate returns the month a date falls in.
func OfDate(t time.Time) string {
	return t.Format(Layout)
}

// Current returns the month of the given wall-clock time, normally time.Now().
func Current(now time.Time) string {
	return OfDate(now)
}

// ParseDate checks a zero-padded YYYY-MM-DD transaction date.
func ParseDate(s string) (time.Time, *errors.AppError) {
	if len(s) != len(DateLayout) {
		return time.Time{}, errors.NewValidationError(fmt.Sprintf("date must be in YYYY-MM-DD format, got %q", s), errors.ErrCodeInvalidDate)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.NewValidationError(fmt.Sprintf("invalid date %q", s), errors.ErrCodeInvalidDate)
	}
	return t, nil
}
