package domain

import (
	"fmt"
	"time"
)

// Period is the (month, year) window scoping KPIs and the statement.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates and builds a period.
func NewPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: month %d out of range", ErrInvalidPeriod, month)
	}

	if year <= 0 {
		return Period{}, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, year)
	}

	return Period{Year: year, Month: month}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" value.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}

	return NewPeriod(t.Year(), t.Month())
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Start is the first instant of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant after the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Days returns the number of days in the period.
func (p Period) Days() int {
	return p.End().AddDate(0, 0, -1).Day()
}

// String formats the period as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
