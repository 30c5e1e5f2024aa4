package audit

import (
	"errors"
	"fmt"
	"time"
)

// An audit year runs from 1 April to 31 March of the following calendar
// year and is named after the calendar year it starts in.

var ErrDateOutOfRange = errors.New("date outside the supported audit period")

const (
	// Earliest and latest audit years the platform collects for.
	FirstAuditYear = 2024
	LastAuditYear  = 2026
)

// Year is one audit year with inclusive start and end bounds. Bounds are
// date-only values at UTC midnight.
type Year struct {
	StartYear int
	Start     time.Time
	End       time.Time
}

// YearStarting returns the audit year beginning 1 April of the given
// calendar year.
func YearStarting(calendarYear int) (Year, error) {
	if calendarYear < FirstAuditYear || calendarYear > LastAuditYear {
		return Year{}, fmt.Errorf("audit year %d: %w", calendarYear, ErrDateOutOfRange)
	}
	return Year{
		StartYear: calendarYear,
		Start:     time.Date(calendarYear, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(calendarYear+1, time.March, 31, 0, 0, 0, 0, time.UTC),
	}, nil
}

// YearForDate resolves the audit year a date falls into.
func YearForDate(d time.Time) (Year, error) {
	startYear := d.Year()
	if d.Month() < time.April {
		startYear--
	}
	y, err := YearStarting(startYear)
	if err != nil {
		return Year{}, fmt.Errorf("date %s: %w", d.Format("2006-01-02"), ErrDateOutOfRange)
	}
	return y, nil
}

// Contains reports whether a date falls inside the audit year, bounds
// inclusive.
func (y Year) Contains(d time.Time) bool {
	return !d.Before(y.Start) && !d.After(y.End)
}

// QuarterForDate returns the audit quarter (1..4) for a date: Q1 is
// April to June, Q4 is January to March.
func QuarterForDate(d time.Time) int {
	switch {
	case d.Month() >= time.April && d.Month() <= time.June:
		return 1
	case d.Month() >= time.July && d.Month() <= time.September:
		return 2
	case d.Month() >= time.October:
		return 3
	default:
		return 4
	}
}

// AgeInYears returns completed years between a date of birth and a
// reference date.
func AgeInYears(dateOfBirth, at time.Time) int {
	years := at.Year() - dateOfBirth.Year()
	anniversary := dateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
