/*
dates.go - Calendar-day dates and the backend's token date format

PURPOSE:
  The backend speaks two date representations:
  - Token form: "DD-Mon-YYYY" (e.g., "02-Dec-2025"), its native wire format
  - Calendar form: a plain calendar day, used for all comparisons

  This file defines DayDate, a comparable day-granularity value (year,
  month, day with no time-of-day, no timezone beyond the local calendar),
  plus total conversion functions between the two forms.

DESIGN PRINCIPLES:
  1. Totality: parsing never panics; unparsable input yields (zero, false)
  2. Comparability: DayDate is a plain value usable as a map key
  3. Day resolution: range membership ignores time-of-day entirely
  4. Explicit "today": nothing in this package reads the wall clock except
     Today(), which callers invoke ONCE per engine run and thread through

SEE ALSO:
  - normalize.go: threads a fixed "today" through all status decisions
  - daylog.go: uses DayDate as the day-log map key
*/
package engine

import (
	"sort"
	"time"
)

// TokenDateLayout is the backend's native date format ("02-Dec-2025").
const TokenDateLayout = "02-Jan-2006"

// =============================================================================
// DAY DATE - Comparable calendar day
// =============================================================================

// DayDate is a calendar day with no time-of-day component.
// The zero value is "no date" (IsZero reports true).
type DayDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDayDate constructs a DayDate from its parts.
func NewDayDate(year int, month time.Month, day int) DayDate {
	return DayDate{Year: year, Month: month, Day: day}
}

// DayOf truncates a time.Time to its calendar day.
func DayOf(t time.Time) DayDate {
	return DayDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current local calendar day. Call once per engine
// invocation and pass the result through; never call mid-computation.
func Today() DayDate {
	return DayOf(time.Now())
}

// ParseTokenDate parses "DD-Mon-YYYY". Total: returns (zero, false) on
// any malformed input instead of an error.
func ParseTokenDate(s string) (DayDate, bool) {
	t, err := time.Parse(TokenDateLayout, s)
	if err != nil {
		return DayDate{}, false
	}
	return DayOf(t), true
}

// Token formats the date in the backend's "DD-Mon-YYYY" form.
// The zero date formats to the empty string.
func (d DayDate) Token() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(TokenDateLayout)
}

// Time returns the date at midnight UTC, for arithmetic and formatting.
func (d DayDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d DayDate) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// Comparison
func (d DayDate) Before(other DayDate) bool { return d.Time().Before(other.Time()) }
func (d DayDate) After(other DayDate) bool  { return d.Time().After(other.Time()) }
func (d DayDate) Equal(other DayDate) bool  { return d == other }

func (d DayDate) BeforeOrEqual(other DayDate) bool { return !d.After(other) }
func (d DayDate) AfterOrEqual(other DayDate) bool  { return !d.Before(other) }

// AddDays returns the date n days later (negative n goes back).
func (d DayDate) AddDays(n int) DayDate {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d DayDate) String() string { return d.Token() }

// =============================================================================
// DATE RANGE - Inclusive [Start, End] at day resolution
// =============================================================================

// DateRange is an inclusive calendar-day range.
// A range with End before Start contains nothing (tolerated, not an error).
type DateRange struct {
	Start DayDate
	End   DayDate
}

// Contains reports whether d falls within [Start, End] at day resolution.
// A zero Start or End bound never matches.
func (r DateRange) Contains(d DayDate) bool {
	if r.Start.IsZero() || r.End.IsZero() || d.IsZero() {
		return false
	}
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// sortDates orders dates ascending, in place.
func sortDates(dates []DayDate) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}
