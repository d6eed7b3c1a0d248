// Package timeutil pins the canonical session-date representation: a UTC
// calendar date rendered as YYYY-MM-DD. Legacy roster exports still carry
// MM/DD/YYYY; those are accepted at the parse boundary only and never leak
// past it
package timeutil

import (
	"strings"
	"time"

	perr "fusepair/internal/platform/errors"
)

// SessionDateLayout is the canonical wire and storage form
const SessionDateLayout = "2006-01-02"

// legacyLayout shows up in calendar exports predating the canonical form
const legacyLayout = "01/02/2006"

// nowFunc is a seam for tests
var nowFunc = time.Now

// Today returns the current UTC calendar date (midnight)
func Today() time.Time {
	return Truncate(nowFunc().UTC())
}

// Truncate drops the time-of-day portion, keeping the UTC calendar date
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseSessionDate parses a session date in the canonical form, falling back
// to the legacy MM/DD/YYYY form. The result is always a UTC calendar date
func ParseSessionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(SessionDateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(legacyLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, perr.Validationf("invalid session date %q; want YYYY-MM-DD", s)
}

// FormatSessionDate renders the canonical form
func FormatSessionDate(t time.Time) string {
	return Truncate(t).Format(SessionDateLayout)
}

// FileDate renders the date for filenames, slashes and dashes replaced by underscores
func FileDate(t time.Time) string {
	return strings.ReplaceAll(FormatSessionDate(t), "-", "_")
}

// Waterline returns the repeat-pair cutoff: one year before the given date.
// A prior pairing strictly older than the waterline may be repeated
func Waterline(today time.Time) time.Time {
	return Truncate(today).AddDate(-1, 0, 0)
}
