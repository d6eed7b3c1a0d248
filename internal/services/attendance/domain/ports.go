package domain

import (
	"context"
	"io"
)

// IntakePort is the attendance surface consumed by the pairing engine and
// the cmd front end
type IntakePort interface {
	// Intake parses an RSVP roster and replaces the date's attendance record.
	// A malformed roster leaves the record untouched
	Intake(ctx context.Context, date string, r io.Reader) (Summary, error)

	// Record returns the four-set attendance record for date
	Record(ctx context.Context, date string) (Record, error)

	// EffectiveSet returns accepted plus tentative plus no_response for date
	EffectiveSet(ctx context.Context, date string) (map[string]struct{}, error)

	// SessionDate returns the most recently set session date
	SessionDate(ctx context.Context) (string, error)

	// SetSessionDate records date as the current session date
	SetSessionDate(ctx context.Context, date string) error
}

// Repo is the raw storage surface bound per Queryer
type Repo interface {
	Replace(ctx context.Context, date string, statuses map[string]Status) error
	Statuses(ctx context.Context, date string) (map[string]Status, error)
	LatestSessionDate(ctx context.Context) (string, error)
	UpsertSessionDate(ctx context.Context, date string) error
}
