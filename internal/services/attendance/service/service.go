// Package service implements the attendance IntakePort over a bound repo
package service

import (
	"context"
	"io"

	"fusepair/internal/modkit/repokit"
	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/retry"
	"fusepair/internal/services/attendance/domain"
)

// Service implements domain.IntakePort
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[domain.Repo]
	log    logger.Logger
}

// compile-time assertion
var _ domain.IntakePort = (*Service)(nil)

// New constructs the attendance service
func New(tx repokit.TxRunner, binder repokit.Binder[domain.Repo]) *Service {
	return &Service{tx: tx, binder: binder, log: *logger.Named("attendance")}
}

func (s *Service) repo() domain.Repo { return repokit.MustBind(s.binder, s.tx) }

// Intake parses the roster and replaces the date's attendance record.
// Latest intake wins: the new parse fully replaces per-status membership.
// A malformed roster returns a validation error before any write
func (s *Service) Intake(ctx context.Context, date string, r io.Reader) (domain.Summary, error) {
	statuses, err := parseRoster(r)
	if err != nil {
		return domain.Summary{}, err
	}

	if err := retry.Do(ctx, "attendance.replace", func(ctx context.Context) error {
		return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
			return s.binder.Bind(q).Replace(ctx, date, statuses)
		})
	}); err != nil {
		return domain.Summary{}, err
	}

	sum := summarize(statuses)
	s.log.Info().
		Str("date", date).
		Int("accepted", sum.Accepted).
		Int("declined", sum.Declined).
		Int("tentative", sum.Tentative).
		Int("no_response", sum.NoResponse).
		Msg("roster intake complete")
	return sum, nil
}

// Record returns the four-set attendance record for date
func (s *Service) Record(ctx context.Context, date string) (domain.Record, error) {
	var statuses map[string]domain.Status
	if err := retry.Do(ctx, "attendance.statuses", func(ctx context.Context) error {
		var err error
		statuses, err = s.repo().Statuses(ctx, date)
		return err
	}); err != nil {
		return domain.Record{}, err
	}

	rec := domain.NewRecord()
	for alias, st := range statuses {
		switch st {
		case domain.StatusAccepted:
			rec.Accepted[alias] = struct{}{}
		case domain.StatusDeclined:
			rec.Declined[alias] = struct{}{}
		case domain.StatusTentative:
			rec.Tentative[alias] = struct{}{}
		default:
			rec.NoResponse[alias] = struct{}{}
		}
	}
	return rec, nil
}

// EffectiveSet returns the attendance set the engine pairs on
func (s *Service) EffectiveSet(ctx context.Context, date string) (map[string]struct{}, error) {
	rec, err := s.Record(ctx, date)
	if err != nil {
		return nil, err
	}
	return rec.Effective(), nil
}

// SessionDate returns the most recently set session date
func (s *Service) SessionDate(ctx context.Context) (string, error) {
	var date string
	err := retry.Do(ctx, "attendance.session_date", func(ctx context.Context) error {
		var err error
		date, err = s.repo().LatestSessionDate(ctx)
		return err
	})
	return date, err
}

// SetSessionDate records date as the current session date
func (s *Service) SetSessionDate(ctx context.Context, date string) error {
	return retry.Do(ctx, "attendance.set_session_date", func(ctx context.Context) error {
		return s.repo().UpsertSessionDate(ctx, date)
	})
}

func summarize(statuses map[string]domain.Status) domain.Summary {
	var sum domain.Summary
	for _, st := range statuses {
		switch st {
		case domain.StatusAccepted:
			sum.Accepted++
		case domain.StatusDeclined:
			sum.Declined++
		case domain.StatusTentative:
			sum.Tentative++
		default:
			sum.NoResponse++
		}
	}
	return sum
}
