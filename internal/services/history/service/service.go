// Package service implements the history StorePort over a bound repo
package service

import (
	"context"

	"fusepair/internal/modkit/repokit"
	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/retry"
	"fusepair/internal/services/history/domain"
)

// Service implements domain.StorePort
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[domain.Repo]
	log    logger.Logger
}

// compile-time assertion
var _ domain.StorePort = (*Service)(nil)

// New constructs the history service
func New(tx repokit.TxRunner, binder repokit.Binder[domain.Repo]) *Service {
	return &Service{tx: tx, binder: binder, log: *logger.Named("history")}
}

func (s *Service) repo() domain.Repo { return repokit.MustBind(s.binder, s.tx) }

// Assignments returns date -> partner for alias
func (s *Service) Assignments(ctx context.Context, alias string) (map[string]string, error) {
	var out map[string]string
	err := retry.Do(ctx, "history.assignments", func(ctx context.Context) error {
		var err error
		out, err = s.repo().Assignments(ctx, alias)
		return err
	})
	return out, err
}

// RecordPair upserts both directions of a pairing for date
func (s *Service) RecordPair(ctx context.Context, date, a, b string) error {
	if err := retry.Do(ctx, "history.record_pair", func(ctx context.Context) error {
		return s.repo().Upsert(ctx, a, date, b)
	}); err != nil {
		return err
	}
	if err := retry.Do(ctx, "history.record_pair", func(ctx context.Context) error {
		return s.repo().Upsert(ctx, b, date, a)
	}); err != nil {
		return err
	}
	s.log.Debug().Str("date", date).Str("se1", a).Str("se2", b).Msg("pair recorded")
	return nil
}

// MatchCount returns the size of alias's assignment map
func (s *Service) MatchCount(ctx context.Context, alias string) (int, error) {
	var n int
	err := retry.Do(ctx, "history.match_count", func(ctx context.Context) error {
		var err error
		n, err = s.repo().MatchCount(ctx, alias)
		return err
	})
	return n, err
}

// CountAll returns match counts for every given alias in one read
func (s *Service) CountAll(ctx context.Context, aliases []string) (map[string]int, error) {
	var out map[string]int
	err := retry.Do(ctx, "history.count_all", func(ctx context.Context) error {
		var err error
		out, err = s.repo().CountAll(ctx, aliases)
		return err
	})
	return out, err
}
