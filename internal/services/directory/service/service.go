// Package service implements the directory StorePort over a bound repo
package service

import (
	"context"
	"math/rand"
	"sync"

	"fusepair/internal/modkit/repokit"
	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/retry"
	"fusepair/internal/services/directory/domain"

	"golang.org/x/sync/errgroup"
)

// Config holds directory service tuning
type Config struct {
	// Workers bounds concurrent lookups in ResolveAll
	Workers int
}

// Service implements domain.StorePort
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[domain.Repo]
	log    logger.Logger
	cfg    Config
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

// compile-time assertion
var _ domain.StorePort = (*Service)(nil)

// New constructs the directory service
func New(tx repokit.TxRunner, binder repokit.Binder[domain.Repo], cfg Config, rnd *rand.Rand) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	return &Service{tx: tx, binder: binder, log: *logger.Named("directory"), cfg: cfg, rnd: rnd}
}

func (s *Service) repo() domain.Repo { return repokit.MustBind(s.binder, s.tx) }

// Lookup returns the record for alias or a NotFound error
func (s *Service) Lookup(ctx context.Context, alias string) (domain.SEInfo, error) {
	var rec domain.SEInfo
	err := retry.Do(ctx, "directory.lookup", func(ctx context.Context) error {
		var err error
		rec, err = s.repo().Get(ctx, alias)
		return err
	})
	return rec, err
}

// RegisterUnknown provisions a directory record for an alias that failed
// Lookup. The new record takes the next stable index, or a random 6-digit
// index when the directory is empty, with the VIP region and role defaults.
// A fresh unknown has zero match history
func (s *Service) RegisterUnknown(ctx context.Context, alias, displayName string) (domain.SEInfo, error) {
	if displayName == "" {
		displayName = "Unknown name"
	}
	var rec domain.SEInfo
	err := retry.Do(ctx, "directory.register_unknown", func(ctx context.Context) error {
		return repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
			r := s.binder.Bind(q)
			max, ok, err := r.MaxIndex(ctx)
			if err != nil {
				return err
			}
			next := s.randomIndex()
			if ok {
				next = max + 1
			}
			rec = domain.SEInfo{
				Index:       next,
				Alias:       alias,
				Name:        displayName,
				Region:      domain.VIPRegion,
				RegionIndex: domain.VIPRegionIndex,
				Role:        domain.VIPRegion,
				SEM:         false,
			}
			return r.Insert(ctx, rec)
		})
	})
	if err != nil {
		return domain.SEInfo{}, err
	}
	s.log.Warn().Str("alias", alias).Int("se_idx", rec.Index).Msg("unknown se provisioned")
	return rec, nil
}

// RegionIndex maps a region name to its index
func (s *Service) RegionIndex(ctx context.Context, regionName string) (int, error) {
	var idx int
	err := retry.Do(ctx, "directory.region_index", func(ctx context.Context) error {
		var err error
		idx, err = s.repo().RegionIndex(ctx, regionName)
		return err
	})
	return idx, err
}

// ResolveAll resolves every alias with a bounded worker pool,
// auto-provisioning unknowns. The result order is not meaningful
func (s *Service) ResolveAll(ctx context.Context, aliases []string) ([]domain.SEInfo, error) {
	out := make([]domain.SEInfo, 0, len(aliases))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, alias := range aliases {
		g.Go(func() error {
			rec, err := s.Lookup(gctx, alias)
			if perr.IsCode(err, perr.ErrorCodeNotFound) {
				rec, err = s.RegisterUnknown(gctx, alias, "")
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// NamesByAliases returns display names for the given aliases in one read
func (s *Service) NamesByAliases(ctx context.Context, aliases []string) (map[string]string, error) {
	var out map[string]string
	err := retry.Do(ctx, "directory.names_by_aliases", func(ctx context.Context) error {
		var err error
		out, err = s.repo().NamesByAliases(ctx, aliases)
		return err
	})
	return out, err
}

// SEMSet returns the sem-flagged aliases intersected with the given set
func (s *Service) SEMSet(ctx context.Context, among map[string]struct{}) (map[string]struct{}, error) {
	var all []string
	err := retry.Do(ctx, "directory.sem_set", func(ctx context.Context) error {
		var err error
		all, err = s.repo().SEMAliases(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{})
	for _, alias := range all {
		if _, ok := among[alias]; ok {
			out[alias] = struct{}{}
		}
	}
	return out, nil
}

func (s *Service) randomIndex() int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return 100000 + s.rnd.Intn(900000)
}
