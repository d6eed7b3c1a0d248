// Package service implements the pairing engine
package service

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/timeutil"
	dirdomain "fusepair/internal/services/directory/domain"
	"fusepair/internal/services/pairing/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config holds engine tuning
type Config struct {
	// Host is the alias injected on odd attendance
	Host string
	// TestMode skips history writes and CSV emission
	TestMode bool
	// OutDir is where match CSVs land
	OutDir string
	// MaxResets bounds the reset controller
	MaxResets int
}

// Service runs the pairing engine over the three store ports
type Service struct {
	dir  domain.DirectoryPort
	hist domain.HistoryPort
	att  domain.AttendancePort

	cfg   Config
	rnd   *rand.Rand
	rndMu sync.Mutex
	today func() time.Time

	regionCache map[string]int
}

// New constructs the engine. rnd is the single randomness source for every
// uniform pick; today is the waterline clock and defaults to the UTC date
func New(dir domain.DirectoryPort, hist domain.HistoryPort, att domain.AttendancePort, cfg Config, rnd *rand.Rand) *Service {
	if cfg.MaxResets <= 0 {
		cfg.MaxResets = 5
	}
	return &Service{
		dir:         dir,
		hist:        hist,
		att:         att,
		cfg:         cfg,
		rnd:         rnd,
		today:       timeutil.Today,
		regionCache: map[string]int{},
	}
}

// WithToday overrides the waterline clock
func (s *Service) WithToday(fn func() time.Time) *Service {
	s.today = fn
	return s
}

// Run executes one engine run for the session date. On infeasibility the
// outcome is Infeasible and the error carries 500 semantics. A persist
// failure after a successful selection still emits the CSV and returns it
// alongside an InfeasiblePersist error
func (s *Service) Run(ctx context.Context, date string) (domain.Outcome, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, date)
	log := logger.C(ctx)

	if _, err := timeutil.ParseSessionDate(date); err != nil {
		return nil, err
	}

	// region lookups are cached for one session only
	s.regionCache = map[string]int{}

	effective, err := s.att.EffectiveSet(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(effective) == 0 {
		return nil, perr.Validationf("no attendees for %s", date)
	}
	log.Info().Int("attendees", len(effective)).Msg("engine run starting")

	// snapshot for the reset controller, captured before host injection
	snapshot := make(map[string]struct{}, len(effective))
	for a := range effective {
		snapshot[a] = struct{}{}
	}

	attendees := cloneSet(snapshot)
	if injectHost(attendees, s.cfg.Host) {
		log.Info().Str("host", s.cfg.Host).Msg("odd attendance; host injected")
	}

	infos, counts, err := s.resolveAndCount(ctx, attendees)
	if err != nil {
		return nil, err
	}

	resets := 0
	var pairs []domain.Pair
	for {
		st, err := s.buildState(ctx, attendees, infos, counts)
		if err != nil {
			return nil, err
		}

		err = s.selectPairs(ctx, st)
		if err == nil {
			pairs = st.pairs
			break
		}
		if err != errKobayashi {
			return nil, err
		}

		// the budget bounds restorations: fail only once MaxResets retries
		// have already been spent
		if resets == s.cfg.MaxResets {
			log.Error().Int("resets", resets).Msg("reset budget exhausted; run infeasible")
			return domain.Infeasible{Resets: resets},
				perr.Infeasiblef("pairing infeasible for %s after %d resets", date, resets)
		}
		resets++
		log.Warn().Int("reset", resets).Msg("restoring snapshot and restarting selection")

		attendees = cloneSet(snapshot)
		injectHost(attendees, s.cfg.Host)
		if counts, err = s.hist.CountAll(ctx, setKeys(attendees)); err != nil {
			return nil, err
		}
	}

	log.Info().Int("pairs", len(pairs)).Int("resets", resets).
		Dur("elapsed", time.Since(start)).Msg("selection complete")

	if s.cfg.TestMode {
		log.Info().Msg("test mode; skipping history writes and csv")
		return domain.Success{CSVPath: domain.TestCSVPath, Pairs: pairs, Resets: resets}, nil
	}

	var persistErr error
	for _, p := range pairs {
		if err := s.hist.RecordPair(ctx, date, p.SE1, p.SE2); err != nil {
			log.Error().Err(err).Str("se1", p.SE1).Str("se2", p.SE2).Msg("history write failed")
			persistErr = perr.InfeasiblePersistf("history writes failed for %s: %v", date, err)
			break
		}
	}

	csvPath, err := s.writeCSV(ctx, date, pairs)
	if err != nil {
		return nil, err
	}

	log.Info().Str("csv", csvPath).Dur("elapsed", time.Since(start)).Msg("engine run complete")
	return domain.Success{CSVPath: csvPath, Pairs: pairs, Resets: resets}, persistErr
}

// resolveAndCount resolves the directory records and the match counts in
// parallel; the two share no mutable state
func (s *Service) resolveAndCount(
	ctx context.Context, attendees map[string]struct{},
) ([]dirdomain.SEInfo, map[string]int, error) {
	aliases := setKeys(attendees)

	var (
		infos  []dirdomain.SEInfo
		counts map[string]int
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		infos, err = s.dir.ResolveAll(gctx, aliases)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.hist.CountAll(gctx, aliases)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	logger.C(ctx).Info().Dur("elapsed", time.Since(start)).
		Int("resolved", len(infos)).Msg("directory resolution and frequency count complete")

	// resolution order is nondeterministic; pin it before bucketing
	sort.Slice(infos, func(i, j int) bool { return infos[i].Alias < infos[j].Alias })
	return infos, counts, nil
}

// buildState assembles one attempt's selector state
func (s *Service) buildState(
	ctx context.Context, attendees map[string]struct{},
	infos []dirdomain.SEInfo, counts map[string]int,
) (*selState, error) {
	semSet, err := s.dir.SEMSet(ctx, attendees)
	if err != nil {
		return nil, err
	}
	pct := percentile80(counts)

	// bucket only current attendees; infos covers the full snapshot
	kept := make([]dirdomain.SEInfo, 0, len(infos))
	for _, info := range infos {
		if _, ok := attendees[info.Alias]; ok {
			kept = append(kept, info)
			s.regionCache[info.Alias] = info.RegionIndex
		}
	}

	b := buildBuckets(kept)
	logger.C(ctx).Info().Int("percentile", pct).Int("regions", len(b)).
		Int("sem", len(semSet)).Msg("selector state built")

	return &selState{
		attendees: cloneSet(attendees),
		buckets:   b,
		counts:    counts,
		topSEs:    topSEs(counts, pct),
		semSet:    semSet,
		zeroSet:   b.setOf(0),
		vips:      map[string]struct{}{},
	}, nil
}

func cloneSet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func setKeys(in map[string]struct{}) []string {
	out := make([]string, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
