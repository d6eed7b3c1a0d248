package service

import (
	"context"
	"errors"
	"math"
	"sort"

	"fusepair/internal/platform/logger"
	"fusepair/internal/platform/timeutil"
	"fusepair/internal/services/pairing/domain"
)

// errKobayashi is the internal infeasibility signal consumed by the reset
// loop in Run. It never escapes the service
var errKobayashi = errors.New("kobayashi: infeasible selection state")

// seClass is SE1's tier, which picks the SE2 rule
type seClass int

const (
	classSE seClass = iota
	classVIP
	classSSEM
	classSEM
)

// selState is one attempt's mutable selection state. It is rebuilt from the
// snapshot on every reset
type selState struct {
	attendees map[string]struct{}
	buckets   buckets
	counts    map[string]int
	topSEs    map[string]struct{}
	semSet    map[string]struct{}
	zeroSet   map[string]struct{}
	vips      map[string]struct{}
	pairs     []domain.Pair
}

// selectPairs runs the selection loop until the buckets drain.
// Returns errKobayashi when the constraint graph dead-ends
func (s *Service) selectPairs(ctx context.Context, st *selState) error {
	log := logger.C(ctx)

	for {
		count := st.buckets.count()
		if count == 0 {
			return nil
		}

		rc := st.buckets.runningCount()
		priority, priorityN := priorityRegion(rc)
		log.Info().Int("remaining", count).Int("regions", len(rc)).
			Int("priority_region", priority).Int("priority_size", priorityN).
			Msg("selection iteration")

		prioritySelect := len(rc) > 2 && priorityN == count-priorityN
		if prioritySelect {
			log.Info().Int("region", priority).Msg("priority region holds half of everyone")
		}

		st.zeroSet = st.buckets.setOf(0)
		st.semSet = intersect(st.semSet, st.attendees)
		leaderPct := leaderShare(st)

		// feasibility gate: one region cannot pair with itself
		if len(rc) == 1 && count >= 1 {
			log.Warn().Int("region", rc[0].region).Int("remaining", count).
				Msg("remaining attendees share one region; triggering reset")
			return errKobayashi
		}

		rpm := s.candidateRegions(rc, st, count)

		se1, se1Region, err := s.selectSE1(st, rc, rpm, prioritySelect, priority, leaderPct, log)
		if err != nil {
			return err
		}
		class := s.classify(st, se1, se1Region)
		s.cleanup(st, se1, se1Region)

		rc = st.buckets.runningCount()
		rpm = s.candidateRegions(rc, st, count)

		se2, se2Region, err := s.selectSE2(ctx, st, rpm, se1Region, class)
		if err != nil {
			return err
		}

		se2, se2Region, err = s.repeatGuard(ctx, st, se1, se1Region, se2, se2Region)
		if err != nil {
			return err
		}

		s.classify(st, se2, se2Region)
		s.cleanup(st, se2, se2Region)

		st.pairs = append(st.pairs, domain.Pair{SE1: se1, SE2: se2})
		log.Info().Str("se1", se1).Str("se2", se2).
			Int("se1_region", se1Region).Int("se2_region", se2Region).
			Int("pairs", len(st.pairs)).Msg("pair committed")
	}
}

// candidateRegions applies the median padding rule only when more than ten
// attendees remain
func (s *Service) candidateRegions(rc []regionCount, st *selState, count int) []int {
	if count > 10 {
		return regionPlusMedian(rc, medianHigh(st.counts))
	}
	return regionKeys(rc)
}

// selectSE1 applies the SE1 rules in priority order:
// VIP-first, top-bias, leader-balance, priority-region, default
func (s *Service) selectSE1(
	st *selState, rc []regionCount, rpm []int,
	prioritySelect bool, priority int, leaderPct float64, log *logger.Logger,
) (string, int, error) {
	switch {
	case len(st.buckets[100].orEmpty()) > 0:
		se1 := s.pickSlice(st.buckets[100].aliases)
		log.Info().Str("se1", se1).Msg("se1 selected as vip from region 100")
		return se1, 100, nil

	case len(st.topSEs) > 0 && leaderPct <= 30:
		se1 := s.pickSet(st.topSEs)
		region, ok := st.buckets.regionOf(se1)
		if !ok {
			return "", 0, errKobayashi
		}
		log.Info().Str("se1", se1).Int("region", region).Msg("se1 selected from top ses")
		return se1, region, nil

	case leaderPct > 20:
		leaders := union(st.zeroSet, st.semSet)
		se1 := s.pickSet(leaders)
		region, ok := st.buckets.regionOf(se1)
		if !ok {
			return "", 0, errKobayashi
		}
		log.Info().Str("se1", se1).Int("region", region).
			Float64("leader_percent", leaderPct).Msg("high leader share; se1 selected from leaders")
		return se1, region, nil

	case prioritySelect:
		se1 := s.pickSlice(st.buckets[priority].aliases)
		log.Info().Str("se1", se1).Int("region", priority).Msg("se1 selected from priority region")
		return se1, priority, nil

	default:
		region := rpm[s.intn(len(rpm))]
		se1 := s.pickSlice(st.buckets[region].aliases)
		log.Info().Str("se1", se1).Int("region", region).Msg("se1 selected from candidate regions")
		return se1, region, nil
	}
}

// classify returns the tier of an SE and, for a VIP, snapshots the current
// VIP bucket so SE2 selection can exclude it
func (s *Service) classify(st *selState, se string, region int) seClass {
	switch {
	case region == 100:
		st.vips = st.buckets.setOf(100)
		return classVIP
	case contains(st.zeroSet, se):
		return classSSEM
	case contains(st.semSet, se):
		return classSEM
	default:
		return classSE
	}
}

// cleanup removes a committed SE from every auxiliary set and its bucket
func (s *Service) cleanup(st *selState, se string, region int) {
	st.buckets.remove(region, se)
	delete(st.semSet, se)
	delete(st.attendees, se)
	delete(st.topSEs, se)
	delete(st.vips, se)
	delete(st.zeroSet, se)
}

// selectSE2 applies the class-dependent SE2 rule
func (s *Service) selectSE2(
	ctx context.Context, st *selState, rpm []int, se1Region int, class seClass,
) (string, int, error) {
	log := logger.C(ctx)

	switch class {
	case classVIP:
		pool := subtract(st.attendees, st.semSet, st.zeroSet, st.vips)
		if len(pool) == 0 {
			log.Warn().Msg("no se2 candidates outside leadership for vip se1")
			return "", 0, errKobayashi
		}
		se2 := s.pickSet(pool)
		region, err := s.lookupRegion(ctx, se2)
		if err != nil {
			return "", 0, err
		}
		return se2, region, nil

	case classSSEM, classSEM:
		pool := subtract(st.attendees, st.semSet, st.zeroSet)
		if len(pool) == 0 {
			log.Warn().Msg("no se2 candidates outside leadership for leader se1")
			return "", 0, errKobayashi
		}
		se2 := s.pickSet(pool)
		region, err := s.lookupRegion(ctx, se2)
		if err != nil {
			return "", 0, err
		}
		return se2, region, nil

	default:
		var regions []int
		for _, r := range rpm {
			if r != se1Region {
				regions = append(regions, r)
			}
		}
		if len(regions) == 0 {
			log.Warn().Int("se1_region", se1Region).Msg("no cross-region se2 candidates")
			return "", 0, errKobayashi
		}
		region := regions[s.intn(len(regions))]
		se2 := s.pickSlice(st.buckets[region].aliases)
		return se2, region, nil
	}
}

// repeatGuard rejects a tentative pair the history store has seen before.
// With only one candidate left the waterline decides; otherwise a new SE2 is
// drawn from the SEs SE1 has never met, rejecting same-region picks and
// leadership/VIP cross-assignment in either direction
func (s *Service) repeatGuard(
	ctx context.Context, st *selState, se1 string, se1Region int, se2 string, se2Region int,
) (string, int, error) {
	log := logger.C(ctx)

	se2Asg, err := s.hist.Assignments(ctx, se2)
	if err != nil {
		return "", 0, err
	}
	if !hasPartner(se2Asg, se1) {
		return se2, se2Region, nil
	}
	log.Info().Str("se1", se1).Str("se2", se2).Msg("pair seen before")

	if len(st.attendees) == 1 {
		ok, err := s.waterlineAdmits(ctx, se1, se2)
		if err != nil {
			return "", 0, err
		}
		if !ok {
			log.Warn().Str("se1", se1).Str("se2", se2).Msg("repeat pair inside waterline; triggering reset")
			return "", 0, errKobayashi
		}
		log.Info().Str("se1", se1).Str("se2", se2).Msg("repeat pair older than waterline; accepted")
		return se2, se2Region, nil
	}

	se1Asg, err := s.hist.Assignments(ctx, se1)
	if err != nil {
		return "", 0, err
	}
	matchables := make([]string, 0, len(st.attendees))
	for a := range st.attendees {
		if !hasPartner(se1Asg, a) {
			matchables = append(matchables, a)
		}
	}
	sort.Strings(matchables)
	log.Info().Int("matchables", len(matchables)).Str("se1", se1).Msg("drawing replacement se2")

	for len(matchables) > 0 {
		i := s.intn(len(matchables))
		cand := matchables[i]
		matchables = append(matchables[:i], matchables[i+1:]...)

		region, err := s.lookupRegion(ctx, cand)
		if err != nil {
			return "", 0, err
		}
		if region == se1Region || crossLeadershipVIP(se1Region, region) {
			continue
		}
		return cand, region, nil
	}
	log.Warn().Str("se1", se1).Msg("no replacement se2; triggering reset")
	return "", 0, errKobayashi
}

// crossLeadershipVIP rejects pairing the VIP bucket with senior leadership
// in either direction
func crossLeadershipVIP(a, b int) bool {
	return (a == 100 && b == 0) || (a == 0 && b == 100)
}

// waterlineAdmits reports whether the most recent prior pairing of se1 and
// se2 is strictly older than one year ago
func (s *Service) waterlineAdmits(ctx context.Context, se1, se2 string) (bool, error) {
	asg, err := s.hist.Assignments(ctx, se1)
	if err != nil {
		return false, err
	}
	var last string
	for date, partner := range asg {
		if partner == se2 && date > last {
			last = date
		}
	}
	if last == "" {
		return true, nil
	}
	lastDate, err := timeutil.ParseSessionDate(last)
	if err != nil {
		return false, err
	}
	return lastDate.Before(timeutil.Waterline(s.today())), nil
}

// lookupRegion resolves an SE's region index with a per-run cache
func (s *Service) lookupRegion(ctx context.Context, alias string) (int, error) {
	if idx, ok := s.regionCache[alias]; ok {
		return idx, nil
	}
	info, err := s.dir.Lookup(ctx, alias)
	if err != nil {
		return 0, err
	}
	idx := info.RegionIndex
	if idx < 0 {
		idx, err = s.dir.RegionIndex(ctx, info.Region)
		if err != nil {
			return 0, err
		}
	}
	s.regionCache[alias] = idx
	return idx, nil
}

// random picks consult the injected source; set picks sort first so a fixed
// seed yields a fixed run

func (s *Service) intn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}

func (s *Service) pickSlice(xs []string) string {
	return xs[s.intn(len(xs))]
}

func (s *Service) pickSet(set map[string]struct{}) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[s.intn(len(keys))]
}

// leaderShare is the leadership percentage of the remaining attendees
func leaderShare(st *selState) float64 {
	if len(st.attendees) == 0 {
		return 0
	}
	pct := float64(len(st.zeroSet)+len(st.semSet)) / float64(len(st.attendees)) * 100
	return math.Round(pct*100) / 100
}

// set helpers

func hasPartner(asg map[string]string, alias string) bool {
	for _, p := range asg {
		if p == alias {
			return true
		}
	}
	return false
}

func contains(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := map[string]struct{}{}
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func subtract(a map[string]struct{}, subs ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a))
next:
	for k := range a {
		for _, sub := range subs {
			if _, ok := sub[k]; ok {
				continue next
			}
		}
		out[k] = struct{}{}
	}
	return out
}

// orEmpty lets bucket lookups read cleanly when the region is absent
func (rb *bucket) orEmpty() []string {
	if rb == nil {
		return nil
	}
	return rb.aliases
}
