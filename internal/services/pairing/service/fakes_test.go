package service

import (
	"context"
	"io"
	"sync"

	perr "fusepair/internal/platform/errors"
	attdomain "fusepair/internal/services/attendance/domain"
	dirdomain "fusepair/internal/services/directory/domain"
)

// memDirectory is an in-memory DirectoryPort
type memDirectory struct {
	mu      sync.Mutex
	infos   map[string]dirdomain.SEInfo
	regions map[string]int
	sems    map[string]struct{}
}

func newMemDirectory(infos ...dirdomain.SEInfo) *memDirectory {
	d := &memDirectory{
		infos:   map[string]dirdomain.SEInfo{},
		regions: map[string]int{},
		sems:    map[string]struct{}{},
	}
	for _, in := range infos {
		d.infos[in.Alias] = in
		d.regions[in.Region] = in.RegionIndex
		if in.SEM {
			d.sems[in.Alias] = struct{}{}
		}
	}
	return d
}

func (d *memDirectory) Lookup(_ context.Context, alias string) (dirdomain.SEInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.infos[alias]
	if !ok {
		return dirdomain.SEInfo{}, perr.NotFoundf("se %s not found", alias)
	}
	return rec, nil
}

func (d *memDirectory) RegisterUnknown(_ context.Context, alias, displayName string) (dirdomain.SEInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if displayName == "" {
		displayName = "Unknown name"
	}
	max := 0
	for _, r := range d.infos {
		if r.Index > max {
			max = r.Index
		}
	}
	rec := dirdomain.SEInfo{
		Index:       max + 1,
		Alias:       alias,
		Name:        displayName,
		Region:      dirdomain.VIPRegion,
		RegionIndex: dirdomain.VIPRegionIndex,
		Role:        dirdomain.VIPRegion,
	}
	d.infos[alias] = rec
	return rec, nil
}

func (d *memDirectory) RegionIndex(_ context.Context, regionName string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.regions[regionName]
	if !ok {
		return 0, perr.NotFoundf("region %s not found", regionName)
	}
	return idx, nil
}

func (d *memDirectory) ResolveAll(ctx context.Context, aliases []string) ([]dirdomain.SEInfo, error) {
	out := make([]dirdomain.SEInfo, 0, len(aliases))
	for _, a := range aliases {
		rec, err := d.Lookup(ctx, a)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			rec, err = d.RegisterUnknown(ctx, a, "")
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (d *memDirectory) NamesByAliases(_ context.Context, aliases []string) (map[string]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]string{}
	for _, a := range aliases {
		if rec, ok := d.infos[a]; ok {
			out[a] = rec.Name
		}
	}
	return out, nil
}

func (d *memDirectory) SEMSet(_ context.Context, among map[string]struct{}) (map[string]struct{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]struct{}{}
	for a := range d.sems {
		if _, ok := among[a]; ok {
			out[a] = struct{}{}
		}
	}
	return out, nil
}

// memHistory is an in-memory HistoryPort keyed alias -> date -> partner
type memHistory struct {
	mu      sync.Mutex
	byAlias map[string]map[string]string
}

func newMemHistory() *memHistory {
	return &memHistory{byAlias: map[string]map[string]string{}}
}

// seedPair records both directions without going through RecordPair
func (h *memHistory) seedPair(date, a, b string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.put(a, date, b)
	h.put(b, date, a)
}

func (h *memHistory) put(alias, date, partner string) {
	if h.byAlias[alias] == nil {
		h.byAlias[alias] = map[string]string{}
	}
	h.byAlias[alias][date] = partner
}

func (h *memHistory) Assignments(_ context.Context, alias string) (map[string]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]string{}
	for d, p := range h.byAlias[alias] {
		out[d] = p
	}
	return out, nil
}

func (h *memHistory) RecordPair(_ context.Context, date, a, b string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.put(a, date, b)
	h.put(b, date, a)
	return nil
}

func (h *memHistory) MatchCount(_ context.Context, alias string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byAlias[alias]), nil
}

func (h *memHistory) CountAll(_ context.Context, aliases []string) (map[string]int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]int{}
	for _, a := range aliases {
		out[a] = len(h.byAlias[a])
	}
	return out, nil
}

// countingHistory tallies CountAll calls; the engine counts once up front
// and once per snapshot restoration
type countingHistory struct {
	*memHistory
	countAllCalls int
}

func (h *countingHistory) CountAll(ctx context.Context, aliases []string) (map[string]int, error) {
	h.mu.Lock()
	h.countAllCalls++
	h.mu.Unlock()
	return h.memHistory.CountAll(ctx, aliases)
}

// failingHistory rejects every RecordPair
type failingHistory struct {
	*memHistory
}

func (h *failingHistory) RecordPair(context.Context, string, string, string) error {
	return perr.DBf("history write rejected")
}

// memAttendance serves a fixed effective set per date
type memAttendance struct {
	eff map[string]map[string]struct{}
}

func newMemAttendance(date string, aliases ...string) *memAttendance {
	set := map[string]struct{}{}
	for _, a := range aliases {
		set[a] = struct{}{}
	}
	return &memAttendance{eff: map[string]map[string]struct{}{date: set}}
}

func (m *memAttendance) Intake(context.Context, string, io.Reader) (attdomain.Summary, error) {
	return attdomain.Summary{}, nil
}

func (m *memAttendance) Record(_ context.Context, date string) (attdomain.Record, error) {
	rec := attdomain.NewRecord()
	for a := range m.eff[date] {
		rec.Accepted[a] = struct{}{}
	}
	return rec, nil
}

func (m *memAttendance) EffectiveSet(_ context.Context, date string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for a := range m.eff[date] {
		out[a] = struct{}{}
	}
	return out, nil
}

func (m *memAttendance) SessionDate(context.Context) (string, error) {
	return "", perr.NotFoundf("no session date set")
}

func (m *memAttendance) SetSessionDate(context.Context, string) error { return nil }
