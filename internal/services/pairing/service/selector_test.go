package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dirdomain "fusepair/internal/services/directory/domain"
)

func TestPercentile80(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, percentile80(nil))
	require.Equal(t, 10, percentile80(map[string]int{"a": 10}))

	// [0 1 2 3 4]: rank 3.2 interpolates to 3.2, rounds to 3
	counts := map[string]int{"a": 0, "b": 1, "c": 2, "d": 3, "e": 4}
	require.Equal(t, 3, percentile80(counts))

	// [1 1 8]: rank 1.6 interpolates to 1 + 0.6*7 = 5.2, rounds to 5
	counts = map[string]int{"a": 1, "b": 1, "c": 8}
	require.Equal(t, 5, percentile80(counts))
}

func TestTopSEs_StrictlyAbovePercentile(t *testing.T) {
	t.Parallel()

	counts := map[string]int{"a": 2, "b": 3, "c": 5}
	got := topSEs(counts, 3)
	require.Equal(t, map[string]struct{}{"c": {}}, got, "equal to the percentile is not above it")
}

func TestMedianHigh(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, medianHigh(nil))
	require.Equal(t, 3, medianHigh(map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}))
	require.Equal(t, 2, medianHigh(map[string]int{"a": 1, "b": 2, "c": 3}))
}

func TestRegionPlusMedian_PadsBusyRegionsTwice(t *testing.T) {
	t.Parallel()

	rc := []regionCount{{region: 2, n: 5}, {region: 3, n: 1}, {region: 4, n: 3}}
	// median 1: only region 2 exceeds median+2, so it is listed twice
	require.Equal(t, []int{2, 3, 4, 2}, regionPlusMedian(rc, 1))
}

func TestRegionPlusMedian_FallsBackToAtLeastMedian(t *testing.T) {
	t.Parallel()

	rc := []regionCount{{region: 2, n: 3}, {region: 3, n: 1}}
	// median 2: nothing exceeds median+2; regions at or above median pad in
	require.Equal(t, []int{2, 3, 2}, regionPlusMedian(rc, 2))
}

func TestPriorityRegion_TieBreaksLowestIndex(t *testing.T) {
	t.Parallel()

	rc := []regionCount{{region: 2, n: 3}, {region: 5, n: 3}, {region: 7, n: 1}}
	region, n := priorityRegion(rc)
	require.Equal(t, 2, region)
	require.Equal(t, 3, n)
}

func TestBuckets_RemoveDeletesEmptied(t *testing.T) {
	t.Parallel()

	b := buildBuckets([]dirdomain.SEInfo{
		se(1, "a", "A", "East", 2, false),
		se(2, "b", "B", "East", 2, false),
		se(3, "c", "C", "West", 3, false),
	})
	require.Equal(t, 3, b.count())

	b.remove(3, "c")
	_, ok := b[3]
	require.False(t, ok, "emptied bucket must be dropped")
	require.Equal(t, 2, b.count())

	region, found := b.regionOf("a")
	require.True(t, found)
	require.Equal(t, 2, region)

	_, found = b.regionOf("c")
	require.False(t, found)
}

func TestBuckets_RunningCountSortedByRegion(t *testing.T) {
	t.Parallel()

	b := buildBuckets([]dirdomain.SEInfo{
		se(1, "w", "W", "West", 3, false),
		se(2, "e", "E", "East", 2, false),
		se(3, "v", "V", "VIP", 100, false),
	})
	rc := b.runningCount()
	require.Equal(t, []regionCount{
		{region: 2, n: 1}, {region: 3, n: 1}, {region: 100, n: 1},
	}, rc)
}

func TestInjectHost(t *testing.T) {
	t.Parallel()

	even := map[string]struct{}{"a": {}, "b": {}}
	require.False(t, injectHost(even, "h"))
	require.Len(t, even, 2)

	odd := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	require.True(t, injectHost(odd, "h"))
	require.Len(t, odd, 4)
	_, ok := odd["h"]
	require.True(t, ok)
}

func TestCrossLeadershipVIP(t *testing.T) {
	t.Parallel()

	require.True(t, crossLeadershipVIP(100, 0))
	require.True(t, crossLeadershipVIP(0, 100))
	require.False(t, crossLeadershipVIP(100, 2))
	require.False(t, crossLeadershipVIP(0, 0))
}

func TestLeaderShare_RoundsTwoPlaces(t *testing.T) {
	t.Parallel()

	st := &selState{
		attendees: map[string]struct{}{"a": {}, "b": {}, "c": {}},
		zeroSet:   map[string]struct{}{"a": {}},
		semSet:    map[string]struct{}{},
	}
	require.InDelta(t, 33.33, leaderShare(st), 0.001)

	st.attendees = map[string]struct{}{}
	require.Zero(t, leaderShare(st))
}

func TestWaterlineAdmits(t *testing.T) {
	t.Parallel()

	dir := newMemDirectory(
		se(1, "a", "A", "East", 2, false),
		se(2, "b", "B", "West", 3, false),
	)
	hist := newMemHistory()
	att := newMemAttendance(runDate, "a", "b")
	eng := newEngine(dir, hist, att, Config{Host: "h", TestMode: true}, 1)
	ctx := context.Background()

	ok, err := eng.waterlineAdmits(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, ok, "no prior pairing always admits")

	hist.seedPair("2024-05-01", "a", "b")
	ok, err = eng.waterlineAdmits(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, ok, "pairing older than a year admits")

	hist.seedPair("2026-02-01", "a", "b")
	ok, err = eng.waterlineAdmits(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, ok, "the most recent pairing governs")

	// exactly one year ago is not strictly older than the waterline
	hist2 := newMemHistory()
	hist2.seedPair("2025-08-24", "a", "b")
	eng2 := newEngine(dir, hist2, att, Config{Host: "h", TestMode: true}, 1)
	ok, err = eng2.waterlineAdmits(ctx, "a", "b")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPickSet_SortsBeforeDrawing(t *testing.T) {
	t.Parallel()

	dir := newMemDirectory()
	eng := newEngine(dir, newMemHistory(), newMemAttendance(runDate), Config{Host: "h", TestMode: true}, 9)

	set := map[string]struct{}{"zz": {}, "aa": {}, "mm": {}}
	want := eng.pickSet(set)

	// a second engine with the same seed must draw the same element
	eng2 := New(dir, newMemHistory(), newMemAttendance(runDate), Config{Host: "h", TestMode: true},
		rand.New(rand.NewSource(9))).WithToday(func() time.Time { return fixedToday() })
	require.Equal(t, want, eng2.pickSet(set))
}
