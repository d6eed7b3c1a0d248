package service

import (
	"math"
	"sort"
)

// percentile80 returns the rounded 80th percentile of the match counts,
// linear interpolation between closest ranks
func percentile80(counts map[string]int) int {
	if len(counts) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(counts))
	for _, v := range counts {
		vals = append(vals, float64(v))
	}
	sort.Float64s(vals)
	rank := float64(len(vals)-1) * 0.8
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	v := vals[lo]
	if hi > lo {
		v += (rank - float64(lo)) * (vals[hi] - vals[lo])
	}
	return int(math.Round(v))
}

// topSEs returns the attendees whose match count exceeds the percentile
func topSEs(counts map[string]int, percentile int) map[string]struct{} {
	out := map[string]struct{}{}
	for alias, n := range counts {
		if n > percentile {
			out[alias] = struct{}{}
		}
	}
	return out
}

// medianHigh returns the high median of the match counts
func medianHigh(counts map[string]int) int {
	if len(counts) == 0 {
		return 0
	}
	vals := make([]int, 0, len(counts))
	for _, v := range counts {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	return vals[len(vals)/2]
}

// regionPlusMedian builds the SE1/SE2 candidate region list: every non-empty
// region once, plus a second entry for each region padded in by the median
// rule. Padded regions are deliberately listed twice so a uniform pick
// weights toward them
func regionPlusMedian(rc []regionCount, median int) []int {
	var pad []int
	for _, e := range rc {
		if e.n > median+2 {
			pad = append(pad, e.region)
		}
	}
	if len(pad) == 0 {
		for _, e := range rc {
			if e.n >= median {
				pad = append(pad, e.region)
			}
		}
	}
	out := make([]int, 0, len(rc)+len(pad))
	for _, e := range rc {
		out = append(out, e.region)
	}
	return append(out, pad...)
}

// regionKeys returns just the non-empty region indexes
func regionKeys(rc []regionCount) []int {
	out := make([]int, 0, len(rc))
	for _, e := range rc {
		out = append(out, e.region)
	}
	return out
}
