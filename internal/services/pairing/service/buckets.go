package service

import (
	"sort"

	dirdomain "fusepair/internal/services/directory/domain"
)

// bucket holds the unassigned attendees of one region
type bucket struct {
	name    string
	aliases []string
}

// buckets maps region index -> bucket. Empty buckets are removed,
// so the key set is always the set of non-empty regions
type buckets map[int]*bucket

// buildBuckets partitions resolved attendees by region index.
// infos must be in a deterministic order so bucket lists are stable
func buildBuckets(infos []dirdomain.SEInfo) buckets {
	b := buckets{}
	for _, info := range infos {
		rb, ok := b[info.RegionIndex]
		if !ok {
			rb = &bucket{name: info.Region}
			b[info.RegionIndex] = rb
		}
		rb.aliases = append(rb.aliases, info.Alias)
	}
	return b
}

// count returns the number of unassigned attendees across all buckets
func (b buckets) count() int {
	n := 0
	for _, rb := range b {
		n += len(rb.aliases)
	}
	return n
}

// regionCount is one row of the running count, key-sorted by region index
type regionCount struct {
	region int
	n      int
}

// runningCount returns per-region sizes sorted by region index
func (b buckets) runningCount() []regionCount {
	out := make([]regionCount, 0, len(b))
	for r, rb := range b {
		if len(rb.aliases) > 0 {
			out = append(out, regionCount{region: r, n: len(rb.aliases)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].region < out[j].region })
	return out
}

// priorityRegion returns the region with the most unassigned attendees;
// ties break toward the lowest region index
func priorityRegion(rc []regionCount) (int, int) {
	best := rc[0]
	for _, e := range rc[1:] {
		if e.n > best.n {
			best = e
		}
	}
	return best.region, best.n
}

// remove drops alias from its region bucket, deleting the bucket when emptied
func (b buckets) remove(region int, alias string) {
	rb, ok := b[region]
	if !ok {
		return
	}
	for i, a := range rb.aliases {
		if a == alias {
			rb.aliases = append(rb.aliases[:i], rb.aliases[i+1:]...)
			break
		}
	}
	if len(rb.aliases) == 0 {
		delete(b, region)
	}
}

// regionOf finds the region currently holding alias
func (b buckets) regionOf(alias string) (int, bool) {
	for r, rb := range b {
		for _, a := range rb.aliases {
			if a == alias {
				return r, true
			}
		}
	}
	return 0, false
}

// setOf returns the alias set of one region bucket
func (b buckets) setOf(region int) map[string]struct{} {
	out := map[string]struct{}{}
	if rb, ok := b[region]; ok {
		for _, a := range rb.aliases {
			out[a] = struct{}{}
		}
	}
	return out
}
