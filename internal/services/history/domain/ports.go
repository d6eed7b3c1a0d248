// Package domain defines match-history types and ports
package domain

import "context"

// StorePort is the history surface the pairing engine consumes.
// Assignment keys are canonical session dates (YYYY-MM-DD)
type StorePort interface {
	// Assignments returns date -> partner for alias. A fresh alias yields an
	// empty map, not an error
	Assignments(ctx context.Context, alias string) (map[string]string, error)

	// RecordPair upserts date -> b under a and date -> a under b.
	// The two writes are independent; symmetry is repaired on the next write
	RecordPair(ctx context.Context, date, a, b string) error

	// MatchCount returns the size of alias's assignment map
	MatchCount(ctx context.Context, alias string) (int, error)

	// CountAll returns match counts for every given alias in one read.
	// Aliases with no history are present with count 0
	CountAll(ctx context.Context, aliases []string) (map[string]int, error)
}

// Repo is the raw storage surface bound per Queryer
type Repo interface {
	Assignments(ctx context.Context, alias string) (map[string]string, error)
	Upsert(ctx context.Context, alias, date, partner string) error
	MatchCount(ctx context.Context, alias string) (int, error)
	CountAll(ctx context.Context, aliases []string) (map[string]int, error)
}
