package domain

import "context"

// StorePort is the directory surface the pairing engine consumes
type StorePort interface {
	// Lookup returns the record for alias or a NotFound error
	Lookup(ctx context.Context, alias string) (SEInfo, error)

	// RegisterUnknown provisions a new record for an alias missing from the
	// directory, assigning the next stable index and the VIP defaults
	RegisterUnknown(ctx context.Context, alias, displayName string) (SEInfo, error)

	// RegionIndex maps a region name to its index
	RegionIndex(ctx context.Context, regionName string) (int, error)

	// ResolveAll resolves every alias, auto-provisioning unknowns.
	// The result is unordered
	ResolveAll(ctx context.Context, aliases []string) ([]SEInfo, error)

	// NamesByAliases returns display names for the given aliases in one read
	NamesByAliases(ctx context.Context, aliases []string) (map[string]string, error)

	// SEMSet returns the aliases flagged as SEM, filtered to the given set
	SEMSet(ctx context.Context, among map[string]struct{}) (map[string]struct{}, error)
}

// Repo is the raw storage surface bound per Queryer
type Repo interface {
	Get(ctx context.Context, alias string) (SEInfo, error)
	Insert(ctx context.Context, rec SEInfo) error
	MaxIndex(ctx context.Context) (int, bool, error)
	RegionIndex(ctx context.Context, regionName string) (int, error)
	NamesByAliases(ctx context.Context, aliases []string) (map[string]string, error)
	SEMAliases(ctx context.Context) ([]string, error)
}
