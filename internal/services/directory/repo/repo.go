// Package repo provides Postgres bindings for the directory domain.Repo
package repo

import (
	"context"

	"fusepair/internal/modkit/repokit"
	perr "fusepair/internal/platform/errors"
	"fusepair/internal/services/directory/domain"

	"github.com/jackc/pgx/v5"
)

type (
	// PG is a Postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// Compile-time assertion: queries implements domain.Repo
var _ domain.Repo = (*queries)(nil)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// Get returns the directory record for alias joined with its region index
func (r *queries) Get(ctx context.Context, alias string) (domain.SEInfo, error) {
	var rec domain.SEInfo
	err := r.q.QueryRow(ctx, `
		SELECT s.se_idx, s.alias, s.name, s.region, COALESCE(g.idx, -1), s.role, s.sem
		FROM ses s
		LEFT JOIN regions g ON g.name = s.region
		WHERE s.alias = $1
	`, alias).Scan(&rec.Index, &rec.Alias, &rec.Name, &rec.Region, &rec.RegionIndex, &rec.Role, &rec.SEM)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.SEInfo{}, perr.NotFoundf("se %q not in directory", alias)
		}
		return domain.SEInfo{}, perr.FromPostgres(err, "directory get")
	}
	return rec, nil
}

// Insert adds a new directory record; duplicate aliases conflict
func (r *queries) Insert(ctx context.Context, rec domain.SEInfo) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ses (se_idx, alias, name, region, role, sem)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (alias) DO NOTHING
	`, rec.Index, rec.Alias, rec.Name, rec.Region, rec.Role, rec.SEM)
	if err != nil {
		return perr.FromPostgres(err, "directory insert")
	}
	return nil
}

// MaxIndex returns the highest assigned se_idx and whether any rows exist
func (r *queries) MaxIndex(ctx context.Context) (int, bool, error) {
	var max *int
	if err := r.q.QueryRow(ctx, `SELECT MAX(se_idx) FROM ses`).Scan(&max); err != nil {
		return 0, false, perr.FromPostgres(err, "directory max index")
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// RegionIndex maps a region name to its index
func (r *queries) RegionIndex(ctx context.Context, regionName string) (int, error) {
	var idx int
	err := r.q.QueryRow(ctx, `SELECT idx FROM regions WHERE name = $1`, regionName).Scan(&idx)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, perr.NotFoundf("region %q not in directory", regionName)
		}
		return 0, perr.FromPostgres(err, "region index")
	}
	return idx, nil
}

// NamesByAliases returns alias -> display name for the given aliases
func (r *queries) NamesByAliases(ctx context.Context, aliases []string) (map[string]string, error) {
	out := make(map[string]string, len(aliases))
	if len(aliases) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT alias, name FROM ses WHERE alias = ANY($1::text[])
	`, aliases)
	if err != nil {
		return nil, perr.FromPostgres(err, "names by aliases")
	}
	defer rows.Close()
	for rows.Next() {
		var alias, name string
		if err := rows.Scan(&alias, &name); err != nil {
			return nil, perr.FromPostgres(err, "names by aliases scan")
		}
		out[alias] = name
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "names by aliases rows")
	}
	return out, nil
}

// SEMAliases returns every alias flagged sem
func (r *queries) SEMAliases(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT alias FROM ses WHERE sem`)
	if err != nil {
		return nil, perr.FromPostgres(err, "sem aliases")
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, perr.FromPostgres(err, "sem aliases scan")
		}
		out = append(out, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "sem aliases rows")
	}
	return out, nil
}
