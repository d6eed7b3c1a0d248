// Package repo provides Postgres bindings for the history domain.Repo
package repo

import (
	"context"

	"fusepair/internal/modkit/repokit"
	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/timeutil"
	"fusepair/internal/services/history/domain"
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

// Assignments returns date -> partner for alias, canonical date keys
func (r *queries) Assignments(ctx context.Context, alias string) (map[string]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT to_char(session_date, 'YYYY-MM-DD'), partner
		FROM matches WHERE alias = $1
	`, alias)
	if err != nil {
		return nil, perr.FromPostgres(err, "history assignments")
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var date, partner string
		if err := rows.Scan(&date, &partner); err != nil {
			return nil, perr.FromPostgres(err, "history assignments scan")
		}
		out[date] = partner
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "history assignments rows")
	}
	return out, nil
}

// Upsert sets alias's partner for date, replacing any prior value
func (r *queries) Upsert(ctx context.Context, alias, date, partner string) error {
	d, err := timeutil.ParseSessionDate(date)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO matches (alias, session_date, partner)
		VALUES ($1, $2, $3)
		ON CONFLICT (alias, session_date) DO UPDATE SET partner = EXCLUDED.partner
	`, alias, d, partner)
	if err != nil {
		return perr.FromPostgres(err, "history upsert")
	}
	return nil
}

// MatchCount returns the number of recorded assignments for alias
func (r *queries) MatchCount(ctx context.Context, alias string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM matches WHERE alias = $1
	`, alias).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "history match count")
	}
	return n, nil
}

// CountAll returns match counts for every given alias; absent aliases count 0
func (r *queries) CountAll(ctx context.Context, aliases []string) (map[string]int, error) {
	out := make(map[string]int, len(aliases))
	for _, a := range aliases {
		out[a] = 0
	}
	if len(aliases) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT alias, COUNT(*) FROM matches
		WHERE alias = ANY($1::text[])
		GROUP BY alias
	`, aliases)
	if err != nil {
		return nil, perr.FromPostgres(err, "history count all")
	}
	defer rows.Close()
	for rows.Next() {
		var alias string
		var n int
		if err := rows.Scan(&alias, &n); err != nil {
			return nil, perr.FromPostgres(err, "history count all scan")
		}
		out[alias] = n
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "history count all rows")
	}
	return out, nil
}
