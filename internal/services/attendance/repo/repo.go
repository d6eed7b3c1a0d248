// Package repo provides Postgres bindings for the attendance domain.Repo
package repo

import (
	"context"

	"fusepair/internal/modkit/repokit"
	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/timeutil"
	"fusepair/internal/services/attendance/domain"

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

// Replace swaps the date's attendance record for the given parse.
// The single row per (date, alias) key keeps the four sets disjoint
func (r *queries) Replace(ctx context.Context, date string, statuses map[string]domain.Status) error {
	d, err := timeutil.ParseSessionDate(date)
	if err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM prematch WHERE session_date = $1`, d); err != nil {
		return perr.FromPostgres(err, "prematch clear")
	}
	for alias, st := range statuses {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO prematch (session_date, alias, status)
			VALUES ($1, $2, $3)
			ON CONFLICT (session_date, alias) DO UPDATE SET status = EXCLUDED.status
		`, d, alias, string(st)); err != nil {
			return perr.FromPostgres(err, "prematch insert")
		}
	}
	return nil
}

// Statuses returns alias -> status for the date's record
func (r *queries) Statuses(ctx context.Context, date string) (map[string]domain.Status, error) {
	d, err := timeutil.ParseSessionDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `
		SELECT alias, status FROM prematch WHERE session_date = $1
	`, d)
	if err != nil {
		return nil, perr.FromPostgres(err, "prematch statuses")
	}
	defer rows.Close()
	out := map[string]domain.Status{}
	for rows.Next() {
		var alias, st string
		if err := rows.Scan(&alias, &st); err != nil {
			return nil, perr.FromPostgres(err, "prematch statuses scan")
		}
		out[alias] = domain.Status(st)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "prematch statuses rows")
	}
	return out, nil
}

// LatestSessionDate returns the most recently recorded session date
func (r *queries) LatestSessionDate(ctx context.Context) (string, error) {
	var date string
	err := r.q.QueryRow(ctx, `
		SELECT to_char(session_date, 'YYYY-MM-DD')
		FROM session_dates
		ORDER BY created_at DESC, session_date DESC
		LIMIT 1
	`).Scan(&date)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", perr.NotFoundf("no session date set")
		}
		return "", perr.FromPostgres(err, "latest session date")
	}
	return date, nil
}

// UpsertSessionDate records date as the current session date
func (r *queries) UpsertSessionDate(ctx context.Context, date string) error {
	d, err := timeutil.ParseSessionDate(date)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO session_dates (session_date, created_at)
		VALUES ($1, now())
		ON CONFLICT (session_date) DO UPDATE SET created_at = now()
	`, d)
	if err != nil {
		return perr.FromPostgres(err, "upsert session date")
	}
	return nil
}
