//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// localPostgres stays inside this package (testkit imports store, so the
// shared helper cannot be used here). Returns a ready DSN
func localPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mp, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
}

func openAdapter(t *testing.T, dsn string, logSQL bool) *pgAdapter {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	s := &Store{Log: zerolog.New(io.Discard)}
	txr, err := openPG(ctx, Config{PG: PGConfig{URL: dsn, MaxConns: 2, LogSQL: logSQL}}, s)
	require.NoError(t, err, "openPG")

	a, ok := txr.(*pgAdapter)
	require.True(t, ok, "openPG returned %T, want *pgAdapter", txr)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSQLAdapter_Integration_ExecQueryColumnsClose(t *testing.T) {
	a := openAdapter(t, localPostgres(t), true) // LogSQL on to exercise the tracer path
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	_, err := a.Exec(ctx, `
		CREATE TEMP TABLE matches_t (
			alias        TEXT NOT NULL,
			session_date DATE NOT NULL,
			partner      TEXT NOT NULL,
			PRIMARY KEY (alias, session_date)
		)
	`)
	require.NoError(t, err)

	_, err = a.Exec(ctx, `
		INSERT INTO matches_t (alias, session_date, partner)
		VALUES ($1, '2026-08-24', $2), ($2, '2026-08-24', $1)
	`, "asmith", "bjones")
	require.NoError(t, err)

	var partner string
	require.NoError(t, a.QueryRow(ctx,
		`SELECT partner FROM matches_t WHERE alias=$1 AND session_date='2026-08-24'`,
		"asmith").Scan(&partner))
	require.Equal(t, "bjones", partner)

	rs, err := a.Query(ctx, `SELECT alias, partner FROM matches_t ORDER BY alias`)
	require.NoError(t, err)
	defer rs.Close()

	require.Equal(t, []string{"alias", "partner"}, rs.Columns())

	var aliases, partners []string
	for rs.Next() {
		var alias, p string
		require.NoError(t, rs.Scan(&alias, &p))
		aliases = append(aliases, alias)
		partners = append(partners, p)
	}
	require.NoError(t, rs.Err())
	require.Equal(t, []string{"asmith", "bjones"}, aliases)
	require.Equal(t, []string{"bjones", "asmith"}, partners)

	// Close is idempotent
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}

func TestSQLAdapter_Integration_TxCommitAndRollback(t *testing.T) {
	a := openAdapter(t, localPostgres(t), false)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	_, err := a.Exec(ctx, `
		CREATE TEMP TABLE prematch_tx (
			session_date DATE NOT NULL,
			alias        TEXT NOT NULL,
			status       TEXT NOT NULL,
			PRIMARY KEY (session_date, alias)
		)
	`)
	require.NoError(t, err)

	require.NoError(t, a.Tx(ctx, func(q RowQuerier) error {
		_, err := q.Exec(ctx,
			`INSERT INTO prematch_tx (session_date, alias, status) VALUES ('2026-08-24', 'asmith', 'accepted')`)
		return err
	}))

	var count int
	require.NoError(t, a.QueryRow(ctx,
		`SELECT COUNT(*) FROM prematch_tx WHERE alias='asmith'`).Scan(&count))
	require.Equal(t, 1, count, "committed row must be visible")

	// an error from fn must roll the whole tx back
	errAbort := errors.New("abort")
	err = a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx,
			`INSERT INTO prematch_tx (session_date, alias, status) VALUES ('2026-08-24', 'bjones', 'declined')`); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	require.NoError(t, a.QueryRow(ctx,
		`SELECT COUNT(*) FROM prematch_tx WHERE alias='bjones'`).Scan(&count))
	require.Zero(t, count, "rolled back row must not be visible")
}
