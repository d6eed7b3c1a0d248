// Package repokit carries the shared repo plumbing: the query surface
// repos are written against, and binder/tx helpers the services use
package repokit

import (
	"context"

	"fusepair/internal/platform/store"
)

// Queryer is what a bound repo queries against; inside a transaction it
// is the tx, outside it is the pool
type Queryer = store.RowQuerier

// TxRunner runs a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows is a multi row result
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row

	// CommandTag reports the outcome of a write
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
