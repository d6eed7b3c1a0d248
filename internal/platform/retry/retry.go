// Package retry provides the cross-cutting store retry policy: bounded
// attempts with exponential backoff. Store reads and writes go through Do
// instead of hand-rolling per-call retry loops
package retry

import (
	"context"
	"time"

	perr "fusepair/internal/platform/errors"
	"fusepair/internal/platform/logger"

	"github.com/cenkalti/backoff/v4"
)

// Options tunes a retry loop. Zero values fall back to the defaults below
type Options struct {
	MaxAttempts uint64        // total attempts including the first; default 5
	Base        time.Duration // first backoff interval; default 1s
	Factor      float64       // backoff multiplier; default 2
	MaxInterval time.Duration // interval ceiling; default 30s
}

// Option mutates Options
type Option func(*Options)

// WithMaxAttempts caps total attempts (including the first)
func WithMaxAttempts(n uint64) Option { return func(o *Options) { o.MaxAttempts = n } }

// WithBase sets the first backoff interval
func WithBase(d time.Duration) Option { return func(o *Options) { o.Base = d } }

// WithFactor sets the backoff multiplier
func WithFactor(f float64) Option { return func(o *Options) { o.Factor = f } }

// WithMaxInterval caps the per-sleep interval
func WithMaxInterval(d time.Duration) Option { return func(o *Options) { o.MaxInterval = d } }

func (o *Options) defaults() {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 5
	}
	if o.Base <= 0 {
		o.Base = time.Second
	}
	if o.Factor <= 0 {
		o.Factor = 2
	}
	if o.MaxInterval <= 0 {
		o.MaxInterval = 30 * time.Second
	}
}

// Permanent marks err as non-retryable regardless of classification
func Permanent(err error) error { return backoff.Permanent(err) }

// Do runs fn with the configured backoff, giving up after MaxAttempts or when
// fn returns a permanent error. op names the operation for logs
func Do(ctx context.Context, op string, fn func(context.Context) error, opts ...Option) error {
	var o Options
	for _, apply := range opts {
		apply(&o)
	}
	o.defaults()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.Base
	eb.Multiplier = o.Factor
	eb.MaxInterval = o.MaxInterval
	eb.MaxElapsedTime = 0 // attempts bound the loop, not wall time
	eb.RandomizationFactor = 0

	var bo backoff.BackOff = backoff.WithContext(eb, ctx)
	bo = backoff.WithMaxRetries(bo, o.MaxAttempts-1)

	attempt := 0
	wrapped := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		logger.C(ctx).Warn().
			Str("op", op).
			Int("attempt", attempt).
			Dur("next_backoff", next).
			Err(err).
			Msg("transient store error; backing off")
	}

	return backoff.RetryNotify(wrapped, bo, notify)
}

// retryable classifies errors: connectivity and contention retry, everything
// the caller did wrong does not
func retryable(err error) bool {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeNotFound,
		perr.ErrorCodeValidation,
		perr.ErrorCodeInvalidArgument,
		perr.ErrorCodeDuplicateKey,
		perr.ErrorCodeConflict:
		return false
	case perr.ErrorCodeUnavailable:
		return true
	}
	if perr.Retryable(err) {
		return true
	}
	// unknown cause: treat plain errors as transient, matching the original
	// policy of retrying any store hiccup a bounded number of times
	_, ours := perr.As(err)
	return !ours
}
