// Package ratelimit implements fixed-window rate limiting over an
// injectable store, shared by every endpoint that gates on request volume.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimiterUnavailable means the backing store could not answer. Callers
// choose their own fail-open or fail-closed policy; the limiter never
// silently allows or blocks on error.
var ErrLimiterUnavailable = errors.New("rate limiter unavailable")

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// Store performs the atomic fixed-window bump for one key: start a fresh
// window on a new or expired key, increment within the window, and refuse
// without incrementing once the limit is reached.
type Store interface {
	Take(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Limiter counts requests per caller-supplied key.
type Limiter struct {
	store Store
}

// NewLimiter builds a limiter over the given store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check records one request against key and reports whether it is admitted.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	if l == nil || l.store == nil {
		return Result{}, fmt.Errorf("%w: no store configured", ErrLimiterUnavailable)
	}
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}
	if limit <= 0 {
		return Result{}, errors.New("rate limiter limit must be positive")
	}
	if window <= 0 {
		return Result{}, errors.New("rate limiter window must be positive")
	}

	res, err := l.store.Take(ctx, key, limit, window)
	if err != nil {
		if errors.Is(err, ErrLimiterUnavailable) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return res, nil
}
