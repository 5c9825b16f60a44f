package chum5

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/chummer/pkg/types"
)

// BatchOptions configure LoadAll.
type BatchOptions struct {
	// Concurrency bounds parallel loads; GOMAXPROCS when zero or negative.
	Concurrency int

	// KeepGoing loads every file even after failures and reports them
	// together as a *types.BatchError. Without it a failure skips later
	// paths that have not started, and LoadAll returns the failure with
	// the lowest index.
	KeepGoing bool
}

// LoadAll loads each path into its own Character. The returned slice has
// one entry per path in input order; entries that failed or never ran are
// unusable. Each character is touched by exactly one goroutine.
//
// Without KeepGoing the error is the earliest failing path's, whatever
// order the loads finished in. Paths before it still load.
func (l *Loader) LoadAll(ctx context.Context, paths []string, opts BatchOptions) ([]*types.Character, error) {
	chars := make([]*types.Character, len(paths))
	for i, p := range paths {
		chars[i] = types.NewCharacter(p)
	}
	errs := make([]error, len(paths))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(limit)

	// firstFailed is the lowest index that has failed so far.
	var firstFailed atomic.Int64
	firstFailed.Store(int64(len(paths)))
	fail := func(i int) {
		for {
			cur := firstFailed.Load()
			if int64(i) >= cur || firstFailed.CompareAndSwap(cur, int64(i)) {
				return
			}
		}
	}

	for i, c := range chars {
		if ctx.Err() != nil {
			break
		}
		if !opts.KeepGoing && firstFailed.Load() < int64(i) {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if !opts.KeepGoing && firstFailed.Load() < int64(i) {
				return nil
			}
			if err := l.Load(c); err != nil {
				errs[i] = err
				fail(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return chars, err
	}
	if err := ctx.Err(); err != nil {
		return chars, err
	}

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	l.opts.Logger.Debug("batch load finished", "files", len(paths), "failed", len(failures))
	switch {
	case len(failures) == 0:
		return chars, nil
	case !opts.KeepGoing:
		return chars, failures[0]
	}
	return chars, &types.BatchError{Failures: failures}
}
