// Package batch solves many inverse problems concurrently.
package batch

import (
	"context"
	"errors"
	"runtime"

	"github.com/quakepath/geodesic"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Pair is a start and end point in degrees. ID is carried through to the
// outcome for the caller's bookkeeping.
type Pair struct {
	ID         string
	Lat1, Lon1 float64
	Lat2, Lon2 float64
}

// Outcome is the solution for one Pair. Err is set when the inverse
// iteration did not converge; Result then holds the last iterate.
type Outcome struct {
	Pair
	Result geodesic.InverseResult
	Err    error
}

// Runner solves pairs on a fixed ellipsoid.
type Runner struct {
	Ellipsoid geodesic.Ellipsoid
	// Workers bounds the number of concurrent solves. Zero means GOMAXPROCS.
	Workers int
	Logger  zerolog.Logger
}

// NewRunner returns a runner with the given ellipsoid and worker count and a
// disabled logger.
func NewRunner(e geodesic.Ellipsoid, workers int) *Runner {
	return &Runner{Ellipsoid: e, Workers: workers, Logger: zerolog.Nop()}
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Inverse solves every pair and returns the outcomes in input order.
// Non-convergence is recorded per outcome and does not stop the batch.
// The only error returned is the context's.
func (r *Runner) Inverse(ctx context.Context, pairs []Pair) ([]Outcome, error) {
	out := make([]Outcome, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range pairs {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := pairs[i]
			res, err := r.Ellipsoid.Inverse(p.Lat1, p.Lon1, p.Lat2, p.Lon2)
			if err != nil {
				var cerr *geodesic.ConvergenceError
				if !errors.As(err, &cerr) {
					return err
				}
				r.Logger.Warn().
					Str("id", p.ID).
					Int("iterations", cerr.Iterations).
					Float64("delta", cerr.Delta).
					Msg("inverse did not converge")
			}
			out[i] = Outcome{Pair: p, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.Logger.Debug().
		Int("pairs", len(pairs)).
		Int("workers", r.workers()).
		Msg("batch inverse done")
	return out, nil
}
