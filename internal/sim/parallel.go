package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Builder creates a fresh world for run idx of an ensemble.
type Builder func(idx int) (*World, RunConfig, error)

// Ensemble runs independent worlds concurrently. Each world stays on one goroutine.
type Ensemble struct {
	build   Builder
	numRuns int
	// Runner returns the runner for run idx. Nil means a bare runner.
	Runner func(idx int) *Runner
	// Limit caps concurrent runs. 0 means no cap.
	Limit int
}

func NewEnsemble(build Builder, numRuns int) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

// Run returns results in run order. The first failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			w, cfg, err := e.build(i)
			if err != nil {
				return err
			}
			r := NewRunner()
			if e.Runner != nil {
				r = e.Runner(i)
			}
			res, err := r.Run(ctx, w, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
