package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/impulse2d/internal/automation"
	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/experiment"
)

// GridSearch tries every combination of parameter values on a base scene and
// keeps the one with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Search runs one experiment per grid point. Points whose config is invalid
// are skipped; run failures abort the search.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no valid grid point")
	}
	return bestParams, best, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) (float64, bool, error) {
	cfg := base.Clone()
	for k, v := range params {
		if err := automation.SetParam(cfg, k, v); err != nil {
			return 0, false, err
		}
	}
	if cfg.Validate() != nil {
		return 0, false, nil
	}

	m, err := experiment.GetMetric(metricName, cfg.Physics.Gravity)
	if err != nil {
		return 0, false, err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(m); err != nil {
		// physics-level rejects such as restitution outside [0,1]
		return 0, false, nil
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, false, err
	}
	return result.Metrics[metricName], true, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		val, ok, err := g.evaluate(ctx, base, current, metricName)
		if err != nil || !ok {
			return err
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
