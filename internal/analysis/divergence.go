package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/sim"
)

// PerturbedBuilder builds a world whose tracked body starts offset by eps.
type PerturbedBuilder func(eps float64) (*sim.World, body.Handle, error)

// Divergence estimates how fast two runs that start eps apart separate.
// It is the least-squares slope of ln(separation) over time; a positive value
// means small errors in initial position grow exponentially.
func Divergence(build PerturbedBuilder, dt, duration, eps float64) (float64, error) {
	if eps <= 0 {
		return 0, fmt.Errorf("perturbation must be positive, got %f", eps)
	}
	w0, h0, err := build(0)
	if err != nil {
		return 0, err
	}
	w1, h1, err := build(eps)
	if err != nil {
		return 0, err
	}

	steps := int(math.Round(duration / dt))
	ts := make([]float64, 0, steps)
	logs := make([]float64, 0, steps)

	for i := 0; i < steps; i++ {
		if err := w0.Advance(dt); err != nil {
			return 0, err
		}
		if err := w1.Advance(dt); err != nil {
			return 0, err
		}

		a, err := w0.Transform(h0)
		if err != nil {
			return 0, err
		}
		b, err := w1.Transform(h1)
		if err != nil {
			return 0, err
		}

		sep := a.Position.Sub(b.Position).Len()
		if sep > 0 {
			ts = append(ts, w0.Time())
			logs = append(logs, math.Log(sep))
		}
	}

	if len(ts) < 2 {
		return 0, nil
	}
	_, slope := stat.LinearRegression(ts, logs, nil, false)
	return slope, nil
}
