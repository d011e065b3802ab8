package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Series records one scalar per observed frame.
type Series struct {
	name   string
	fn     func(dynamo.Frame) float64
	times  []float64
	values []float64
}

func NewSeries(name string, fn func(dynamo.Frame) float64) *Series {
	return &Series{name: name, fn: fn}
}

func (s *Series) Name() string { return s.name }

func (s *Series) Observe(f dynamo.Frame) {
	s.times = append(s.times, f.Time)
	s.values = append(s.values, s.fn(f))
}

// Value is the last recorded value.
func (s *Series) Value() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1]
}

func (s *Series) Reset() {
	s.times = s.times[:0]
	s.values = s.values[:0]
}

func (s *Series) Times() []float64  { return s.times }
func (s *Series) Values() []float64 { return s.values }

func (s *Series) Summary() Summary { return Summarize(s.values) }

type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes summary statistics. An empty input yields the zero Summary.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return Summary{
		N:      len(xs),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
	}
}

// Defaults are the metrics attached to every CLI run.
func Defaults(gravity float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergy(gravity),
		NewEnergyDrift(gravity),
		NewMomentumDrift(),
		NewStability(1000),
		NewSettleTime(0.5),
	}
}
