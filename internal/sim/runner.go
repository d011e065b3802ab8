package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Runner advances a world headless for a fixed duration, feeding metrics and observers.
type Runner struct {
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func NewRunner() *Runner {
	return &Runner{
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

func (cfg RunConfig) validate() error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt=%v: %w", cfg.Dt, dynamo.ErrNonPositiveDt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must be non-negative, got %d", cfg.SampleEvery)
	}
	return nil
}

// Steps is the number of ticks covering Duration.
func (cfg RunConfig) Steps() int {
	return int(math.Round(cfg.Duration / cfg.Dt))
}

// Run advances w for cfg.Duration. The context is checked between ticks;
// a tick in progress always completes.
func (r *Runner) Run(ctx context.Context, w *World, cfg RunConfig) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := cfg.SampleEvery
	if every < 1 {
		every = 1
	}
	result := &Result{
		Frames:  make([]dynamo.Frame, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	f := w.Frame()
	result.Frames = append(result.Frames, f)
	r.observe(f)

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := w.Advance(cfg.Dt); err != nil {
			r.collect(result)
			return result, err
		}
		result.StepsTaken++
		stats := w.LastStats()
		result.Contacts += stats.Contacts
		result.Impulses += stats.Impulses

		f = w.Frame()
		r.observe(f)
		if i%every == 0 || i == steps {
			result.Frames = append(result.Frames, f)
		}
	}

	r.collect(result)
	return result, nil
}

// RunWithCallback advances w until Duration elapses or fn returns false.
func (r *Runner) RunWithCallback(ctx context.Context, w *World, cfg RunConfig, fn func(dynamo.Frame) bool) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	steps := cfg.Steps()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f := w.Frame()
		r.observe(f)
		if !fn(f) {
			return nil
		}
		if err := w.Advance(cfg.Dt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) observe(f dynamo.Frame) {
	for _, m := range r.metrics {
		m.Observe(f)
	}
	for _, o := range r.observers {
		o.OnStep(f)
	}
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
