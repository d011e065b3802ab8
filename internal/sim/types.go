package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/integrators"
)

// Config holds the world-wide physics parameters.
type Config struct {
	Gravity     float64
	Damping     float64 // default for bodies created with Damping 0
	Restitution float64 // default for contacts
	RateHz      float64 // fixed tick rate used by Clock
	Collisions  bool
	DragK1      float64
	DragK2      float64
}

func DefaultConfig() Config {
	return Config{
		Gravity:     10,
		Damping:     0.99,
		Restitution: 0.5,
		RateHz:      240,
		Collisions:  true,
	}
}

func (c Config) Validate() error {
	if !(c.Damping > 0 && c.Damping <= 1) {
		return fmt.Errorf("default damping %v: %w", c.Damping, dynamo.ErrInvalidDamping)
	}
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return fmt.Errorf("gravity must be finite, got %f", c.Gravity)
	}
	if !validRestitution(c.Restitution) {
		return fmt.Errorf("restitution must be in [0,1], got %f", c.Restitution)
	}
	if !(c.RateHz > 0) || math.IsInf(c.RateHz, 1) {
		return fmt.Errorf("rate must be positive and finite, got %f", c.RateHz)
	}
	if !(c.DragK1 >= 0) || !(c.DragK2 >= 0) || math.IsInf(c.DragK1, 1) || math.IsInf(c.DragK2, 1) {
		return fmt.Errorf("drag coefficients must be finite and non-negative, got %f/%f", c.DragK1, c.DragK2)
	}
	return nil
}

// validRestitution is false for NaN as well as out-of-range values.
func validRestitution(e float64) bool { return e >= 0 && e <= 1 }

// FixedDt is the tick length implied by RateHz.
func (c Config) FixedDt() float64 { return 1 / c.RateHz }

// BodyDef describes a body to create. Size is the full width and height.
type BodyDef struct {
	Size        dynamo.Vec2
	Position    dynamo.Vec2
	Velocity    dynamo.Vec2
	InverseMass float64
	Damping     float64
	Rotation    float64
	// Restitution overrides the world default when set on both bodies of a contact.
	Restitution *float64
}

type Option func(*World)

func WithIntegrator(i integrators.Integrator) Option {
	return func(w *World) { w.integrator = i }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.log = l }
}

// RunConfig controls a headless Runner pass.
type RunConfig struct {
	Dt          float64
	Duration    float64
	SampleEvery int // record every n-th tick; 0 or 1 records all
}

type Result struct {
	Frames     []dynamo.Frame
	Metrics    map[string]float64
	StepsTaken int
	Contacts   int // total contacts seen over the run
	Impulses   int
}
