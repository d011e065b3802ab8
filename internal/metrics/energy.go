package metrics

import (
	"math"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// KineticEnergy of the movable bodies of f.
func KineticEnergy(f dynamo.Frame) float64 {
	ke := 0.0
	for _, b := range f.Bodies {
		if !b.Movable() {
			continue
		}
		ke += 0.5 * b.Mass() * b.Velocity.Dot(b.Velocity)
	}
	return ke
}

// PotentialEnergy is the gravitational energy of movable bodies relative to y=0.
// Gravity pulls toward +y, so height is -y.
func PotentialEnergy(f dynamo.Frame, g float64) float64 {
	pe := 0.0
	for _, b := range f.Bodies {
		if !b.Movable() {
			continue
		}
		pe -= b.Mass() * g * b.Position.Y()
	}
	return pe
}

// Energy is the mean kinetic plus gravitational energy over observed frames.
type Energy struct {
	name        string
	gravity     float64
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity float64) *Energy {
	return &Energy{
		name:    "energy",
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f dynamo.Frame) {
	e.totalEnergy += KineticEnergy(f) + PotentialEnergy(f, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of total energy from the first frame.
// Springs and contacts store energy it does not see, so it is meaningful for
// gravity-only scenes.
type EnergyDrift struct {
	name          string
	gravity       float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(gravity float64) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f dynamo.Frame) {
	energy := KineticEnergy(f) + PotentialEnergy(f, e.gravity)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
