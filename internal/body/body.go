// Package body holds the dynamic state of rigid bodies in a generational arena.
package body

import (
	"fmt"
	"math"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Body is the dynamic state of one simulated object.
type Body struct {
	InverseMass  float64
	Damping      float64
	Position     dynamo.Vec2
	Velocity     dynamo.Vec2
	Acceleration dynamo.Vec2
	Force        dynamo.Vec2
	Rotation     float64
}

// Movable reports whether the body has finite mass.
func (b *Body) Movable() bool { return b.InverseMass > 0 }

// Mass returns 1/InverseMass, or 0 for immovable bodies.
func (b *Body) Mass() float64 {
	if b.InverseMass == 0 {
		return 0
	}
	return 1 / b.InverseMass
}

// AddForce accumulates f for the current tick.
func (b *Body) AddForce(f dynamo.Vec2) {
	b.Force = b.Force.Add(f)
}

// ClearForce zeroes the accumulator.
func (b *Body) ClearForce() {
	b.Force = dynamo.Vec2{}
}

// MassProps are the mass properties of a new body.
type MassProps struct {
	InverseMass float64
	Damping     float64
}

func (m MassProps) validate() error {
	if m.InverseMass < 0 || math.IsNaN(m.InverseMass) || math.IsInf(m.InverseMass, 0) {
		return fmt.Errorf("inverse mass %v: %w", m.InverseMass, dynamo.ErrInvalidMass)
	}
	if !(m.Damping > 0 && m.Damping <= 1) {
		return fmt.Errorf("damping %v: %w", m.Damping, dynamo.ErrInvalidDamping)
	}
	return nil
}

// Kinematics is the initial motion of a new body.
type Kinematics struct {
	Position dynamo.Vec2
	Velocity dynamo.Vec2
	Rotation float64
}
