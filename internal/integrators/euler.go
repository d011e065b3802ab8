package integrators

import (
	"math"

	"github.com/san-kum/impulse2d/internal/body"
)

// Integrator turns a body's accumulated force into motion and clears the accumulator.
type Integrator interface {
	Name() string
	Integrate(b *body.Body, dt float64)
}

// SemiImplicitEuler moves position with the previous velocity, then updates
// velocity from this tick's force. Forces come from the pre-tick position, so
// an undamped spring gains 1+k*dt^2 in x^2+v^2/k every tick; damping must
// outrun that.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Name() string { return "semi-implicit" }

func (e *SemiImplicitEuler) Integrate(b *body.Body, dt float64) {
	if !b.Movable() {
		b.ClearForce()
		return
	}

	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.Acceleration = b.Force.Mul(b.InverseMass)
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	b.Velocity = b.Velocity.Mul(math.Pow(b.Damping, dt))
	b.ClearForce()
}

// VelocityFirstEuler updates velocity first and moves position with the new velocity.
type VelocityFirstEuler struct{}

func NewVelocityFirstEuler() *VelocityFirstEuler {
	return &VelocityFirstEuler{}
}

func (e *VelocityFirstEuler) Name() string { return "velocity-first" }

func (e *VelocityFirstEuler) Integrate(b *body.Body, dt float64) {
	if !b.Movable() {
		b.ClearForce()
		return
	}

	b.Acceleration = b.Force.Mul(b.InverseMass)
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	b.Velocity = b.Velocity.Mul(math.Pow(b.Damping, dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.ClearForce()
}
