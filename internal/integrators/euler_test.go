package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/dynamo"
)

func TestSemiImplicitEulerOrder(t *testing.T) {
	b := body.Body{
		InverseMass: 0.5,
		Damping:     1,
		Position:    dynamo.Vec2{1, 1},
		Velocity:    dynamo.Vec2{2, 0},
		Force:       dynamo.Vec2{0, 4},
	}

	NewSemiImplicitEuler().Integrate(&b, 0.5)

	// Position uses the velocity from before this tick's force.
	if !b.Position.ApproxEqualThreshold(dynamo.Vec2{2, 1}, 1e-12) {
		t.Errorf("position = %v, want [2 1]", b.Position)
	}
	if !b.Acceleration.ApproxEqualThreshold(dynamo.Vec2{0, 2}, 1e-12) {
		t.Errorf("acceleration = %v, want [0 2]", b.Acceleration)
	}
	if !b.Velocity.ApproxEqualThreshold(dynamo.Vec2{2, 1}, 1e-12) {
		t.Errorf("velocity = %v, want [2 1]", b.Velocity)
	}
	if b.Force != (dynamo.Vec2{}) {
		t.Errorf("force not cleared: %v", b.Force)
	}
}

func TestVelocityFirstEulerOrder(t *testing.T) {
	b := body.Body{
		InverseMass: 0.5,
		Damping:     1,
		Position:    dynamo.Vec2{1, 1},
		Velocity:    dynamo.Vec2{2, 0},
		Force:       dynamo.Vec2{0, 4},
	}

	NewVelocityFirstEuler().Integrate(&b, 0.5)

	if !b.Position.ApproxEqualThreshold(dynamo.Vec2{2, 1.5}, 1e-12) {
		t.Errorf("position = %v, want [2 1.5]", b.Position)
	}
	if b.Force != (dynamo.Vec2{}) {
		t.Errorf("force not cleared: %v", b.Force)
	}
}

func TestImmovableBodyUntouched(t *testing.T) {
	for _, integ := range []Integrator{NewSemiImplicitEuler(), NewVelocityFirstEuler()} {
		t.Run(integ.Name(), func(t *testing.T) {
			b := body.Body{
				InverseMass: 0,
				Damping:     0.5,
				Position:    dynamo.Vec2{3, 4},
				Velocity:    dynamo.Vec2{1, 1},
				Force:       dynamo.Vec2{100, 100},
			}
			integ.Integrate(&b, 0.1)

			if b.Position != (dynamo.Vec2{3, 4}) || b.Velocity != (dynamo.Vec2{1, 1}) {
				t.Errorf("immovable body changed: pos %v vel %v", b.Position, b.Velocity)
			}
			if b.Force != (dynamo.Vec2{}) {
				t.Errorf("force not cleared: %v", b.Force)
			}
		})
	}
}

func TestDampingIsFrameRateIndependent(t *testing.T) {
	run := func(steps int) float64 {
		b := body.Body{InverseMass: 1, Damping: 0.25, Velocity: dynamo.Vec2{8, 0}}
		dt := 1.0 / float64(steps)
		for i := 0; i < steps; i++ {
			NewSemiImplicitEuler().Integrate(&b, dt)
		}
		return b.Velocity.X()
	}

	coarse, fine := run(10), run(1000)
	if math.Abs(coarse-2) > 1e-9 || math.Abs(fine-2) > 1e-9 {
		t.Errorf("after 1s at damping 0.25: coarse=%v fine=%v, want 2", coarse, fine)
	}
}

func TestFreeFall(t *testing.T) {
	const g, steps = 10.0, 100
	dt := 1.0 / steps
	b := body.Body{InverseMass: 1, Damping: 1}
	integ := NewSemiImplicitEuler()

	for i := 0; i < steps; i++ {
		b.AddForce(dynamo.Vec2{0, g})
		integ.Integrate(&b, dt)
	}

	// Sum of v_k*dt for v_k = k*g*dt, k = 0..steps-1.
	want := g * dt * dt * float64(steps*(steps-1)) / 2
	if math.Abs(b.Position.Y()-want) > 1e-9 {
		t.Errorf("y = %v, want %v", b.Position.Y(), want)
	}
	if math.Abs(b.Velocity.Y()-g) > 1e-9 {
		t.Errorf("vy = %v, want %v", b.Velocity.Y(), g)
	}
}

// oscillate runs a unit mass on a spring x'' = -k x from x=1 at rest.
func oscillate(integ Integrator, k, damping, dt float64, ticks int, each func(b *body.Body)) body.Body {
	b := body.Body{InverseMass: 1, Damping: damping, Position: dynamo.Vec2{1, 0}}
	for i := 0; i < ticks; i++ {
		b.AddForce(b.Position.Mul(-k))
		integ.Integrate(&b, dt)
		if each != nil {
			each(&b)
		}
	}
	return b
}

// Both updates read the pre-tick state, so x^2 + v^2/k grows by exactly
// 1 + k*dt^2 per tick on an undamped spring.
func TestSemiImplicitEulerSpringGrowth(t *testing.T) {
	const k, dt, ticks = 4.0, 0.05, 200
	b := oscillate(NewSemiImplicitEuler(), k, 1, dt, ticks, nil)

	x, v := b.Position.X(), b.Velocity.X()
	got := x*x + v*v/k
	want := math.Pow(1+k*dt*dt, ticks)
	if math.Abs(got-want) > 1e-9*want {
		t.Errorf("invariant = %v, want %v", got, want)
	}
}

// The growth is beaten once damping^dt * (1 + k*dt^2) < 1.
func TestDampedSpringDecays(t *testing.T) {
	const k, dt = 4.0, 0.05
	damping := 0.1 // 0.1^0.05 * 1.01 ~ 0.9
	for _, integ := range []Integrator{NewSemiImplicitEuler(), NewVelocityFirstEuler()} {
		t.Run(integ.Name(), func(t *testing.T) {
			b := oscillate(integ, k, damping, dt, 2000, nil)
			if math.Abs(b.Position.X()) > 1e-6 || math.Abs(b.Velocity.X()) > 1e-6 {
				t.Errorf("still moving: x=%v v=%v", b.Position.X(), b.Velocity.X())
			}
		})
	}
}

func TestVelocityFirstSpringStaysBounded(t *testing.T) {
	const k, dt = 4.0, 0.05
	maxAbs := 0.0
	oscillate(NewVelocityFirstEuler(), k, 1, dt, 20000, func(b *body.Body) {
		maxAbs = math.Max(maxAbs, math.Abs(b.Position.X()))
	})
	if maxAbs > 1.1 {
		t.Errorf("amplitude grew to %v", maxAbs)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		integ, err := Get(name)
		if err != nil || integ == nil {
			t.Errorf("Get(%q) = %v, %v", name, integ, err)
		}
	}
	if integ, err := Get(""); err != nil || integ.Name() != Default {
		t.Errorf("Get(\"\") = %v, %v", integ, err)
	}
	if _, err := Get("rk4"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
