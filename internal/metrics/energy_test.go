package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

func frame(t float64, bodies ...dynamo.BodyState) dynamo.Frame {
	return dynamo.Frame{Time: t, Bodies: bodies}
}

func TestKineticEnergy(t *testing.T) {
	f := frame(0,
		dynamo.BodyState{InverseMass: 0.5, Velocity: dynamo.Vec2{3, 4}},
		dynamo.BodyState{InverseMass: 0, Velocity: dynamo.Vec2{100, 0}},
	)

	// 0.5 * 2 * 25; the immovable body is ignored
	if ke := KineticEnergy(f); math.Abs(ke-25) > 1e-12 {
		t.Errorf("expected kinetic energy 25, got %f", ke)
	}
}

func TestEnergyConservation(t *testing.T) {
	m := NewEnergy(10)

	// free fall from rest at y=0: KE gained equals PE lost
	f0 := frame(0, dynamo.BodyState{InverseMass: 1})
	f1 := frame(1, dynamo.BodyState{InverseMass: 1, Position: dynamo.Vec2{0, 5}, Velocity: dynamo.Vec2{0, 10}})

	m.Observe(f0)
	e1 := m.Value()
	m.Reset()
	m.Observe(f1)
	e2 := m.Value()

	if math.Abs(e1) > 1e-12 || math.Abs(e2) > 1e-12 {
		t.Errorf("expected energy 0 before and after the fall, got %f and %f", e1, e2)
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(10)

	m.Observe(frame(0, dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{1, 1}}))
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(0)
	m.Observe(frame(0, dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{2, 0}}))
	m.Observe(frame(1, dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{1, 0}}))
	m.Observe(frame(2, dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{2, 0}}))

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected max drift 0.75, got %f", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()
	// an elastic swap keeps total momentum
	m.Observe(frame(0,
		dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{1, 0}},
		dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{-1, 0}},
	))
	m.Observe(frame(1,
		dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{-1, 0}},
		dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{1, 0}},
	))
	if m.Value() != 0 {
		t.Errorf("expected no momentum drift, got %f", m.Value())
	}

	m.Observe(frame(2, dynamo.BodyState{InverseMass: 0.5, Velocity: dynamo.Vec2{0, 1}}))
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected drift 2, got %f", m.Value())
	}
}

func TestStabilityAndSettle(t *testing.T) {
	st := NewStability(1)
	settle := NewSettleTime(1)
	speeds := []float64{5, 3, 0.5, 2, 0.1, 0.1}
	for i, s := range speeds {
		f := frame(float64(i), dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{s, 0}})
		st.Observe(f)
		settle.Observe(f)
	}

	if math.Abs(st.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", st.Value())
	}
	if settle.Value() != 3 {
		t.Errorf("expected settle time 3, got %f", settle.Value())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.N != 8 || s.Mean != 5 || s.Min != 2 || s.Max != 9 {
		t.Errorf("unexpected summary %+v", s)
	}
	// sample standard deviation
	if math.Abs(s.StdDev-math.Sqrt(32.0/7)) > 1e-12 {
		t.Errorf("expected std dev %f, got %f", math.Sqrt(32.0/7), s.StdDev)
	}

	if one := Summarize([]float64{3}); one.StdDev != 0 || one.Mean != 3 {
		t.Errorf("single sample summary %+v", one)
	}
	if empty := Summarize(nil); empty.N != 0 {
		t.Errorf("empty summary %+v", empty)
	}
}

func TestSeries(t *testing.T) {
	s := NewSeries("ke", KineticEnergy)
	s.Observe(frame(0, dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{2, 0}}))
	s.Observe(frame(0.5, dynamo.BodyState{InverseMass: 1, Velocity: dynamo.Vec2{4, 0}}))

	if s.Value() != 8 || len(s.Values()) != 2 || s.Times()[1] != 0.5 {
		t.Errorf("series = %v at %v", s.Values(), s.Times())
	}
	if s.Summary().Mean != 5 {
		t.Errorf("mean = %f", s.Summary().Mean)
	}
	s.Reset()
	if len(s.Values()) != 0 || s.Value() != 0 {
		t.Error("expected empty series after reset")
	}
}
