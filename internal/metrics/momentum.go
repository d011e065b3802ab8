package metrics

import (
	"math"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Momentum of the movable bodies of f.
func Momentum(f dynamo.Frame) dynamo.Vec2 {
	var p dynamo.Vec2
	for _, b := range f.Bodies {
		if !b.Movable() {
			continue
		}
		p = p.Add(b.Velocity.Mul(b.Mass()))
	}
	return p
}

// MomentumDrift is the largest change of total momentum from the first frame.
// Only external forces change it, so a force-free scene should report ~0.
type MomentumDrift struct {
	initial  dynamo.Vec2
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(f dynamo.Frame) {
	p := Momentum(f)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec2{}
	m.maxDrift = 0
	m.samples = 0
}
