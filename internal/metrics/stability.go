package metrics

import (
	"github.com/san-kum/impulse2d/internal/dynamo"
)

// MaxSpeed returns the largest speed of any body in f.
func MaxSpeed(f dynamo.Frame) float64 {
	top := 0.0
	for _, b := range f.Bodies {
		if s := b.Velocity.Len(); s > top {
			top = s
		}
	}
	return top
}

// Stability is the fraction of frames in which every body stayed below a speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f dynamo.Frame) {
	s.samples++
	if MaxSpeed(f) > s.threshold || !f.IsValid() {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// SettleTime is the last time any body moved faster than a threshold.
type SettleTime struct {
	name      string
	threshold float64
	last      float64
}

func NewSettleTime(threshold float64) *SettleTime {
	return &SettleTime{name: "settle_time", threshold: threshold}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(f dynamo.Frame) {
	if MaxSpeed(f) > s.threshold {
		s.last = f.Time
	}
}

func (s *SettleTime) Value() float64 { return s.last }

func (s *SettleTime) Reset() { s.last = 0 }
