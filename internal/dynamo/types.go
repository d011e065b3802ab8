package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the vector type used throughout the core.
type Vec2 = mgl64.Vec2

// Perp returns v rotated a quarter turn counter-clockwise.
func Perp(v Vec2) Vec2 {
	return Vec2{-v[1], v[0]}
}

// Normalize returns the unit vector of v and its length.
// ok is false when v has zero length, in which case the zero vector is returned.
func Normalize(v Vec2) (unit Vec2, length float64, ok bool) {
	length = v.Len()
	if length == 0 {
		return Vec2{}, 0, false
	}
	return v.Mul(1 / length), length, true
}

// Finite reports whether both components are neither NaN nor Inf.
func Finite(v Vec2) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Transform is the read-only pose of a body used for drawing.
type Transform struct {
	Position Vec2
	Rotation float64
}

// BodyState is a snapshot of one body after a tick completed.
type BodyState struct {
	ID          int
	Position    Vec2
	Velocity    Vec2
	Rotation    float64
	Size        Vec2
	InverseMass float64
}

// Mass returns the body's mass, or +Inf for immovable bodies.
func (b BodyState) Mass() float64 {
	if b.InverseMass == 0 {
		return math.Inf(1)
	}
	return 1 / b.InverseMass
}

// Movable reports whether the body has finite mass.
func (b BodyState) Movable() bool { return b.InverseMass > 0 }

// Frame is the state of every body at one instant.
type Frame struct {
	Time   float64
	Bodies []BodyState
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	c := Frame{Time: f.Time, Bodies: make([]BodyState, len(f.Bodies))}
	copy(c.Bodies, f.Bodies)
	return c
}

// IsValid reports whether every position and velocity is finite.
func (f Frame) IsValid() bool {
	for _, b := range f.Bodies {
		if !Finite(b.Position) || !Finite(b.Velocity) {
			return false
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}
