// Package forces holds the force generators that fill body accumulators each tick.
package forces

import (
	"errors"
	"fmt"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Generator adds forces to body accumulators.
type Generator interface {
	Apply(s *body.Store) error
}

// Gravity pulls every finite-mass body along +y with acceleration G.
// The force is scaled by mass; immovable bodies are skipped.
type Gravity struct {
	G float64
}

func NewGravity(g float64) *Gravity {
	return &Gravity{G: g}
}

func (g *Gravity) Apply(s *body.Store) error {
	s.Each(func(_ body.Handle, b *body.Body) {
		if !b.Movable() {
			return
		}
		b.AddForce(dynamo.Vec2{0, g.G}.Mul(b.Mass()))
	})
	return nil
}

// Drag is quadratic drag: -v̂ * (K1*|v| + K2*|v|²).
type Drag struct {
	K1, K2 float64
}

func NewDrag(k1, k2 float64) *Drag {
	return &Drag{K1: k1, K2: k2}
}

// Force returns the drag force for velocity v. A body at rest feels no drag.
func (d *Drag) Force(v dynamo.Vec2) dynamo.Vec2 {
	dir, speed, ok := dynamo.Normalize(v)
	if !ok {
		return dynamo.Vec2{}
	}
	return dir.Mul(-(d.K1*speed + d.K2*speed*speed))
}

func (d *Drag) Apply(s *body.Store) error {
	s.Each(func(_ body.Handle, b *body.Body) {
		if !b.Movable() {
			return
		}
		b.AddForce(d.Force(b.Velocity))
	})
	return nil
}

// Enabled reports whether any coefficient is non-zero.
func (d *Drag) Enabled() bool { return d.K1 != 0 || d.K2 != 0 }

// Spring is a Hookean link between two bodies.
type Spring struct {
	A, B       body.Handle
	K          float64
	RestLength float64
}

// Validate checks parameters and that both endpoints exist.
func (sp Spring) Validate(s *body.Store) error {
	if !s.Valid(sp.A) {
		return fmt.Errorf("spring endpoint a %v: %w", sp.A, dynamo.ErrInvalidHandle)
	}
	if !s.Valid(sp.B) {
		return fmt.Errorf("spring endpoint b %v: %w", sp.B, dynamo.ErrInvalidHandle)
	}
	if sp.A == sp.B {
		return fmt.Errorf("spring links %v to itself: %w", sp.A, dynamo.ErrInvalidSpring)
	}
	if sp.K < 0 || sp.RestLength < 0 {
		return fmt.Errorf("k=%v rest=%v: %w", sp.K, sp.RestLength, dynamo.ErrInvalidSpring)
	}
	return nil
}

// Apply pulls A toward B (and B toward A) when stretched, pushes them apart when compressed.
func (sp Spring) Apply(s *body.Store) error {
	a, err := s.Mutable(sp.A)
	if err != nil {
		return err
	}
	b, err := s.Mutable(sp.B)
	if err != nil {
		return err
	}

	dir, length, ok := dynamo.Normalize(b.Position.Sub(a.Position))
	if !ok {
		return fmt.Errorf("spring %v-%v has coincident endpoints: %w", sp.A, sp.B, dynamo.ErrDegenerateGeometry)
	}

	f := dir.Mul(sp.K * (length - sp.RestLength))
	a.AddForce(f)
	b.AddForce(f.Mul(-1))
	return nil
}

// Springs is the immutable-once-added list of springs of a world.
type Springs struct {
	list []Spring
	// OnDegenerate is called for a spring skipped this tick. Nil means skip silently.
	OnDegenerate func(sp Spring, err error)
}

func (ss *Springs) Add(sp Spring) {
	ss.list = append(ss.list, sp)
}

func (ss *Springs) Len() int { return len(ss.list) }

// All returns a copy of the springs.
func (ss *Springs) All() []Spring {
	out := make([]Spring, len(ss.list))
	copy(out, ss.list)
	return out
}

// References reports whether any spring uses h.
func (ss *Springs) References(h body.Handle) bool {
	for _, sp := range ss.list {
		if sp.A == h || sp.B == h {
			return true
		}
	}
	return false
}

// Apply applies every spring. Degenerate springs are skipped and reported;
// any other error aborts.
func (ss *Springs) Apply(s *body.Store) error {
	for _, sp := range ss.list {
		err := sp.Apply(s)
		if err == nil {
			continue
		}
		if errors.Is(err, dynamo.ErrDegenerateGeometry) {
			if ss.OnDegenerate != nil {
				ss.OnDegenerate(sp, err)
			}
			continue
		}
		return err
	}
	return nil
}
