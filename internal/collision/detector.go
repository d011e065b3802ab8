package collision

import (
	"github.com/san-kum/impulse2d/internal/body"
)

// Geometry looks up the box of a body. ok is false for bodies without one.
type Geometry func(h body.Handle) (box Box, ok bool)

// Detector scans every pair of bodies. It is O(n²) by design.
type Detector struct {
	Geometry Geometry
	// Restitution returns the coefficient for a pair. Nil means 0.
	Restitution func(a, b body.Handle) float64
	// OnDegenerate is called for a pair skipped because of bad geometry.
	OnDegenerate func(a, b body.Handle, err error)

	contacts []Contact
	entries  []entry
}

type entry struct {
	h     body.Handle
	shape Shape
	fixed bool
}

// Detect returns the contacts of the current store state. The returned slice
// is reused by the next call.
func (d *Detector) Detect(s *body.Store) []Contact {
	d.contacts = d.contacts[:0]
	d.entries = d.entries[:0]

	s.Each(func(h body.Handle, b *body.Body) {
		box, ok := d.Geometry(h)
		if !ok || box.Empty() {
			return
		}
		d.entries = append(d.entries, entry{
			h:     h,
			shape: NewShape(box, b.Position, b.Rotation),
			fixed: !b.Movable(),
		})
	})

	for i := 0; i < len(d.entries); i++ {
		ei := &d.entries[i]
		for j := i + 1; j < len(d.entries); j++ {
			ej := &d.entries[j]
			if ei.fixed && ej.fixed {
				continue
			}

			normal, depth, hit, err := Overlap(ei.shape, ej.shape)
			if err != nil {
				if d.OnDegenerate != nil {
					d.OnDegenerate(ei.h, ej.h, err)
				}
				continue
			}
			if !hit {
				continue
			}

			c := Contact{A: ei.h, B: ej.h, Normal: normal, Penetration: depth}
			if d.Restitution != nil {
				c.Restitution = d.Restitution(ei.h, ej.h)
			}
			d.contacts = append(d.contacts, c)
		}
	}

	return d.contacts
}
