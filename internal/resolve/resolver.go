// Package resolve applies sequential impulses and positional correction to contacts.
package resolve

import (
	"sort"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/collision"
)

// Stats counts what one Resolve call did.
type Stats struct {
	Contacts    int
	Impulses    int
	Corrections int
}

type pair struct {
	c    collision.Contact
	a, b *body.Body
}

func (p pair) totalInverseMass() float64 {
	return p.a.InverseMass + p.b.InverseMass
}

// separatingVelocity is positive when the bodies move apart along the normal.
func (p pair) separatingVelocity() float64 {
	return p.a.Velocity.Sub(p.b.Velocity).Dot(p.c.Normal.Mul(-1))
}

// Resolver runs Sort → ResolveVelocity → ResolvePenetration over a contact list.
type Resolver struct {
	pairs []pair
}

func New() *Resolver {
	return &Resolver{}
}

// Resolve mutates the bodies referenced by contacts. dt is the tick length,
// used to discount velocity built up by this tick's acceleration.
func (r *Resolver) Resolve(s *body.Store, contacts []collision.Contact, dt float64) (Stats, error) {
	stats := Stats{Contacts: len(contacts)}

	r.pairs = r.pairs[:0]
	for _, c := range contacts {
		a, err := s.Mutable(c.A)
		if err != nil {
			return stats, err
		}
		b, err := s.Mutable(c.B)
		if err != nil {
			return stats, err
		}
		r.pairs = append(r.pairs, pair{c: c, a: a, b: b})
	}

	// Most urgently approaching pair first, from live velocities.
	sort.Slice(r.pairs, func(i, j int) bool {
		return r.pairs[i].separatingVelocity() < r.pairs[j].separatingVelocity()
	})

	for _, p := range r.pairs {
		if resolveVelocity(p, dt) {
			stats.Impulses++
		}
	}
	for _, p := range r.pairs {
		if resolvePenetration(p) {
			stats.Corrections++
		}
	}

	return stats, nil
}

func resolveVelocity(p pair, dt float64) bool {
	sep := p.separatingVelocity()
	if sep > 0 {
		return false
	}

	e := p.c.Restitution
	newSep := -sep * e

	// Closing speed produced only by this tick's acceleration must not bounce,
	// otherwise resting contacts gain energy from gravity.
	accSep := p.a.Acceleration.Sub(p.b.Acceleration).Dot(p.c.Normal.Mul(-1)) * dt
	if accSep < 0 {
		newSep += e * accSep
		if newSep < 0 {
			newSep = 0
		}
	}

	total := p.totalInverseMass()
	if total <= 0 {
		return false
	}

	impulse := (newSep - sep) / total
	// -normal points from B to A.
	perIMass := p.c.Normal.Mul(-impulse)
	p.a.Velocity = p.a.Velocity.Add(perIMass.Mul(p.a.InverseMass))
	p.b.Velocity = p.b.Velocity.Sub(perIMass.Mul(p.b.InverseMass))
	return true
}

func resolvePenetration(p pair) bool {
	if p.c.Penetration <= 0 {
		return false
	}
	total := p.totalInverseMass()
	if total <= 0 {
		return false
	}

	move := p.c.Normal.Mul(-p.c.Penetration / total)
	p.a.Position = p.a.Position.Add(move.Mul(p.a.InverseMass))
	p.b.Position = p.b.Position.Sub(move.Mul(p.b.InverseMass))
	return true
}

// SeparatingVelocity exposes the sort key of a contact for diagnostics.
func SeparatingVelocity(s *body.Store, c collision.Contact) (float64, error) {
	a, err := s.Get(c.A)
	if err != nil {
		return 0, err
	}
	b, err := s.Get(c.B)
	if err != nil {
		return 0, err
	}
	return a.Velocity.Sub(b.Velocity).Dot(c.Normal.Mul(-1)), nil
}
