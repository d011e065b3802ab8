package body

import (
	"fmt"

	"github.com/san-kum/impulse2d/internal/dynamo"
)

// Handle identifies a body. A handle stays valid until its body is removed;
// a reused slot gets a new generation so old handles are detected as stale.
// The zero Handle is never valid.
type Handle struct {
	index      uint32
	generation uint32
}

// Index is the slot the handle points at. Slot order is the iteration order of the store.
func (h Handle) Index() int { return int(h.index) }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.generation == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("body#%d.%d", h.index, h.generation)
}

type slot struct {
	body       Body
	generation uint32
	alive      bool
}

// Store exclusively owns body state.
type Store struct {
	slots []slot
	free  []uint32
	live  int
}

func NewStore() *Store {
	return &Store{}
}

// Create adds a body and returns its handle.
func (s *Store) Create(m MassProps, k Kinematics) (Handle, error) {
	if err := m.validate(); err != nil {
		return Handle{}, err
	}
	if !dynamo.Finite(k.Position) || !dynamo.Finite(k.Velocity) {
		return Handle{}, fmt.Errorf("initial kinematics: %w", dynamo.ErrInvalidState)
	}

	b := Body{
		InverseMass: m.InverseMass,
		Damping:     m.Damping,
		Position:    k.Position,
		Velocity:    k.Velocity,
		Rotation:    k.Rotation,
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[idx]
	sl.generation++
	sl.body = b
	sl.alive = true
	s.live++

	return Handle{index: idx, generation: sl.generation}, nil
}

func (s *Store) lookup(h Handle) (*slot, error) {
	if h.IsZero() || int(h.index) >= len(s.slots) {
		return nil, fmt.Errorf("%v: %w", h, dynamo.ErrInvalidHandle)
	}
	sl := &s.slots[h.index]
	if !sl.alive || sl.generation != h.generation {
		return nil, fmt.Errorf("%v (stale): %w", h, dynamo.ErrInvalidHandle)
	}
	return sl, nil
}

// Get returns a copy of the body.
func (s *Store) Get(h Handle) (Body, error) {
	sl, err := s.lookup(h)
	if err != nil {
		return Body{}, err
	}
	return sl.body, nil
}

// Mutable returns a pointer to the stored body. The pointer is invalidated
// by the next Create.
func (s *Store) Mutable(h Handle) (*Body, error) {
	sl, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	return &sl.body, nil
}

// Valid reports whether h refers to a live body.
func (s *Store) Valid(h Handle) bool {
	_, err := s.lookup(h)
	return err == nil
}

// Remove frees the body's slot for reuse.
func (s *Store) Remove(h Handle) error {
	sl, err := s.lookup(h)
	if err != nil {
		return err
	}
	sl.alive = false
	sl.body = Body{}
	s.free = append(s.free, h.index)
	s.live--
	return nil
}

// Len returns the number of live bodies.
func (s *Store) Len() int { return s.live }

// Cap returns the number of slots, live or free.
func (s *Store) Cap() int { return len(s.slots) }

// Each calls fn for every live body in ascending slot order.
func (s *Store) Each(fn func(h Handle, b *Body)) {
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.alive {
			continue
		}
		fn(Handle{index: uint32(i), generation: sl.generation}, &sl.body)
	}
}

// Handles returns the live handles in ascending slot order.
func (s *Store) Handles() []Handle {
	hs := make([]Handle, 0, s.live)
	s.Each(func(h Handle, _ *Body) {
		hs = append(hs, h)
	})
	return hs
}
