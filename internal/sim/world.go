// Package sim owns the simulation context: the world, its fixed-step clock and headless runners.
package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/collision"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/forces"
	"github.com/san-kum/impulse2d/internal/integrators"
	"github.com/san-kum/impulse2d/internal/resolve"
)

type geometry struct {
	box         collision.Box
	restitution *float64
}

// World is one independent simulation. It is not safe for concurrent use;
// readers query it between calls to Advance.
type World struct {
	cfg        Config
	log        *slog.Logger
	integrator integrators.Integrator

	store    *body.Store
	geom     []geometry // indexed by handle slot
	gravity  *forces.Gravity
	drag     *forces.Drag
	springs  *forces.Springs
	detector *collision.Detector
	resolver *resolve.Resolver

	contacts  []collision.Contact
	lastStats resolve.Stats
	time      float64
	ticks     uint64
}

func New(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg:      cfg,
		log:      slog.Default(),
		store:    body.NewStore(),
		gravity:  forces.NewGravity(cfg.Gravity),
		drag:     forces.NewDrag(cfg.DragK1, cfg.DragK2),
		springs:  &forces.Springs{},
		resolver: resolve.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.integrator == nil {
		w.integrator = integrators.NewSemiImplicitEuler()
	}

	w.springs.OnDegenerate = func(sp forces.Spring, err error) {
		w.log.Warn("spring skipped", "a", sp.A.String(), "b", sp.B.String(),
			"tick", w.ticks, "time", w.time, "error", err)
	}
	w.detector = &collision.Detector{
		Geometry:    w.geometryOf,
		Restitution: w.restitutionOf,
		OnDegenerate: func(a, b body.Handle, err error) {
			w.log.Warn("contact pair skipped", "a", a.String(), "b", b.String(),
				"tick", w.ticks, "time", w.time, "error", err)
		},
	}
	return w, nil
}

func (w *World) Config() Config { return w.cfg }

func (w *World) Integrator() integrators.Integrator { return w.integrator }

// CreateBody adds a body. A zero Damping takes the world default.
func (w *World) CreateBody(def BodyDef) (body.Handle, error) {
	if def.Size[0] < 0 || def.Size[1] < 0 || !dynamo.Finite(def.Size) {
		return body.Handle{}, fmt.Errorf("size %v: %w", def.Size, dynamo.ErrDegenerateGeometry)
	}
	if def.Restitution != nil && !validRestitution(*def.Restitution) {
		return body.Handle{}, fmt.Errorf("restitution must be in [0,1], got %f", *def.Restitution)
	}
	damping := def.Damping
	if damping == 0 {
		damping = w.cfg.Damping
	}

	h, err := w.store.Create(
		body.MassProps{InverseMass: def.InverseMass, Damping: damping},
		body.Kinematics{Position: def.Position, Velocity: def.Velocity, Rotation: def.Rotation},
	)
	if err != nil {
		return body.Handle{}, err
	}

	for len(w.geom) <= h.Index() {
		w.geom = append(w.geom, geometry{})
	}
	g := geometry{box: collision.BoxFromSize(def.Size)}
	if def.Restitution != nil {
		e := *def.Restitution
		g.restitution = &e
	}
	w.geom[h.Index()] = g
	return h, nil
}

// AddSpring links two live bodies. Springs cannot be removed.
func (w *World) AddSpring(a, b body.Handle, k, restLength float64) error {
	sp := forces.Spring{A: a, B: b, K: k, RestLength: restLength}
	if err := sp.Validate(w.store); err != nil {
		return err
	}
	w.springs.Add(sp)
	return nil
}

// RemoveBody frees a body not referenced by any spring.
func (w *World) RemoveBody(h body.Handle) error {
	if !w.store.Valid(h) {
		return fmt.Errorf("remove %v: %w", h, dynamo.ErrInvalidHandle)
	}
	if w.springs.References(h) {
		return fmt.Errorf("remove %v: %w", h, dynamo.ErrBodyInUse)
	}
	if err := w.store.Remove(h); err != nil {
		return err
	}
	w.geom[h.Index()] = geometry{}
	return nil
}

// Advance runs one tick: forces, detection, resolution, integration.
func (w *World) Advance(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("dt=%v: %w", dt, dynamo.ErrNonPositiveDt)
	}

	if err := w.applyForces(); err != nil {
		return w.stepError(err)
	}

	w.contacts = w.contacts[:0]
	w.lastStats = resolve.Stats{}
	if w.cfg.Collisions {
		w.contacts = append(w.contacts, w.detector.Detect(w.store)...)
		stats, err := w.resolver.Resolve(w.store, w.contacts, dt)
		if err != nil {
			return w.stepError(err)
		}
		w.lastStats = stats
	}

	var bad error
	w.store.Each(func(h body.Handle, b *body.Body) {
		w.integrator.Integrate(b, dt)
		if bad == nil && (!dynamo.Finite(b.Position) || !dynamo.Finite(b.Velocity)) {
			bad = fmt.Errorf("body %v: %w", h, dynamo.ErrInvalidState)
		}
	})
	if bad != nil {
		return w.stepError(bad)
	}

	w.ticks++
	w.time += dt
	return nil
}

func (w *World) applyForces() error {
	if err := w.gravity.Apply(w.store); err != nil {
		return err
	}
	if err := w.springs.Apply(w.store); err != nil {
		return err
	}
	if w.drag.Enabled() {
		return w.drag.Apply(w.store)
	}
	return nil
}

func (w *World) stepError(err error) error {
	return &dynamo.StepError{Tick: w.ticks, Time: w.time, Wrapped: err}
}

func (w *World) geometryOf(h body.Handle) (collision.Box, bool) {
	if h.Index() >= len(w.geom) {
		return collision.Box{}, false
	}
	return w.geom[h.Index()].box, true
}

func (w *World) restitutionOf(a, b body.Handle) float64 {
	ra, rb := w.geom[a.Index()].restitution, w.geom[b.Index()].restitution
	if ra != nil && rb != nil {
		return math.Min(*ra, *rb)
	}
	return w.cfg.Restitution
}

// Transform returns the pose of a body for drawing.
func (w *World) Transform(h body.Handle) (dynamo.Transform, error) {
	b, err := w.store.Get(h)
	if err != nil {
		return dynamo.Transform{}, err
	}
	return dynamo.Transform{Position: b.Position, Rotation: b.Rotation}, nil
}

// Body returns a copy of a body's dynamic state.
func (w *World) Body(h body.Handle) (body.Body, error) {
	return w.store.Get(h)
}

// Size returns the full extent of a body's box.
func (w *World) Size(h body.Handle) (dynamo.Vec2, error) {
	if !w.store.Valid(h) {
		return dynamo.Vec2{}, fmt.Errorf("size %v: %w", h, dynamo.ErrInvalidHandle)
	}
	return w.geom[h.Index()].box.Size(), nil
}

// Handles lists live bodies in slot order.
func (w *World) Handles() []body.Handle { return w.store.Handles() }

func (w *World) Len() int { return w.store.Len() }

func (w *World) Springs() []forces.Spring { return w.springs.All() }

// Snapshot returns the state of every live body in slot order.
func (w *World) Snapshot() []dynamo.BodyState {
	out := make([]dynamo.BodyState, 0, w.store.Len())
	w.store.Each(func(h body.Handle, b *body.Body) {
		out = append(out, dynamo.BodyState{
			ID:          h.Index(),
			Position:    b.Position,
			Velocity:    b.Velocity,
			Rotation:    b.Rotation,
			Size:        w.geom[h.Index()].box.Size(),
			InverseMass: b.InverseMass,
		})
	})
	return out
}

// Frame is Snapshot stamped with the current time.
func (w *World) Frame() dynamo.Frame {
	return dynamo.Frame{Time: w.time, Bodies: w.Snapshot()}
}

// Contacts returns a copy of the contacts found by the last tick.
func (w *World) Contacts() []collision.Contact {
	out := make([]collision.Contact, len(w.contacts))
	copy(out, w.contacts)
	return out
}

// LastStats reports what the resolver did in the last tick.
func (w *World) LastStats() resolve.Stats { return w.lastStats }

func (w *World) Time() float64 { return w.time }

func (w *World) Ticks() uint64 { return w.ticks }
