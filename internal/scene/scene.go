// Package scene turns a config file into a populated world.
package scene

import (
	"fmt"

	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/integrators"
	"github.com/san-kum/impulse2d/internal/sim"
)

// Scene is a built world plus the handles of its named bodies.
type Scene struct {
	Name    string
	World   *sim.World
	Handles map[string]body.Handle
	// Order lists body handles in config order.
	Order []body.Handle
}

// PhysicsConfig maps the file's physics section onto the world config.
func PhysicsConfig(cfg *config.Config) sim.Config {
	p := cfg.Physics
	return sim.Config{
		Gravity:     p.Gravity,
		Damping:     p.Damping,
		Restitution: p.Restitution,
		RateHz:      p.RateHz,
		Collisions:  p.Collisions,
		DragK1:      p.Drag.K1,
		DragK2:      p.Drag.K2,
	}
}

// RunConfig is the headless run described by the file.
func RunConfig(cfg *config.Config) sim.RunConfig {
	return sim.RunConfig{
		Dt:          cfg.Dt(),
		Duration:    cfg.Run.Duration,
		SampleEvery: cfg.Run.SampleEvery,
	}
}

func vec(p config.Point) dynamo.Vec2 { return dynamo.Vec2{p.X, p.Y} }

// Build creates the world, its bodies and springs. Extra options are applied
// after the integrator chosen by the file.
func Build(cfg *config.Config, opts ...sim.Option) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.Get(cfg.Run.Integrator)
	if err != nil {
		return nil, err
	}

	w, err := sim.New(PhysicsConfig(cfg), append([]sim.Option{sim.WithIntegrator(integ)}, opts...)...)
	if err != nil {
		return nil, err
	}

	sc := &Scene{
		Name:    cfg.Scene,
		World:   w,
		Handles: make(map[string]body.Handle, len(cfg.Bodies)),
		Order:   make([]body.Handle, 0, len(cfg.Bodies)),
	}
	for i, bc := range cfg.Bodies {
		h, err := w.CreateBody(sim.BodyDef{
			Size:        vec(bc.Size),
			Position:    vec(bc.Position),
			Velocity:    vec(bc.Velocity),
			InverseMass: bc.InverseMass,
			Damping:     bc.Damping,
			Rotation:    bc.Rotation,
			Restitution: bc.Restitution,
		})
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}
		if bc.Name != "" {
			sc.Handles[bc.Name] = h
		}
		sc.Order = append(sc.Order, h)
	}

	for i, sp := range cfg.Springs {
		if err := w.AddSpring(sc.Handles[sp.A], sc.Handles[sp.B], sp.K, sp.RestLength); err != nil {
			return nil, fmt.Errorf("spring %d (%s-%s): %w", i, sp.A, sp.B, err)
		}
	}
	return sc, nil
}

// Names maps body slot index to config name, for labelling output.
func (s *Scene) Names() map[int]string {
	out := make(map[int]string, len(s.Handles))
	for name, h := range s.Handles {
		out[h.Index()] = name
	}
	return out
}
