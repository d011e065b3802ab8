package scene

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/sim"
)

func TestBuildPresets(t *testing.T) {
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := config.GetPreset(name)
			sc, err := Build(cfg)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if sc.World.Len() != len(cfg.Bodies) {
				t.Errorf("bodies = %d, want %d", sc.World.Len(), len(cfg.Bodies))
			}
			if len(sc.World.Springs()) != len(cfg.Springs) {
				t.Errorf("springs = %d, want %d", len(sc.World.Springs()), len(cfg.Springs))
			}
			for i := 0; i < 100; i++ {
				if err := sc.World.Advance(cfg.Dt()); err != nil {
					t.Fatalf("tick %d: %v", i, err)
				}
			}
		})
	}
}

func TestPresetsStayBoundedForFullRun(t *testing.T) {
	const speedLimit = 500.0
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := config.GetPreset(name)
			sc, err := Build(cfg)
			if err != nil {
				t.Fatal(err)
			}
			res, err := sim.NewRunner().Run(context.Background(), sc.World, RunConfig(cfg))
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(res.Frames) == 0 {
				t.Fatal("no frames recorded")
			}

			peak := 0.0
			for _, f := range res.Frames {
				for _, b := range f.Bodies {
					peak = math.Max(peak, b.Velocity.Len())
				}
			}
			if !(peak < speedLimit) {
				t.Errorf("peak speed %v over %gs", peak, cfg.Run.Duration)
			}
		})
	}
}

func TestBuildSpringScene(t *testing.T) {
	sc, err := Build(config.GetPreset("spring"))
	if err != nil {
		t.Fatal(err)
	}
	if sc.World.Integrator().Name() != "semi-implicit" {
		t.Errorf("integrator = %s", sc.World.Integrator().Name())
	}
	if math.Abs(sc.World.Config().FixedDt()-1.0/480) > 1e-15 {
		t.Errorf("fixed dt = %v", sc.World.Config().FixedDt())
	}

	tr, err := sc.World.Transform(sc.Handles["weight"])
	if err != nil {
		t.Fatal(err)
	}
	if tr.Position != (dynamo.Vec2{400, 100}) {
		t.Errorf("weight at %v", tr.Position)
	}
	names := sc.Names()
	if names[sc.Handles["anchor"].Index()] != "anchor" {
		t.Errorf("names = %v", names)
	}
}

func TestBuildErrors(t *testing.T) {
	cfg := config.GetPreset("floor")
	cfg.Run.Integrator = "rk4"
	if _, err := Build(cfg); err == nil {
		t.Error("expected unknown integrator error")
	}

	cfg = config.GetPreset("floor")
	cfg.Bodies[1].InverseMass = -1
	if _, err := Build(cfg); !errors.Is(err, dynamo.ErrInvalidMass) {
		t.Errorf("err = %v, want ErrInvalidMass", err)
	}

	cfg = config.GetPreset("spring")
	cfg.Springs[0].B = "anchor"
	if _, err := Build(cfg); !errors.Is(err, dynamo.ErrInvalidSpring) {
		t.Errorf("err = %v, want ErrInvalidSpring", err)
	}
}
