package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/metrics"
	"github.com/san-kum/impulse2d/internal/scene"
	"github.com/san-kum/impulse2d/internal/sim"
)

// Experiment is one headless run of a scene config.
type Experiment struct {
	cfg    *config.Config
	scene  *scene.Scene
	runner *sim.Runner
	log    *slog.Logger
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, log: slog.Default()}
}

// WithLogger replaces the logger handed to the world.
func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	e.log = l
	return e
}

// Setup builds the world and attaches ms, or the default metrics when ms is empty.
func (e *Experiment) Setup(ms ...dynamo.Metric) error {
	sc, err := scene.Build(e.cfg, sim.WithLogger(e.log))
	if err != nil {
		return err
	}
	if len(ms) == 0 {
		ms = metrics.Defaults(e.cfg.Physics.Gravity)
	}

	e.scene = sc
	e.runner = sim.NewRunner()
	for _, m := range ms {
		e.runner.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.scene == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	e.log.Info("run started",
		"scene", e.cfg.Scene,
		"bodies", e.scene.World.Len(),
		"dt", e.cfg.Dt(),
		"duration", e.cfg.Run.Duration,
		"integrator", e.scene.World.Integrator().Name())

	res, err := e.runner.Run(ctx, e.scene.World, scene.RunConfig(e.cfg))
	if err != nil {
		return res, err
	}
	e.log.Info("run finished", "steps", res.StepsTaken, "contacts", res.Contacts, "impulses", res.Impulses)
	return res, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Scene returns the built scene, for adding observers or labelling output.
func (e *Experiment) Scene() *scene.Scene { return e.scene }

func (e *Experiment) Runner() *sim.Runner { return e.runner }
