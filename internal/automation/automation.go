package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/experiment"
	"github.com/san-kum/impulse2d/internal/metrics"
	"github.com/san-kum/impulse2d/internal/scene"
	"github.com/san-kum/impulse2d/internal/sim"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario.
type ScenarioStep struct {
	Scene      string             `yaml:"scene"` // preset name or config path
	Integrator string             `yaml:"integrator,omitempty"`
	Duration   float64            `yaml:"duration,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	Metrics    []string           `yaml:"metrics,omitempty"`
	SaveAs     string             `yaml:"save_as,omitempty"`
}

// StepResult pairs a step's resolved config with its run.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Names  map[int]string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// SetParam overrides one numeric setting of cfg by its YAML key.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "gravity":
		cfg.Physics.Gravity = v
	case "damping":
		cfg.Physics.Damping = v
	case "restitution":
		cfg.Physics.Restitution = v
	case "rate_hz":
		cfg.Physics.RateHz = v
	case "drag.k1":
		cfg.Physics.Drag.K1 = v
	case "drag.k2":
		cfg.Physics.Drag.K2 = v
	case "duration":
		cfg.Run.Duration = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

func (s ScenarioStep) config() (*config.Config, error) {
	cfg, err := experiment.LoadScene(s.Scene)
	if err != nil {
		return nil, err
	}
	if s.Integrator != "" {
		cfg.Run.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Run.Duration = s.Duration
	}
	for k, v := range s.Params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, log *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("scenario step", "n", i+1, "of", len(scenario.Steps), "scene", step.Scene)

		cfg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		ms, err := experiment.GetMetrics(step.Metrics, cfg.Physics.Gravity)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg).WithLogger(log)
		if err := exp.Setup(ms...); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Names: exp.Scene().Names(), Result: result})
	}

	return results, nil
}

// ParameterSweep runs one scene across evenly spaced values of one parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int // 0 means no cap
}

// SweepResult holds one point of a parameter sweep.
type SweepResult struct {
	ParamValue float64
	Final      dynamo.Frame
	Energy     metrics.Summary
	MaxSpeed   float64
	Contacts   int
	Metrics    map[string]float64
}

func (s *ParameterSweep) values() []float64 {
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}
	}
	out := make([]float64, s.NumSteps)
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	for i := range out {
		out[i] = s.ParamMin + float64(i)*step
	}
	return out
}

// RunSweep executes the sweep concurrently; results are in parameter order.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Base == nil {
		return nil, fmt.Errorf("sweep has no base scene")
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	vals := sweep.values()
	cfgs := make([]*config.Config, len(vals))
	for i, v := range vals {
		cfg := sweep.Base.Clone()
		if err := SetParam(cfg, sweep.ParamName, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		cfgs[i] = cfg
	}

	energies := make([]*metrics.Series, len(vals))
	ens := sim.NewEnsemble(func(i int) (*sim.World, sim.RunConfig, error) {
		sc, err := scene.Build(cfgs[i])
		if err != nil {
			return nil, sim.RunConfig{}, err
		}
		return sc.World, scene.RunConfig(cfgs[i]), nil
	}, len(vals))
	ens.Limit = sweep.Workers
	ens.Runner = func(i int) *sim.Runner {
		g := cfgs[i].Physics.Gravity
		energies[i] = metrics.NewSeries("energy", func(f dynamo.Frame) float64 {
			return metrics.KineticEnergy(f) + metrics.PotentialEnergy(f, g)
		})
		r := sim.NewRunner()
		r.AddMetric(energies[i])
		for _, m := range metrics.Defaults(g) {
			r.AddMetric(m)
		}
		return r
	}

	runs, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(vals))
	for i, res := range runs {
		var peak float64
		for _, f := range res.Frames {
			peak = math.Max(peak, metrics.MaxSpeed(f))
		}
		out[i] = SweepResult{
			ParamValue: vals[i],
			Final:      res.Frames[len(res.Frames)-1],
			Energy:     energies[i].Summary(),
			MaxSpeed:   peak,
			Contacts:   res.Contacts,
			Metrics:    res.Metrics,
		}
	}
	return out, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the half-width of the uniform offset added to each
	// movable body's starting position.
	Perturbation float64
	NumTrials    int
	Seed         uint64
	// SpeedLimit marks a trial unstable once any body exceeds it.
	SpeedLimit float64
	Workers    int
}

// MonteCarloResult holds one trial.
type MonteCarloResult struct {
	TrialID  int
	Initial  dynamo.Frame
	Final    dynamo.Frame
	Stable   bool
	MaxSpeed float64
	Err      error
}

// perturbed returns a copy of base with movable body positions jittered.
func perturbed(base *config.Config, eps float64, seed uint64, trial int) *config.Config {
	cfg := base.Clone()
	if eps <= 0 {
		return cfg
	}
	u := distuv.Uniform{Min: -eps, Max: eps, Src: rand.NewPCG(seed, uint64(trial))}
	for i := range cfg.Bodies {
		if cfg.Bodies[i].InverseMass == 0 {
			continue
		}
		cfg.Bodies[i].Position.X += u.Rand()
		cfg.Bodies[i].Position.Y += u.Rand()
	}
	return cfg
}

// RunMonteCarlo executes independent perturbed trials. A trial that blows up
// is recorded as unstable rather than failing the batch.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) ([]MonteCarloResult, error) {
	if mc.Base == nil {
		return nil, fmt.Errorf("monte carlo has no base scene")
	}
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("need at least one trial, got %d", mc.NumTrials)
	}
	limit := mc.SpeedLimit
	if limit <= 0 {
		limit = 1e6
	}

	results := make([]MonteCarloResult, mc.NumTrials)
	g, ctx := errgroup.WithContext(ctx)
	if mc.Workers > 0 {
		g.SetLimit(mc.Workers)
	}
	for trial := 0; trial < mc.NumTrials; trial++ {
		g.Go(func() error {
			cfg := perturbed(mc.Base, mc.Perturbation, mc.Seed, trial)
			sc, err := scene.Build(cfg)
			if err != nil {
				return fmt.Errorf("trial %d: %w", trial, err)
			}

			r := MonteCarloResult{TrialID: trial, Initial: sc.World.Frame(), Stable: true}
			res, err := sim.NewRunner().Run(ctx, sc.World, scene.RunConfig(cfg))
			switch {
			case errors.Is(err, dynamo.ErrInvalidState):
				r.Stable, r.Err = false, err
			case err != nil:
				return fmt.Errorf("trial %d: %w", trial, err)
			}
			if res != nil && len(res.Frames) > 0 {
				r.Final = res.Frames[len(res.Frames)-1]
				for _, f := range res.Frames {
					r.MaxSpeed = math.Max(r.MaxSpeed, metrics.MaxSpeed(f))
				}
			}
			if r.MaxSpeed > limit || !r.Final.IsValid() {
				r.Stable = false
			}
			results[trial] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
