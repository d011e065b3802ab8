package automation

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/impulse2d/internal/config"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadAndRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	doc := `name: smoke
description: two short runs
steps:
  - scene: floor
    duration: 0.25
    params:
      gravity: 5
  - scene: collide
    duration: 0.1
    metrics: [max_speed]
    save_as: impact
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("scenario = %+v", sc)
	}

	results, err := RunScenario(context.Background(), sc, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if g := results[0].Config.Physics.Gravity; g != 5 {
		t.Errorf("gravity override = %v", g)
	}
	if results[0].Result.StepsTaken != 60 {
		t.Errorf("steps = %d, want 60", results[0].Result.StepsTaken)
	}
	if _, ok := results[1].Result.Metrics["max_speed"]; !ok {
		t.Errorf("metrics = %v", results[1].Result.Metrics)
	}
	if results[1].Names[0] != "left" {
		t.Errorf("names = %v", results[1].Names)
	}
}

func TestScenarioStepErrors(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Scene: "floor", Params: map[string]float64{"bogus": 1}}}}
	if _, err := RunScenario(context.Background(), sc, quiet); err == nil {
		t.Error("expected unknown parameter error")
	}

	sc = &Scenario{Steps: []ScenarioStep{{Scene: "floor", Params: map[string]float64{"rate_hz": -1}}}}
	if _, err := RunScenario(context.Background(), sc, quiet); err == nil {
		t.Error("expected validation error")
	}

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: empty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(path); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestRunSweep(t *testing.T) {
	base := config.GetPreset("floor")
	base.Run.Duration = 0.5

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:      base,
		ParamName: "gravity",
		ParamMin:  0,
		ParamMax:  20,
		NumSteps:  3,
		Workers:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, want := range []float64{0, 10, 20} {
		if results[i].ParamValue != want {
			t.Errorf("results[%d].ParamValue = %v, want %v", i, results[i].ParamValue, want)
		}
	}

	if results[0].MaxSpeed != 0 {
		t.Errorf("zero gravity moved at %v", results[0].MaxSpeed)
	}
	if results[2].MaxSpeed <= results[1].MaxSpeed {
		t.Errorf("peak speed %v at g=20 not above %v at g=10", results[2].MaxSpeed, results[1].MaxSpeed)
	}
	if results[2].Energy.N == 0 {
		t.Error("energy series empty")
	}
	if base.Physics.Gravity != 10 {
		t.Error("sweep mutated base config")
	}
}

func TestRunSweepErrors(t *testing.T) {
	base := config.GetPreset("floor")
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: base, ParamName: "mass", NumSteps: 2}); err == nil {
		t.Error("expected unknown parameter error")
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: base, ParamName: "gravity", NumSteps: 0}); err == nil {
		t.Error("expected step count error")
	}
}

func TestMonteCarloDeterministic(t *testing.T) {
	base := config.GetPreset("collide")
	base.Run.Duration = 0.5
	mc := &MonteCarloConfig{Base: base, Perturbation: 2, NumTrials: 4, Seed: 7, Workers: 2}

	a, err := RunMonteCarlo(context.Background(), mc)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunMonteCarlo(context.Background(), mc)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i].TrialID != i {
			t.Errorf("trial %d has id %d", i, a[i].TrialID)
		}
		for j := range a[i].Initial.Bodies {
			if a[i].Initial.Bodies[j].Position != b[i].Initial.Bodies[j].Position {
				t.Errorf("trial %d body %d start differs between runs", i, j)
			}
		}
	}
	if a[0].Initial.Bodies[0].Position == a[1].Initial.Bodies[0].Position {
		t.Error("trials share the same perturbation")
	}

	stable, unstable := MonteCarloStats(a)
	if stable != 4 || unstable != 0 {
		t.Errorf("stable=%d unstable=%d", stable, unstable)
	}
}

func TestPerturbedSkipsImmovable(t *testing.T) {
	base := config.GetPreset("stack")
	cfg := perturbed(base, 5, 1, 0)

	if cfg.Bodies[0].Position != base.Bodies[0].Position {
		t.Error("ground moved")
	}
	moved := false
	for i := 1; i < len(cfg.Bodies); i++ {
		d := cfg.Bodies[i].Position
		o := base.Bodies[i].Position
		if d.X < o.X-5 || d.X > o.X+5 || d.Y < o.Y-5 || d.Y > o.Y+5 {
			t.Errorf("body %d offset out of range: %v -> %v", i, o, d)
		}
		if d != o {
			moved = true
		}
	}
	if !moved {
		t.Error("no movable body perturbed")
	}
}

func TestMonteCarloSpeedLimit(t *testing.T) {
	base := config.GetPreset("collide")
	base.Run.Duration = 0.1
	res, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{Base: base, NumTrials: 2, SpeedLimit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if stable, _ := MonteCarloStats(res); stable != 0 {
		t.Errorf("%d trials stable under a 1 unit/s limit", stable)
	}
}
