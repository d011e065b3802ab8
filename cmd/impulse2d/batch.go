package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/impulse2d/internal/analysis"
	"github.com/san-kum/impulse2d/internal/automation"
	"github.com/san-kum/impulse2d/internal/body"
	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/experiment"
	"github.com/san-kum/impulse2d/internal/integrators"
	"github.com/san-kum/impulse2d/internal/metrics"
	"github.com/san-kum/impulse2d/internal/optim"
	"github.com/san-kum/impulse2d/internal/scene"
	"github.com/san-kum/impulse2d/internal/sim"
	"github.com/san-kum/impulse2d/internal/storage"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := loadScene(cmd, args[:1])
	if err != nil {
		return err
	}
	names := args[1:]
	if len(names) == 0 {
		names = integrators.Names()
	}

	cfgs := make([]*config.Config, len(names))
	for i, name := range names {
		if _, err := integrators.Get(name); err != nil {
			return err
		}
		cfgs[i] = base.Clone()
		cfgs[i].Run.Integrator = name
	}

	ens := sim.NewEnsemble(func(i int) (*sim.World, sim.RunConfig, error) {
		sc, err := scene.Build(cfgs[i])
		if err != nil {
			return nil, sim.RunConfig{}, err
		}
		return sc.World, scene.RunConfig(cfgs[i]), nil
	}, len(names))
	ens.Runner = func(i int) *sim.Runner {
		r := sim.NewRunner()
		for _, m := range metrics.Defaults(cfgs[i].Physics.Gravity) {
			r.AddMetric(m)
		}
		return r
	}

	ctx, cancel := signalContext()
	defer cancel()
	start := time.Now()
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	total := time.Since(start)

	fmt.Printf("comparing integrators on %s (%.0f hz, %.1fs)\n\n", base.Scene, base.Physics.RateHz, base.Run.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tENERGY DRIFT\tMOMENTUM DRIFT\tSETTLE\tCONTACTS")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.3fs\t%d\n",
			names[i],
			res.Metrics["energy_drift"],
			res.Metrics["momentum_drift"],
			res.Metrics["settle_time"],
			res.Contacts)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nwall time: %v\n", total)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := experiment.LoadScene(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      base,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
		Workers:   workers,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY MEAN\tENERGY STD\tMAX SPEED\tCONTACTS\tSETTLE\n", paramName)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\t%d\t%.3fs\n",
			r.ParamValue, r.Energy.Mean, r.Energy.StdDev, r.MaxSpeed, r.Contacts, r.Metrics["settle_time"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := experiment.LoadScene(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: eps,
		NumTrials:    trials,
		Seed:         seed,
		SpeedLimit:   speedCap,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	peaks := make([]float64, len(results))
	for i, r := range results {
		peaks[i] = r.MaxSpeed
		if r.Err != nil {
			slog.Warn("trial failed", "trial", r.TrialID, "err", r.Err)
		}
	}
	stable, unstable := automation.MonteCarloStats(results)
	s := metrics.Summarize(peaks)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	fmt.Printf("peak speed: mean %.4f  std %.4f  min %.4f  max %.4f\n", s.Mean, s.StdDev, s.Min, s.Max)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, slog.Default())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	for i, r := range results {
		fmt.Printf("\nstep %d: %s, %d ticks\n", i+1, r.Config.Scene, r.Result.StepsTaken)
		if r.Step.SaveAs != "" {
			cfg := r.Config.Clone()
			cfg.Scene = r.Step.SaveAs
			runID, err := saveRun(st, cfg, r.Names, r.Result)
			if err != nil {
				return err
			}
			fmt.Printf("run id: %s\n", runID)
		}
		printMetrics(r.Result.Metrics)
	}
	return nil
}

func runDivergence(cmd *cobra.Command, args []string) error {
	cfg, err := experiment.LoadScene(args[0])
	if err != nil {
		return err
	}

	target := bodySel
	if target == "" {
		for _, b := range cfg.Bodies {
			if b.InverseMass > 0 && b.Name != "" {
				target = b.Name
				break
			}
		}
	}
	idx := -1
	for i, b := range cfg.Bodies {
		if b.Name == target {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("no named movable body %q in %s", target, cfg.Scene)
	}

	build := func(offset float64) (*sim.World, body.Handle, error) {
		c := cfg.Clone()
		c.Bodies[idx].Position.X += offset
		sc, err := scene.Build(c)
		if err != nil {
			return nil, body.Handle{}, err
		}
		return sc.World, sc.Handles[target], nil
	}

	rate, err := analysis.Divergence(build, cfg.Dt(), cfg.Run.Duration, eps)
	if err != nil {
		return err
	}
	fmt.Printf("divergence rate of %s in %s: %.4f /s\n", target, cfg.Scene, rate)
	if rate > 0 {
		fmt.Printf("error e-folding time: %.3f s\n", 1/rate)
	}
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := experiment.LoadScene(args[0])
	if err != nil {
		return err
	}
	rates := []float64{60, 120, 240, 480, 960}

	fmt.Printf("benchmarking %s (%d bodies, %.1fs)\n\n", base.Scene, len(base.Bodies), base.Run.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RATE\tTICKS\tTIME\tTICKS/SEC\tCONTACTS")

	ctx, cancel := signalContext()
	defer cancel()
	for _, hz := range rates {
		cfg := base.Clone()
		cfg.Physics.RateHz = hz
		sc, err := scene.Build(cfg)
		if err != nil {
			return err
		}
		run := scene.RunConfig(cfg)
		run.SampleEvery = 1 << 30

		start := time.Now()
		result, err := sim.NewRunner().Run(ctx, sc.World, run)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%.0f hz\t%d\t%v\t%.0f\t%d\n",
			hz, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds(), result.Contacts)
	}
	return w.Flush()
}

// parseRange reads "name=min:max:n".
func parseRange(arg string) (string, []float64, error) {
	name, spec, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("range %q: want name=min:max:n", arg)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("range %q: want name=min:max:n", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("range %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("range %q: bad count", arg)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	base, err := experiment.LoadScene(args[0])
	if err != nil {
		return err
	}
	var (
		names  []string
		ranges [][]float64
	)
	for _, arg := range args[1:] {
		name, vals, err := parseRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	best, val, err := g.Search(ctx, base, objective)
	if err != nil {
		return err
	}
	fmt.Printf("best %s: %.6f\n", objective, val)
	for _, name := range names {
		fmt.Printf("  %s = %.6g\n", name, best[name])
	}
	return nil
}
