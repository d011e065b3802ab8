package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/impulse2d/internal/config"
	"github.com/san-kum/impulse2d/internal/experiment"
	"github.com/san-kum/impulse2d/internal/scene"
	"github.com/san-kum/impulse2d/internal/sim"
	"github.com/san-kum/impulse2d/internal/storage"
	"github.com/san-kum/impulse2d/internal/viz"
)

// loadScene resolves the scene argument or --config, then applies any flags
// the user set explicitly on top of the file.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = config.Load(configFile)
	case len(args) > 0:
		cfg, err = experiment.LoadScene(args[0])
	default:
		return nil, fmt.Errorf("need a scene name or --config (presets: %v)", config.ListPresets())
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if f.Changed("rate") {
		cfg.Physics.RateHz = rateHz
	}
	if f.Changed("time") {
		cfg.Run.Duration = duration
	}
	if f.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if f.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if f.Changed("restitution") {
		cfg.Physics.Restitution = restitute
	}
	if f.Lookup("sample") != nil && f.Changed("sample") {
		cfg.Run.SampleEvery = sampleN
	}
	return cfg, cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func saveRun(st *storage.Store, cfg *config.Config, names map[int]string, result *sim.Result) (string, error) {
	if err := st.Init(); err != nil {
		return "", err
	}
	meta := storage.Describe(cfg.Scene, cfg.Run.Integrator, scene.RunConfig(cfg), result, names)
	return st.Save(meta, result.Frames)
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	ms, err := experiment.GetMetrics(metricList, cfg.Physics.Gravity)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(ms...); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%d bodies)...\n", cfg.Scene, exp.Scene().World.Len())
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d\n", result.StepsTaken)
	fmt.Printf("contacts: %d impulses: %d\n", result.Contacts, result.Impulses)
	if !noSave {
		runID, err := saveRun(storage.New(dataDir), cfg, exp.Scene().Names(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	// keep the TUI clean; world warnings go nowhere while the screen is owned
	quiet := slog.New(slog.DiscardHandler)
	return viz.RunLive(cfg.Scene, func() (*sim.World, error) {
		sc, err := scene.Build(cfg, sim.WithLogger(quiet))
		if err != nil {
			return nil, err
		}
		return sc.World, nil
	})
}

var presetInfo = map[string]string{
	"spring":   "anchored weight on a spring, no collisions",
	"floor":    "box dropped onto a static floor",
	"collide":  "elastic head-on impacts without gravity",
	"stack":    "three boxes and a wedge settling on the ground",
	"pendulum": "two-link spring chain from a fixed pivot",
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tSPRINGS\tRATE\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f hz\t%s\n", name, len(cfg.Bodies), len(cfg.Springs), cfg.Physics.RateHz, presetInfo[name])
	}
	return w.Flush()
}
