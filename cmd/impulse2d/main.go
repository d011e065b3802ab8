package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/impulse2d/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	logFormat  string
	configFile string
	integrator string
	rateHz     float64
	duration   float64
	gravity    float64
	damping    float64
	restitute  float64
	sampleN    int
	metricList []string
	noSave     bool
	// selection within a stored run
	bodySel  string
	coordSel string
	xAxis    string
	yAxis    string
	// svg
	outFile  string
	svgMode  string
	svgWidth int
	svgH     int
	// batch runs
	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int
	workers   int
	trials    int
	seed      uint64
	eps       float64
	speedCap  float64
	objective string
)

// main registers the commands and starts the scene picker when no subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "impulse2d",
		Short: "2d rigid body physics sandbox",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".impulse2d", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and store the frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&sampleN, "sample", 0, "store every n-th tick")
	runCmd.Flags().StringSliceVar(&metricList, "metrics", nil, "metrics to collect (default: all standard)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print metrics without storing the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one coordinate of a body over time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	selectFlags(plotCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print frames as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print metadata and frames as one json document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render the final frame or the trajectories as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().StringVar(&svgMode, "mode", "frame", "frame, trajectory or braille")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgH, "height", 600, "image height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one coordinate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	selectFlags(analyzeCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "ascii phase portrait of one body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&bodySel, "body", "", "body name or id (default: first movable)")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "y", "coordinate for the x axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vy", "coordinate for the y axis")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "watch a scene in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [integrator1] [integrator2] ...",
		Short: "run one scene under several integrators",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	sceneFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run a scene across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "gravity", "parameter (gravity, damping, restitution, rate_hz, drag.k1, drag.k2, duration)")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = unlimited)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "run perturbed copies of a scene and count stable outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().Float64Var(&eps, "eps", 1, "position perturbation half-width")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().Float64Var(&speedCap, "speed-limit", 0, "speed above which a trial counts as unstable")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = unlimited)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file and store each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	divergenceCmd := &cobra.Command{
		Use:   "divergence [scene]",
		Short: "estimate how fast a small position error grows",
		Args:  cobra.ExactArgs(1),
		RunE:  runDivergence,
	}
	divergenceCmd.Flags().StringVar(&bodySel, "body", "", "body name (default: first movable)")
	divergenceCmd.Flags().Float64Var(&eps, "eps", 1e-6, "initial offset")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene] [param=min:max:n] ...",
		Short: "grid search scene parameters for the lowest metric",
		Args:  cobra.MinimumNArgs(2),
		RunE:  tuneScene,
	}
	tuneCmd.Flags().StringVar(&objective, "metric", "energy_drift", "metric to minimise")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure ticks per second at several rates",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, svgCmd,
		analyzeCmd, phaseCmd, liveCmd, presetsCmd, compareCmd, sweepCmd, monteCarloCmd,
		scenarioCmd, divergenceCmd, tuneCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	cmd.Flags().Float64Var(&rateHz, "rate", 0, "tick rate in hz")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration in seconds")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravitational acceleration")
	cmd.Flags().Float64Var(&damping, "damping", 0, "default per-second velocity retention")
	cmd.Flags().Float64Var(&restitute, "restitution", 0, "default restitution")
}

func selectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&bodySel, "body", "", "body name or id (default: first movable)")
	cmd.Flags().StringVar(&coordSel, "coord", "y", "coordinate (x, y, vx, vy, rotation, speed)")
}

func setupLogging(level, format string) error {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lv}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		h = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
