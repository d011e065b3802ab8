package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/impulse2d/internal/analysis"
	"github.com/san-kum/impulse2d/internal/dynamo"
	"github.com/san-kum/impulse2d/internal/export"
	"github.com/san-kum/impulse2d/internal/storage"
	"github.com/san-kum/impulse2d/internal/viz"
)

// openRun loads a stored run; with no id it picks the most recent one.
func openRun(args []string) (*storage.RunMetadata, []dynamo.Frame, error) {
	st := storage.New(dataDir)
	runID := ""
	if len(args) > 0 {
		runID = args[0]
	} else {
		id, err := st.Latest()
		if err != nil {
			return nil, nil, err
		}
		runID = id
	}

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

// pickBody matches sel against body names, then ids. Empty sel picks the
// first movable body.
func pickBody(meta *storage.RunMetadata, sel string) (storage.BodyInfo, error) {
	if sel == "" {
		for _, b := range meta.Bodies {
			if b.InverseMass > 0 {
				return b, nil
			}
		}
		return storage.BodyInfo{}, fmt.Errorf("run %s has no movable body", meta.ID)
	}
	for _, b := range meta.Bodies {
		if b.Name == sel {
			return b, nil
		}
	}
	if id, err := strconv.Atoi(sel); err == nil {
		for _, b := range meta.Bodies {
			if b.ID == id {
				return b, nil
			}
		}
	}
	return storage.BodyInfo{}, fmt.Errorf("no body %q in run %s", sel, meta.ID)
}

func label(b storage.BodyInfo) string {
	if b.Name != "" {
		return b.Name
	}
	return "#" + strconv.Itoa(b.ID)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tINTEG\tBODIES\tTICKS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.5fs\t%s\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			len(run.Bodies),
			run.Steps,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := openRun(args)
	if err != nil {
		return err
	}
	b, err := pickBody(meta, bodySel)
	if err != nil {
		return err
	}
	c, err := analysis.ParseCoordinate(coordSel)
	if err != nil {
		return err
	}

	data, _ := analysis.Extract(frames, b.ID, c)
	if len(data) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s.%s vs time", label(b), coordSel)),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, _, err := openRun(args)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := openRun(args)
	if err != nil {
		return err
	}
	return storage.WriteFramesCSV(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := openRun(args)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, frames)
}

func renderSVG(cmd *cobra.Command, args []string) error {
	_, frames, err := openRun(args)
	if err != nil {
		return err
	}

	var doc string
	switch svgMode {
	case "frame":
		doc = export.FrameToSVG(frames[len(frames)-1], svgWidth, svgH)
	case "trajectory":
		doc = export.TrajectoryToSVG(frames, svgWidth, svgH)
	case "braille":
		// one cell is 2x4 dots at 4px per dot
		c := viz.RenderFrame(frames[len(frames)-1], svgWidth/8, svgH/16)
		doc = export.CanvasToSVG(c, 4)
	default:
		return fmt.Errorf("unknown svg mode: %s (frame, trajectory, braille)", svgMode)
	}

	var out io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err = io.WriteString(out, doc)
	return err
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := openRun(args)
	if err != nil {
		return err
	}
	b, err := pickBody(meta, bodySel)
	if err != nil {
		return err
	}
	c, err := analysis.ParseCoordinate(coordSel)
	if err != nil {
		return err
	}

	data, times := analysis.Extract(frames, b.ID, c)
	if len(data) < 4 {
		return fmt.Errorf("not enough samples (%d)", len(data))
	}
	spacing := times[1] - times[0]

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("signal: %s.%s, %d samples every %.5fs\n\n", label(b), coordSel, len(data), spacing)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(plotData) > 8 {
		plotData = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, _ := analysis.DominantFrequency(data, spacing)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period (fft): %.3f s\n", 1.0/freq)
	}
	if p, ok := analysis.Period(data, times); ok {
		fmt.Printf("period (crossings): %.3f s\n", p)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, frames, err := openRun(args)
	if err != nil {
		return err
	}
	b, err := pickBody(meta, bodySel)
	if err != nil {
		return err
	}
	xc, err := analysis.ParseCoordinate(xAxis)
	if err != nil {
		return err
	}
	yc, err := analysis.ParseCoordinate(yAxis)
	if err != nil {
		return err
	}

	portrait := analysis.PhasePortrait(frames, b.ID, xc, yc)
	if portrait == nil {
		return fmt.Errorf("body %s has no samples", label(b))
	}
	fmt.Printf("phase portrait: %s (%s vs %s)\n\n", label(b), yAxis, xAxis)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 24))
	return nil
}
