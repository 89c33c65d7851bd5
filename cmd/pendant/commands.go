package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pendant/internal/analysis"
	"github.com/san-kum/pendant/internal/automation"
	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/config"
	"github.com/san-kum/pendant/internal/export"
	"github.com/san-kum/pendant/internal/gui"
	"github.com/san-kum/pendant/internal/metrics"
	"github.com/san-kum/pendant/internal/optim"
	"github.com/san-kum/pendant/internal/sim"
	"github.com/san-kum/pendant/internal/storage"
	"github.com/san-kum/pendant/internal/viz"
)

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, provider, err := newPendant(cfg, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := gui.DefaultOptions()
	opts.Dt = cfg.Run.Dt
	opts.Logger = slog.Default()
	gui.Run(p, p.Bindings(ctx, provider), opts)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, provider, err := newPendant(cfg, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := viz.DefaultOptions()
	opts.Theme = theme
	opts.GIFPath = gifPath
	m := viz.NewModel(p, p.Bindings(ctx, provider), opts)

	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = prog.Run()
	return err
}

func simConfig(cfg *config.Config, record bool) sim.Config {
	sc := sim.DefaultConfig()
	sc.Dt = cfg.Run.Dt
	sc.Duration = cfg.Run.Duration
	sc.Seed = cfg.Run.Seed
	sc.Record = record
	return sc
}

func simulate(ctx context.Context, cfg *config.Config, record bool) (*sim.Result, error) {
	p, _, err := newPendant(cfg, false)
	if err != nil {
		return nil, err
	}
	s := sim.New()
	for _, m := range metrics.Default(cfg.Chain.Params()) {
		s.AddMetric(m)
	}
	return s.Run(ctx, p, simConfig(cfg, record))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %.1fs...\n", cfg.Anchor, cfg.Run.Duration)
	start := time.Now()
	result, err := simulate(ctx, cfg, !noSave)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}

	if !noSave {
		st := storage.New(dataDir)
		runID, err := st.Save(storage.RunMetadata{
			Name:     runName,
			Preset:   cfg.Preset,
			Anchor:   cfg.Anchor.String(),
			Params:   cfg.Chain.Params(),
			Seed:     cfg.Run.Seed,
			Dt:       cfg.Run.Dt,
			Duration: cfg.Run.Duration,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	for _, name := range sortedKeys(m) {
		fmt.Printf("  %-16s %.6f\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tPRESET\tANCHOR\tTIME\tDURATION\tDT\tNODES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\n",
			run.ID,
			orDash(run.Preset),
			run.Anchor,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Params.NodeCount,
		)
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Trace, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if trace.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, trace, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("anchor: %s\n", meta.Anchor)
	fmt.Printf("samples: %d\n\n", trace.Len())

	bob := trace.Bob()
	offset := analysis.Offsets(trace.Anchors, bob)
	height := make([]float64, len(bob))
	for i, b := range bob {
		height[i] = b[1] - trace.Anchors[i][1]
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"bob x offset from anchor", offset},
		{"bob height below anchor", height},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("swing analysis: %s\n\n", meta.ID)

	offset := analysis.Offsets(trace.Anchors, trace.Bob())
	ps := analysis.PowerSpectrum(offset)
	if len(ps) > 4 {
		fmt.Println(asciigraph.Plot(ps[1:len(ps)/4+1],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (bob x offset)"),
		))
		fmt.Println()
	}

	freq, power, err := analysis.DominantFrequency(offset, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz (power %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	if period := analysis.MeanPeriod(analysis.Crossings(trace.Times, offset)); period > 0 {
		fmt.Printf("mean period from crossings: %.3f s\n", period)
	}

	fmt.Println("\nphase portrait (offset vs horizontal velocity):")
	fmt.Println(analysis.BobPhase(trace.Times, trace.Anchors, trace.Bob()).ToASCII(70, 20))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteTrace(os.Stdout, trace)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, trace)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if svgTrail {
		svg = export.TrajectoryToSVG(trace.Bob(), 800, 800, "#e0b040")
	} else {
		i := svgFrame
		if i < 0 {
			i += trace.Len()
		}
		if i < 0 || i >= trace.Len() {
			return fmt.Errorf("frame %d out of range (run has %d)", svgFrame, trace.Len())
		}
		style := export.DefaultFrameStyle()
		style.Thickness = meta.Params.Thickness
		svg = export.FrameToSVG(export.FrameFromNodes(trace.Times[i], trace.Nodes[i]), style, 600, 800)
	}

	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	slog.Info("wrote svg", "path", svgOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNODES\tITER\tDAMPING\tGRAVITY\tANCHOR")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%.0f\t%s\n",
			name, p.Chain.Nodes, p.Chain.Iterations, p.Chain.Damping, p.Chain.Gravity, p.Anchor)
	}
	return w.Flush()
}

func benchSolver(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	nodeCounts := []int{8, 24, 96}
	iters := []int{4, 12, 50}

	fmt.Printf("benchmarking solver (%s)\n\n", cfg.Anchor)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODES\tITER\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range nodeCounts {
		for _, it := range iters {
			run := cfg.Clone()
			run.Chain.Nodes = n
			run.Chain.Iterations = it
			run.Run.Duration = 10

			start := time.Now()
			result, err := simulate(context.Background(), run, false)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
				n, it, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func comparePresets(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("comparing presets under %s (dt=%.4f, duration=%.1fs)\n\n", base.Anchor, base.Run.Dt, base.Run.Duration)
	names := []string{"max_stretch", "mean_stretch", "peak_bob_speed", "rest_ratio"}
	fmt.Printf("%-10s", "preset")
	for _, n := range names {
		fmt.Printf("  %14s", n)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 10+16*len(names)))

	for _, name := range args {
		cfg := config.GetPreset(name)
		if cfg == nil {
			fmt.Printf("%-10s  error: unknown preset\n", name)
			continue
		}
		cfg.Anchor = base.Anchor
		cfg.Run = base.Run

		result, err := simulate(context.Background(), cfg, false)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", name, err)
			continue
		}
		fmt.Printf("%-10s", name)
		for _, n := range names {
			fmt.Printf("  %14.6f", result.Metrics[n])
		}
		fmt.Println()
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, ok := cfg.Chain.Params().GetParams()[sweepParam]; !ok {
		return fmt.Errorf("unknown parameter: %s", sweepParam)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sw := &sim.Sweep{
		Base:    cfg.Chain.Params(),
		Anchor:  cfg.Anchor,
		Param:   sweepParam,
		Values:  sim.Range(sweepFrom, sweepTo, sweepSteps),
		Metrics: func(p chain.Params) []sim.Metric { return metrics.Default(p) },
		Workers: workers,
	}
	results, err := sw.Run(ctx, simConfig(cfg, false))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX_STRETCH\tMEAN_STRETCH\tPEAK_SPEED\tREST\n", strings.ToUpper(sweepParam))
	stretch := make([]float64, 0, len(results))
	for _, r := range results {
		m := r.Result.Metrics
		fmt.Fprintf(w, "%.4g\t%.6f\t%.6f\t%.3f\t%.2f\n",
			r.Value, m["max_stretch"], m["mean_stretch"], m["peak_bob_speed"], m["rest_ratio"])
		stretch = append(stretch, m["max_stretch"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(stretch) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(stretch, asciigraph.Height(8), asciigraph.Width(60),
			asciigraph.Caption("max stretch vs "+sweepParam)))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}

	r := &automation.Runner{Store: storage.New(dataDir), Logger: slog.Default()}
	results, err := r.Run(ctx, sc)
	for _, res := range results {
		fmt.Printf("\nstep %d (%s, %s)", res.Step, orDash(res.Config.Preset), res.Config.Anchor)
		if res.RunID != "" {
			fmt.Printf(" saved as %s", res.RunID)
		}
		fmt.Println()
		printMetrics(res.Result.Metrics)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         cfg.Run.Seed,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tDAMPING\tGRAVITY\tMAX_STRETCH\tSTABLE")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.0f\t%.6f\t%v\n", r.TrialID, r.Damping, r.Gravity, r.MaxStretch, r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneAxes))
	ranges := make([][]float64, 0, len(tuneAxes))
	for _, axis := range tuneAxes {
		name, vals, err := optim.ParseAxis(axis)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g := optim.NewGridSearch(names, ranges)
	fmt.Printf("searching %d combinations for the lowest %s\n", g.Size(), tuneMetric)

	run := func(ctx context.Context, p chain.Params) (map[string]float64, error) {
		c := cfg.Clone()
		c.Chain = config.FromParams(p)
		res, err := simulate(ctx, c, false)
		if err != nil {
			return nil, err
		}
		return res.Metrics, nil
	}
	best, val, err := g.Search(ctx, cfg.Chain.Params(), run, tuneMetric)
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f\n", tuneMetric, val)
	all := best.GetParams()
	for _, name := range names {
		fmt.Printf("  %-16s %.4g\n", name, all[name])
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
