package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/bobimage"
	"github.com/san-kum/pendant/internal/config"
	"github.com/san-kum/pendant/internal/logx"
	"github.com/san-kum/pendant/internal/pendant"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	veryVerb   bool
	quiet      bool

	dt         float64
	duration   float64
	seed       int64
	anchorSpec string
	nodes      int
	restLength float64
	iterations int
	damping    float64
	gravity    float64
	thickness  float64
	imageDir   string

	runName  string
	noSave   bool
	theme    string
	gifPath  string
	svgOut   string
	svgTrail bool
	svgFrame int

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	workers    int

	trials       int
	perturbation float64

	tuneAxes   []string
	tuneMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pendant",
		Short: "a chain pendant that hangs from your cursor",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.Setup(os.Stderr, logx.LevelFromFlags(veryVerb, verbose, quiet))
		},
		RunE: runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log info messages")
	pf.BoolVar(&veryVerb, "vv", false, "log debug messages")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	addChainFlags(rootCmd)
	rootCmd.Flags().StringVar(&imageDir, "images", config.DefaultImageDir, "where imported bob images are kept")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the pendant window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addChainFlags(guiCmd)
	guiCmd.Flags().StringVar(&imageDir, "images", config.DefaultImageDir, "where imported bob images are kept")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run the pendant in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	addChainFlags(tuiCmd)
	tuiCmd.Flags().StringVar(&imageDir, "images", config.DefaultImageDir, "where imported bob images are kept")
	tuiCmd.Flags().StringVar(&theme, "theme", "brass", "colour theme")
	tuiCmd.Flags().StringVar(&gifPath, "gif", "pendant.gif", "where G saves recordings")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addChainFlags(runCmd)
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "run", "run name")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print metrics without storing the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the bob trajectory of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "swing frequency and phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the node trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export metadata and trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a frame or the bob trail as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().BoolVar(&svgTrail, "trail", false, "draw the bob trail instead of a frame")
	exportSVGCmd.Flags().IntVar(&svgFrame, "frame", -1, "frame index, negative counts from the end")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the solver",
		Args:  cobra.NoArgs,
		RunE:  benchSolver,
	}
	addChainFlags(benchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "compare presets under the same anchor motion",
		Args:  cobra.MinimumNArgs(2),
		RunE:  comparePresets,
	}
	addRunFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addChainFlags(sweepCmd)
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "iterations", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 1, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	montecarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "check stability under perturbed damping and gravity",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addChainFlags(montecarloCmd)
	addRunFlags(montecarloCmd)
	montecarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	montecarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.2, "relative perturbation")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search the parameters that minimise a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addChainFlags(tuneCmd)
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneAxes, "grid", []string{"iterations=4:20:5"}, "axis as name=lo:hi:n or name=v1,v2 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "max_stretch", "metric to minimise")

	rootCmd.AddCommand(guiCmd, tuiCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, compareCmd, sweepCmd, scenarioCmd, montecarloCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&anchorSpec, "anchor", "static:0,0", "anchor motion, kind:a,b,...")
	f.IntVar(&nodes, "nodes", config.DefaultConfig().Chain.Nodes, "number of nodes")
	f.Float64Var(&restLength, "rest-length", config.DefaultConfig().Chain.RestLength, "link rest length")
	f.IntVar(&iterations, "iterations", config.DefaultConfig().Chain.Iterations, "constraint passes per tick")
	f.Float64Var(&damping, "damping", config.DefaultConfig().Chain.Damping, "momentum lost per tick")
	f.Float64Var(&gravity, "gravity", config.DefaultConfig().Chain.Gravity, "gravity in units/s²")
	f.Float64Var(&thickness, "thickness", config.DefaultConfig().Chain.Thickness, "drawn link thickness")
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Lookup("anchor") == nil {
		f.StringVar(&anchorSpec, "anchor", "static:0,0", "anchor motion, kind:a,b,...")
	}
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.Int64Var(&seed, "seed", 0, "random seed")
}

// resolveConfig layers defaults, --preset, --config and explicitly set flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("anchor") {
		spec, err := anchor.Parse(anchorSpec)
		if err != nil {
			return nil, err
		}
		cfg.Anchor = spec
	}
	if changed("nodes") {
		cfg.Chain.Nodes = nodes
	}
	if changed("rest-length") {
		cfg.Chain.RestLength = restLength
	}
	if changed("iterations") {
		cfg.Chain.Iterations = iterations
	}
	if changed("damping") {
		cfg.Chain.Damping = damping
	}
	if changed("gravity") {
		cfg.Chain.Gravity = gravity
	}
	if changed("thickness") {
		cfg.Chain.Thickness = thickness
	}
	if changed("dt") {
		cfg.Run.Dt = dt
	}
	if changed("time") {
		cfg.Run.Duration = duration
	}
	if changed("seed") {
		cfg.Run.Seed = seed
	}
	if changed("images") {
		cfg.ImageDir = imageDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPendant builds the chain for cfg. Interactive hosts also get the default
// bob image and an image provider.
func newPendant(cfg *config.Config, interactive bool) (*pendant.Pendant, *bobimage.Provider, error) {
	src, err := cfg.Anchor.Build()
	if err != nil {
		return nil, nil, err
	}

	opts := []pendant.Option{pendant.WithLogger(slog.Default())}
	var provider *bobimage.Provider
	if interactive {
		opts = append(opts, pendant.WithDefaultImage(bobimage.Default(bobimage.DefaultMaxSize/4)))
		provider = bobimage.NewProvider(cfg.ImageDir)
		provider.Logger = slog.Default()
	}

	p, err := pendant.New(cfg.Chain.Params(), src, opts...)
	if err != nil {
		return nil, nil, err
	}
	return p, provider, nil
}
