package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/config"
	"github.com/san-kum/pendant/internal/metrics"
	"github.com/san-kum/pendant/internal/pendant"
	"github.com/san-kum/pendant/internal/sim"
	"github.com/san-kum/pendant/internal/storage"
)

// Scenario is a scripted sequence of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero fields fall back to the preset, or to the
// defaults when no preset is named.
type ScenarioStep struct {
	Preset   string             `yaml:"preset"`
	Params   map[string]float64 `yaml:"params"`
	Anchor   string             `yaml:"anchor"` // kind:a,b,... as accepted by anchor.Parse
	Duration float64            `yaml:"duration"`
	Dt       float64            `yaml:"dt"`
	SaveAs   string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a full run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	params := cfg.Chain.Params()
	for k, v := range s.Params {
		next, err := params.SetParam(k, v)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", k, err)
		}
		params = next
	}
	cfg.Chain = config.FromParams(params)

	if s.Anchor != "" {
		spec, err := anchor.Parse(s.Anchor)
		if err != nil {
			return nil, err
		}
		cfg.Anchor = spec
	}
	if s.Dt > 0 {
		cfg.Run.Dt = s.Dt
	}
	if s.Duration > 0 {
		cfg.Run.Duration = s.Duration
	}
	return cfg, cfg.Validate()
}

// StepResult is the outcome of one scenario step. RunID is empty unless the
// step was saved.
type StepResult struct {
	Step   int
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// Runner executes scenarios. Steps with SaveAs are written to Store when it
// is set.
type Runner struct {
	Store  *storage.Store
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run executes every step in order and stops at the first failure, returning
// the results gathered so far.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := r.logger().With("scenario", scenario.Name)

	for i, step := range scenario.Steps {
		log.Info("running step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := runConfig(ctx, cfg, step.SaveAs != "")
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := StepResult{Step: i + 1, Config: cfg, Result: res}
		if step.SaveAs != "" && r.Store != nil {
			id, err := r.Store.Save(storage.RunMetadata{
				Name:     step.SaveAs,
				Preset:   cfg.Preset,
				Anchor:   cfg.Anchor.String(),
				Params:   cfg.Chain.Params(),
				Seed:     cfg.Run.Seed,
				Dt:       cfg.Run.Dt,
				Duration: cfg.Run.Duration,
			}, res)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			out.RunID = id
			log.Info("saved step", "step", i+1, "id", id)
		}
		results = append(results, out)
	}

	return results, nil
}

func runConfig(ctx context.Context, cfg *config.Config, record bool) (*sim.Result, error) {
	src, err := cfg.Anchor.Build()
	if err != nil {
		return nil, err
	}
	params := cfg.Chain.Params()
	p, err := pendant.New(params, src)
	if err != nil {
		return nil, err
	}

	s := sim.New()
	for _, m := range metrics.Default(params) {
		s.AddMetric(m)
	}

	simCfg := sim.DefaultConfig()
	simCfg.Dt = cfg.Run.Dt
	simCfg.Duration = cfg.Run.Duration
	simCfg.Seed = cfg.Run.Seed
	simCfg.Record = record
	return s.Run(ctx, p, simCfg)
}

// MonteCarloConfig perturbs the dynamic chain parameters of Base by up to
// ±Perturbation (relative) per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID    int
	Damping    float64
	Gravity    float64
	MaxStretch float64
	Stable     bool // no invalid state and the chain stayed within twice its length
}

// RunMonteCarlo runs NumTrials perturbed copies of Base.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		cfg.Base = config.DefaultConfig()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func(v float64) float64 { return v * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation) }

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		run := cfg.Base.Clone()
		run.Chain.Damping = min(max(jitter(run.Chain.Damping), 0), 1)
		run.Chain.Gravity = jitter(run.Chain.Gravity)

		res, err := runConfig(ctx, run, false)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		stretch := res.Metrics["max_stretch"]
		results = append(results, MonteCarloResult{
			TrialID:    trial,
			Damping:    run.Chain.Damping,
			Gravity:    run.Chain.Gravity,
			MaxStretch: stretch,
			Stable:     len(res.Errors) == 0 && stretch < 1,
		})
	}

	return results, nil
}

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
