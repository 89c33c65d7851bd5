package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
)

// Simulator drives a Pendant headlessly for a fixed duration.
type Simulator struct {
	metrics   []Metric
	observers []pendant.Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]pendant.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)             { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o pendant.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, p *pendant.Pendant, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	result := &Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if cfg.Record {
		result.Times = make([]float64, 0, steps+1)
		result.Anchors = make([]chain.Vec2, 0, steps+1)
		result.Nodes = make([][]chain.Vec2, 0, steps+1)
		result.Resting = make([]bool, 0, steps+1)

		result.Times = append(result.Times, p.Time())
		result.Anchors = append(result.Anchors, p.Source().Position(p.Time()))
		result.Nodes = append(result.Nodes, p.Nodes())
		result.Resting = append(result.Resting, false)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		f, err := p.Tick(cfg.Dt)
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		if cfg.ValidateState && !p.Valid() {
			result.Errors = append(result.Errors, SimError{Time: f.Time, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		for _, m := range s.metrics {
			m.Observe(f)
		}
		for _, obs := range s.observers {
			obs.OnStep(f)
		}

		result.StepsTaken++
		if cfg.Record {
			result.Times = append(result.Times, f.Time)
			result.Anchors = append(result.Anchors, f.Anchor)
			result.Nodes = append(result.Nodes, f.Nodes)
			result.Resting = append(result.Resting, f.Resting)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback ticks until the duration elapses or callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, p *pendant.Pendant, cfg Config, callback func(pendant.Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		f, err := p.Tick(cfg.Dt)
		if err != nil {
			return err
		}
		if cfg.ValidateState && !p.Valid() {
			return SimError{Time: f.Time, Step: i, Message: "invalid state (NaN/Inf)"}
		}
		if !callback(f) {
			return nil
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
