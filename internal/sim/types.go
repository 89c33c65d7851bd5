package sim

import (
	"fmt"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
)

type Metric interface {
	Name() string
	Observe(f pendant.Frame)
	Value() float64
	Reset()
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	ValidateState bool
	// Record keeps every frame's node positions in the Result. Sweeps turn
	// it off and keep only metrics.
	Record bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10.0,
		ValidateState: true,
		Record:        true,
	}
}

// Result holds one run. Index 0 of the recorded series is the initial state.
type Result struct {
	Times      []float64
	Anchors    []chain.Vec2
	Nodes      [][]chain.Vec2
	Resting    []bool
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Bob returns the bob trajectory.
func (r *Result) Bob() []chain.Vec2 {
	out := make([]chain.Vec2, len(r.Nodes))
	for i, nodes := range r.Nodes {
		if len(nodes) > 0 {
			out[i] = nodes[len(nodes)-1]
		}
	}
	return out
}

// Final returns the node positions of the last recorded frame.
func (r *Result) Final() []chain.Vec2 {
	if len(r.Nodes) == 0 {
		return nil
	}
	return r.Nodes[len(r.Nodes)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
