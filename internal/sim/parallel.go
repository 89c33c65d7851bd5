package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
)

// Sweep runs one chain per value of a single parameter. Every run owns its
// own Pendant, anchor source and metrics, so runs never share state.
type Sweep struct {
	Base    chain.Params
	Anchor  anchor.Spec
	Param   string
	Values  []float64
	Metrics func(chain.Params) []Metric
	Workers int
}

type SweepResult struct {
	Value  float64
	Params chain.Params
	Result *Result
}

func (sw *Sweep) Run(ctx context.Context, cfg Config) ([]SweepResult, error) {
	out := make([]SweepResult, len(sw.Values))

	workers := sw.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, v := range sw.Values {
		i, v := i, v // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			params, err := sw.Base.SetParam(sw.Param, v)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
			}
			src, err := sw.Anchor.Build()
			if err != nil {
				return err
			}
			p, err := pendant.New(params, src)
			if err != nil {
				return err
			}

			s := New()
			if sw.Metrics != nil {
				for _, m := range sw.Metrics(params) {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, p, cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
			}
			out[i] = SweepResult{Value: v, Params: params, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Range returns n evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}
