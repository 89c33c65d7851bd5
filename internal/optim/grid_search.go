package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/pendant/internal/chain"
)

// RunFunc runs one chain and returns its metrics.
type RunFunc func(ctx context.Context, p chain.Params) (map[string]float64, error)

// GridSearch tries every combination of the given parameter values and
// keeps the one with the lowest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of runs a Search makes.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the best parameters and their metric value. Combinations
// that fail validation are skipped; a run error or cancellation stops the
// search.
func (g *GridSearch) Search(ctx context.Context, base chain.Params, run RunFunc, metricName string) (chain.Params, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return base, 0, fmt.Errorf("optim: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	bestParams := base
	found := false

	err := g.searchRecursive(ctx, 0, base, func(p chain.Params) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		metrics, err := run(ctx, p)
		if err != nil {
			return err
		}
		val, ok := metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: run produced no metric %q", metricName)
		}
		if val < best {
			best, bestParams, found = val, p, true
		}
		return nil
	})
	if err != nil {
		return bestParams, best, err
	}
	if !found {
		return base, 0, errors.New("optim: no valid parameter combination")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current chain.Params, visit func(chain.Params) error) error {
	if depth == len(g.paramNames) {
		return visit(current)
	}

	for _, val := range g.ranges[depth] {
		next, err := current.SetParam(g.paramNames[depth], val)
		if err != nil {
			if errors.Is(err, chain.ErrNodeCount) || errors.Is(err, chain.ErrRestLength) || errors.Is(err, chain.ErrParameterBounds) {
				continue
			}
			return err
		}
		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}

// ParseAxis reads "name=lo:hi:n" into a parameter name and n evenly spaced
// values, or "name=v1,v2,..." into an explicit list.
func ParseAxis(text string) (string, []float64, error) {
	name, spec, ok := strings.Cut(text, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("optim: axis %q is not name=values", text)
	}

	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return "", nil, fmt.Errorf("optim: axis %q: %w", text, err)
		}
		if n < 1 {
			return "", nil, fmt.Errorf("optim: axis %q needs at least one value", text)
		}
		if n == 1 {
			return name, []float64{lo}, nil
		}
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		return name, vals, nil
	}

	var vals []float64
	for _, f := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: axis %q: %w", text, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}
