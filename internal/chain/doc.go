// Package chain implements the rope solver behind the pendant.
//
// A chain is a linear run of nodes hanging from an anchor. Node 0 is pinned
// to the anchor and the last node carries the bob. Motion is computed with
// position-based dynamics:
//
//   - [Solver.Integrate]: Verlet step with implicit velocity (Pos - Prev)
//   - [Solver.Relax]: Gauss-Seidel relaxation of the link distance constraints
//   - [Solver.ApplyRestPolicy]: zeroes the bob velocity below a threshold
//   - [Smoother.Derive]: per-segment midpoint, length and rate-limited angle
//
// [Solver.Step] runs all four in that order, which is load-bearing: relaxation
// works on integrated positions and the rest check reads relaxed positions.
//
// # Example
//
//	p := chain.DefaultParams()
//	sv, _ := chain.NewSolver(p)
//	st, _ := chain.NewState(p.NodeCount, p.RestLength, anchor)
//	sm := chain.NewSmoother(p.RotationDamping, p.MaxRotationChange)
//	tick, _ := sv.Step(st, sm, anchor, dt)
//
// # Thread Safety
//
// Solver holds only parameters. State and Smoother are mutated in place and
// must be owned by a single goroutine for the duration of a tick.
package chain
