package chain

import "fmt"

// Solver advances a State by one tick. It carries parameters only.
type Solver struct {
	params Params
}

func NewSolver(p Params) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Solver{params: p}, nil
}

func (sv *Solver) Params() Params { return sv.params }

// SetParams replaces the parameters. A node count change takes effect on the
// next Step, which re-seeds the chain.
func (sv *Solver) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	sv.params = p
	return nil
}

// Tick is the outcome of one Step.
type Tick struct {
	Segments      []SegmentTransform
	Resting       bool // rest policy zeroed the bob velocity
	Reinitialized bool // chain was re-seeded because the node count changed
}

// Step runs one full tick: integrate, relax, rest policy, derive.
func (sv *Solver) Step(s *State, sm *Smoother, anchor Vec2, dt float64) (Tick, error) {
	var tick Tick

	if len(s.Nodes) != sv.params.NodeCount {
		if err := s.Reset(sv.params.NodeCount, sv.params.RestLength, anchor); err != nil {
			return tick, fmt.Errorf("reinitialize chain: %w", err)
		}
		sm.Reset(sv.params.NodeCount - 1)
		tick.Reinitialized = true
	}
	s.RestLength = sv.params.RestLength
	sm.RotationDamping = sv.params.RotationDamping
	sm.MaxRotationChange = sv.params.MaxRotationChange

	sv.Integrate(s, anchor, dt)
	sv.Relax(s, anchor)
	tick.Resting = sv.ApplyRestPolicy(s)
	tick.Segments = sm.Derive(s)

	return tick, nil
}

// Integrate advances every free node with a damped Verlet step under gravity
// and pins node 0 to anchor. dt is not clamped; callers must bound it.
func (sv *Solver) Integrate(s *State, anchor Vec2, dt float64) {
	keep := 1 - sv.params.Damping
	fall := Vec2{0, -sv.params.Gravity * dt * dt}

	for i := 1; i < len(s.Nodes); i++ {
		n := &s.Nodes[i]
		v := n.Pos.Sub(n.Prev)
		n.Prev = n.Pos
		n.Pos = n.Pos.Add(v.Mul(keep)).Add(fall)
	}

	// node 0 never integrates; Prev only records where the anchor was
	s.Nodes[0].Prev = s.Nodes[0].Pos
	s.pin(anchor)
}

// Relax runs exactly Iterations Gauss-Seidel passes over the link distance
// constraints, in chain order, re-pinning node 0 after every pass. Coincident
// pairs are skipped for that pass.
func (sv *Solver) Relax(s *State, anchor Vec2) {
	last := len(s.Nodes) - 1
	rest := s.RestLength

	for k := 0; k < sv.params.Iterations; k++ {
		for i := 0; i < last; i++ {
			a, b := &s.Nodes[i], &s.Nodes[i+1]
			delta := b.Pos.Sub(a.Pos)
			dist := delta.Len()
			if !(dist > 0) {
				continue
			}
			corr := delta.Mul(0.5 * (dist - rest) / dist)
			if i != 0 {
				a.Pos = a.Pos.Add(corr)
			}
			b.Pos = b.Pos.Sub(corr)
		}
		s.pin(anchor)
	}
}

// ApplyRestPolicy zeroes the bob's implicit velocity when its speed this tick
// is below VelocityThreshold. No other node is touched. It reports whether the
// bob was brought to rest.
func (sv *Solver) ApplyRestPolicy(s *State) bool {
	bob := &s.Nodes[len(s.Nodes)-1]
	if bob.Velocity().Len() < sv.params.VelocityThreshold {
		bob.Prev = bob.Pos
		return true
	}
	return false
}
