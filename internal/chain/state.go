package chain

import "fmt"

// Node is one point of the chain. Its velocity is implicit: Pos - Prev.
type Node struct {
	Pos  Vec2
	Prev Vec2
}

func (n Node) Velocity() Vec2 { return n.Pos.Sub(n.Prev) }

// State is the mutable chain: node positions, the uniform link rest length
// and the anchor the first node is pinned to.
type State struct {
	Nodes      []Node
	RestLength float64
	Anchor     Vec2
}

// NewState returns a chain of n nodes hanging straight down from anchor.
func NewState(n int, restLength float64, anchor Vec2) (*State, error) {
	s := &State{}
	if err := s.Reset(n, restLength, anchor); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset re-seeds the chain in a vertical line below anchor, spaced by
// restLength, with zero velocity. Prior contents are discarded.
func (s *State) Reset(n int, restLength float64, anchor Vec2) error {
	if n < 2 {
		return fmt.Errorf("%w, got %d", ErrNodeCount, n)
	}
	if !(restLength > 0) {
		return fmt.Errorf("%w, got %g", ErrRestLength, restLength)
	}

	if cap(s.Nodes) >= n {
		s.Nodes = s.Nodes[:n]
	} else {
		s.Nodes = make([]Node, n)
	}
	for i := range s.Nodes {
		p := anchor.Add(Vec2{0, -restLength * float64(i)})
		s.Nodes[i] = Node{Pos: p, Prev: p}
	}
	s.RestLength = restLength
	s.Anchor = anchor
	return nil
}

func (s *State) Len() int { return len(s.Nodes) }

// Bob returns the position of the free end.
func (s *State) Bob() Vec2 { return s.Nodes[len(s.Nodes)-1].Pos }

// Positions copies the current node positions into dst, growing it if needed.
func (s *State) Positions(dst []Vec2) []Vec2 {
	if cap(dst) < len(s.Nodes) {
		dst = make([]Vec2, len(s.Nodes))
	}
	dst = dst[:len(s.Nodes)]
	for i, n := range s.Nodes {
		dst[i] = n.Pos
	}
	return dst
}

// IsValid reports whether every position and previous position is finite.
func (s *State) IsValid() bool {
	for _, n := range s.Nodes {
		if !finite(n.Pos) || !finite(n.Prev) {
			return false
		}
	}
	return true
}

func (s *State) Clone() *State {
	c := &State{
		Nodes:      make([]Node, len(s.Nodes)),
		RestLength: s.RestLength,
		Anchor:     s.Anchor,
	}
	copy(c.Nodes, s.Nodes)
	return c
}

// pin places node 0 on the anchor.
func (s *State) pin(anchor Vec2) {
	s.Anchor = anchor
	s.Nodes[0].Pos = anchor
}
