package chain_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pendant/internal/chain"
)

func nan() float64 { return math.NaN() }

func mustSolver(p chain.Params) *chain.Solver {
	sv, err := chain.NewSolver(p)
	Expect(err).NotTo(HaveOccurred())
	return sv
}

func stillParams(nodes, iterations int) chain.Params {
	p := chain.DefaultParams()
	p.NodeCount = nodes
	p.Iterations = iterations
	p.Gravity = 0
	p.Damping = 0
	return p
}

func stateAt(rest float64, pts ...chain.Vec2) *chain.State {
	s := &chain.State{RestLength: rest, Anchor: pts[0]}
	for _, p := range pts {
		s.Nodes = append(s.Nodes, chain.Node{Pos: p, Prev: p})
	}
	return s
}

func maxLinkError(s *chain.State) float64 {
	worst := 0.0
	for i := 0; i+1 < len(s.Nodes); i++ {
		d := s.Nodes[i+1].Pos.Sub(s.Nodes[i].Pos).Len()
		worst = math.Max(worst, math.Abs(d-s.RestLength))
	}
	return worst
}

var _ = Describe("Solver", func() {
	Describe("Integrate", func() {
		It("pins node 0 to the anchor exactly", func() {
			sv := mustSolver(chain.DefaultParams())
			s, _ := chain.NewState(chain.DefaultNodeCount, 10, chain.V(0, 0))
			anchor := chain.V(123.456, -78.9)

			sv.Integrate(s, anchor, 1.0/60)
			Expect(s.Nodes[0].Pos).To(Equal(anchor))
			Expect(s.Anchor).To(Equal(anchor))
		})

		It("applies gravity as dt² displacement on resting nodes", func() {
			p := chain.DefaultParams()
			p.NodeCount = 3
			p.Damping = 0
			p.Gravity = 3600
			sv := mustSolver(p)
			s, _ := chain.NewState(3, 10, chain.V(0, 0))

			sv.Integrate(s, chain.V(0, 0), 1.0/60)
			Expect(s.Nodes[1].Pos.X()).To(Equal(0.0))
			Expect(s.Nodes[1].Pos.Y()).To(BeNumerically("~", -11, 1e-12))
			Expect(s.Nodes[2].Pos.Y()).To(BeNumerically("~", -21, 1e-12))
		})

		It("carries damped momentum", func() {
			p := stillParams(2, 0)
			p.Damping = 0.1
			sv := mustSolver(p)
			s := stateAt(10, chain.V(0, 0), chain.V(0, -10))
			s.Nodes[1].Prev = chain.V(-2, -10)

			sv.Integrate(s, chain.V(0, 0), 1.0/60)
			Expect(s.Nodes[1].Pos.X()).To(BeNumerically("~", 1.8, 1e-12))
			Expect(s.Nodes[1].Prev).To(Equal(chain.V(0, -10)))
		})

		It("fully arrests motion with damping 1", func() {
			p := stillParams(2, 0)
			p.Damping = 1
			sv := mustSolver(p)
			s := stateAt(10, chain.V(0, 0), chain.V(5, -10))
			s.Nodes[1].Prev = chain.V(0, -10)

			sv.Integrate(s, chain.V(0, 0), 1.0/60)
			Expect(s.Nodes[1].Pos).To(Equal(chain.V(5, -10)))
		})
	})

	Describe("Relax", func() {
		It("keeps node 0 on the anchor after every pass", func() {
			anchor := chain.V(3, 4)
			for k := 1; k <= 6; k++ {
				sv := mustSolver(stillParams(4, k))
				s := stateAt(10, chain.V(50, 50), chain.V(1, 2), chain.V(30, -7), chain.V(-4, 9))
				sv.Relax(s, anchor)
				Expect(s.Nodes[0].Pos).To(Equal(anchor), "after %d passes", k)
			}
		})

		It("converges the three node scenario to the rest length", func() {
			sv := mustSolver(stillParams(3, 50))
			s := stateAt(10, chain.V(0, 0), chain.V(5, 0), chain.V(5, 5))
			sm := chain.NewSmoother(0.1, 5)

			_, err := sv.Step(s, sm, chain.V(0, 0), 1.0/60)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Nodes[0].Pos).To(Equal(chain.V(0, 0)))
			Expect(s.Nodes[1].Pos.Sub(s.Nodes[0].Pos).Len()).To(BeNumerically("~", 10, 0.5))
			Expect(s.Nodes[2].Pos.Sub(s.Nodes[1].Pos).Len()).To(BeNumerically("~", 10, 0.5))
		})

		It("tightens as the iteration count grows", func() {
			start := []chain.Vec2{chain.V(0, 0), chain.V(4, 1), chain.V(9, -3), chain.V(2, -8), chain.V(-6, -5)}

			errAt := func(iterations int) float64 {
				sv := mustSolver(stillParams(len(start), iterations))
				s := stateAt(10, start...)
				sv.Relax(s, start[0])
				return maxLinkError(s)
			}

			e12, e200 := errAt(12), errAt(200)
			Expect(e200).To(BeNumerically("<=", e12))
			Expect(e200).To(BeNumerically("<", 1e-3))
		})

		It("is reproducible for a fixed input", func() {
			run := func() []chain.Node {
				sv := mustSolver(stillParams(4, 12))
				s := stateAt(10, chain.V(0, 0), chain.V(3, 3), chain.V(-2, 7), chain.V(8, 8))
				sv.Relax(s, chain.V(0, 0))
				return s.Nodes
			}
			Expect(run()).To(Equal(run()))
		})

		It("never produces NaN from coincident nodes", func() {
			sv := mustSolver(stillParams(4, 12))
			s := stateAt(10, chain.V(0, 0), chain.V(0, 0), chain.V(0, -10), chain.V(0, -10))
			sv.Relax(s, chain.V(0, 0))
			Expect(s.IsValid()).To(BeTrue())

			all := stateAt(10, chain.V(1, 1), chain.V(1, 1), chain.V(1, 1))
			mustSolver(stillParams(3, 12)).Relax(all, chain.V(1, 1))
			Expect(all.IsValid()).To(BeTrue())
		})
	})

	Describe("ApplyRestPolicy", func() {
		It("zeroes only the bob velocity below the threshold", func() {
			sv := mustSolver(stillParams(3, 0))
			s := stateAt(10, chain.V(0, 0), chain.V(0, -10), chain.V(0, -20))
			s.Nodes[1].Prev = chain.V(0.01, -10)
			s.Nodes[2].Prev = chain.V(0.01, -20)

			Expect(sv.ApplyRestPolicy(s)).To(BeTrue())
			Expect(s.Nodes[2].Velocity()).To(Equal(chain.V(0, 0)))
			Expect(s.Nodes[1].Prev).To(Equal(chain.V(0.01, -10)))
		})

		It("leaves a moving bob alone", func() {
			sv := mustSolver(stillParams(2, 0))
			s := stateAt(10, chain.V(0, 0), chain.V(0, -10))
			s.Nodes[1].Prev = chain.V(1, -10)

			Expect(sv.ApplyRestPolicy(s)).To(BeFalse())
			Expect(s.Nodes[1].Prev).To(Equal(chain.V(1, -10)))
		})

		It("holds a resting bob still while the anchor stays put", func() {
			sv := mustSolver(stillParams(2, 12))
			sm := chain.NewSmoother(0.1, 5)
			s := stateAt(10, chain.V(0, 0), chain.V(0, -10))
			s.Nodes[1].Prev = chain.V(0.01, -10)

			first, err := sv.Step(s, sm, chain.V(0, 0), 1.0/60)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Resting).To(BeTrue())
			held := s.Bob()

			_, err = sv.Step(s, sm, chain.V(0, 0), 1.0/60)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Bob().X()).To(BeNumerically("~", held.X(), 1e-6))
			Expect(s.Bob().Y()).To(BeNumerically("~", held.Y(), 1e-6))
		})
	})

	Describe("Step", func() {
		It("lags the bob behind a sudden anchor jump", func() {
			p := chain.DefaultParams()
			p.Gravity = 0
			p.Damping = 0.1
			sv := mustSolver(p)
			sm := chain.NewSmoother(p.RotationDamping, p.MaxRotationChange)
			s, _ := chain.NewState(p.NodeCount, p.RestLength, chain.V(0, 0))
			before := s.Bob()

			target := chain.V(100, 0)
			_, err := sv.Step(s, sm, target, 1.0/60)
			Expect(err).NotTo(HaveOccurred())

			moved := s.Bob().Sub(before)
			Expect(moved.Len()).To(BeNumerically(">", 0))
			Expect(moved.Len()).To(BeNumerically("<", 100))
			Expect(moved.Dot(target.Sub(before))).To(BeNumerically(">", 0))
		})

		It("re-seeds the chain and smoother when the node count changes", func() {
			p := chain.DefaultParams()
			sv := mustSolver(p)
			sm := chain.NewSmoother(p.RotationDamping, p.MaxRotationChange)
			s, _ := chain.NewState(p.NodeCount, p.RestLength, chain.V(0, 0))
			for i := 0; i < 30; i++ {
				_, err := sv.Step(s, sm, chain.V(float64(i)*5, 0), 1.0/60)
				Expect(err).NotTo(HaveOccurred())
			}

			p.NodeCount = 8
			Expect(sv.SetParams(p)).To(Succeed())
			tick, err := sv.Step(s, sm, chain.V(0, 0), 1.0/60)
			Expect(err).NotTo(HaveOccurred())
			Expect(tick.Reinitialized).To(BeTrue())
			Expect(s.Len()).To(Equal(8))
			Expect(tick.Segments).To(HaveLen(7))
			Expect(sm.Angles()).To(HaveLen(7))
		})

		It("stays finite under a long random-ish drag", func() {
			p := chain.DefaultParams()
			sv := mustSolver(p)
			sm := chain.NewSmoother(p.RotationDamping, p.MaxRotationChange)
			s, _ := chain.NewState(p.NodeCount, p.RestLength, chain.V(0, 0))

			for i := 0; i < 2000; i++ {
				t := float64(i) / 60
				anchor := chain.V(300*math.Sin(3*t), 150*math.Cos(7*t))
				_, err := sv.Step(s, sm, anchor, 1.0/60)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.IsValid()).To(BeTrue())
		})
	})

	Describe("NewSolver", func() {
		It("rejects invalid parameters", func() {
			p := chain.DefaultParams()
			p.RotationDamping = 2
			_, err := chain.NewSolver(p)
			Expect(err).To(MatchError(chain.ErrParameterBounds))
		})
	})
})
