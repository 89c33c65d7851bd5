package chain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pendant/internal/chain"
)

var _ = Describe("State", func() {
	Describe("NewState", func() {
		It("hangs the chain straight down from the anchor with zero velocity", func() {
			anchor := chain.V(12.5, -3)
			s, err := chain.NewState(5, 10, anchor)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(5))

			for i, n := range s.Nodes {
				Expect(n.Pos).To(Equal(chain.V(12.5, -3-10*float64(i))))
				Expect(n.Prev).To(Equal(n.Pos))
			}
			Expect(s.Bob()).To(Equal(chain.V(12.5, -43)))
		})

		DescribeTable("rejects invalid shapes",
			func(n int, rest float64, want error) {
				_, err := chain.NewState(n, rest, chain.V(0, 0))
				Expect(err).To(MatchError(want))
			},
			Entry("single node", 1, 10.0, chain.ErrNodeCount),
			Entry("no nodes", 0, 10.0, chain.ErrNodeCount),
			Entry("zero rest length", 3, 0.0, chain.ErrRestLength),
			Entry("negative rest length", 3, -1.0, chain.ErrRestLength),
		)
	})

	Describe("Reset", func() {
		It("discards prior state regardless of its contents", func() {
			s, err := chain.NewState(4, 10, chain.V(0, 0))
			Expect(err).NotTo(HaveOccurred())
			for i := range s.Nodes {
				s.Nodes[i].Pos = chain.V(float64(i)*7, 99)
				s.Nodes[i].Prev = chain.V(-5, float64(i))
			}

			Expect(s.Reset(6, 2.5, chain.V(1, 1))).To(Succeed())
			fresh, _ := chain.NewState(6, 2.5, chain.V(1, 1))
			Expect(s.Nodes).To(Equal(fresh.Nodes))
			Expect(s.RestLength).To(Equal(2.5))
		})
	})

	Describe("IsValid", func() {
		It("flags NaN positions", func() {
			s, _ := chain.NewState(3, 10, chain.V(0, 0))
			Expect(s.IsValid()).To(BeTrue())
			s.Nodes[2].Pos = chain.V(nan(), 0)
			Expect(s.IsValid()).To(BeFalse())
		})
	})
})
