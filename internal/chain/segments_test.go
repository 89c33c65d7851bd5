package chain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pendant/internal/chain"
)

var _ = Describe("Smoother", func() {
	It("derives midpoint, length and angle per link in chain order", func() {
		s := stateAt(10, chain.V(0, 0), chain.V(0, -10), chain.V(10, -10))
		sm := chain.NewSmoother(1, 360)

		segs := sm.Derive(s)
		Expect(segs).To(HaveLen(2))
		Expect(segs[0].Midpoint).To(Equal(chain.V(0, -5)))
		Expect(segs[0].Length).To(Equal(10.0))
		Expect(segs[0].RawAngle).To(BeNumerically("~", -90, 1e-12))
		Expect(segs[1].Midpoint).To(Equal(chain.V(5, -10)))
		Expect(segs[1].RawAngle).To(BeNumerically("~", 0, 1e-12))
		Expect(segs[1].Angle).To(BeNumerically("~", 0, 1e-12))
	})

	It("rate limits and blends toward the raw angle", func() {
		s := stateAt(10, chain.V(0, 0), chain.V(10, 0))
		sm := chain.NewSmoother(0.1, 5)

		segs := sm.Derive(s)
		Expect(segs[0].RawAngle).To(BeNumerically("~", 0, 1e-12))
		Expect(segs[0].Angle).To(BeNumerically("~", -89.5, 1e-9))

		segs = sm.Derive(s)
		Expect(segs[0].Angle).To(BeNumerically("~", -89.0, 1e-9))
	})

	It("turns the short way across the ±180 seam", func() {
		sm := chain.NewSmoother(0.1, 5)
		sm.Reset(1)
		// walk the emitted angle to just under 180
		s := stateAt(10, chain.V(0, 0), chain.V(-10, 0.0001))
		for i := 0; i < 2000; i++ {
			sm.Derive(s)
		}
		Expect(sm.Angles()[0]).To(BeNumerically(">", 179))

		across := stateAt(10, chain.V(0, 0), chain.V(-10, -0.5))
		segs := sm.Derive(across)
		Expect(segs[0].RawAngle).To(BeNumerically("<", -177))
		Expect(segs[0].Angle).To(Or(BeNumerically(">", 179), BeNumerically("<", -179)))
	})

	It("keeps the previous angle for a zero-length link", func() {
		sm := chain.NewSmoother(0.1, 5)
		sm.Reset(1)
		s := stateAt(10, chain.V(2, 2), chain.V(2, 2))

		segs := sm.Derive(s)
		Expect(segs[0].Length).To(Equal(0.0))
		Expect(segs[0].Angle).To(Equal(chain.RestAngle))
		Expect(segs[0].RawAngle).To(Equal(chain.RestAngle))
		Expect(segs[0].Midpoint).To(Equal(chain.V(2, 2)))
	})

	DescribeTable("DeltaAngle",
		func(from, to, want float64) {
			Expect(chain.DeltaAngle(from, to)).To(BeNumerically("~", want, 1e-9))
		},
		Entry("simple", 10.0, 30.0, 20.0),
		Entry("negative", 30.0, 10.0, -20.0),
		Entry("across seam forward", 179.0, -179.0, 2.0),
		Entry("across seam backward", -179.0, 179.0, -2.0),
		Entry("half turn", 0.0, 180.0, 180.0),
		Entry("multiple turns", 0.0, 725.0, 5.0),
	)

	DescribeTable("WrapAngle",
		func(in, want float64) {
			Expect(chain.WrapAngle(in)).To(BeNumerically("~", want, 1e-9))
		},
		Entry("in range", 45.0, 45.0),
		Entry("just over", 180.02, -179.98),
		Entry("minus half turn", -180.0, 180.0),
		Entry("large negative", -540.0, 180.0),
	)
})
