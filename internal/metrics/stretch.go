package metrics

import (
	"math"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
	"github.com/san-kum/pendant/internal/sim"
)

var (
	_ sim.Metric = (*MaxStretch)(nil)
	_ sim.Metric = (*MeanStretch)(nil)
)

// MaxStretch is the largest relative link-length error seen, |len-rest|/rest.
type MaxStretch struct {
	rest float64
	max  float64
}

func NewMaxStretch(rest float64) *MaxStretch {
	return &MaxStretch{rest: rest}
}

func (m *MaxStretch) Name() string { return "max_stretch" }

func (m *MaxStretch) Observe(f pendant.Frame) {
	for _, seg := range f.Segments {
		m.max = math.Max(m.max, stretch(seg, m.rest))
	}
}

func (m *MaxStretch) Value() float64 { return m.max }
func (m *MaxStretch) Reset()         { m.max = 0 }

// MeanStretch averages the relative link-length error over every link and
// tick.
type MeanStretch struct {
	rest    float64
	sum     float64
	samples int
}

func NewMeanStretch(rest float64) *MeanStretch {
	return &MeanStretch{rest: rest}
}

func (m *MeanStretch) Name() string { return "mean_stretch" }

func (m *MeanStretch) Observe(f pendant.Frame) {
	for _, seg := range f.Segments {
		m.sum += stretch(seg, m.rest)
		m.samples++
	}
}

func (m *MeanStretch) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStretch) Reset() {
	m.sum = 0
	m.samples = 0
}

func stretch(seg chain.SegmentTransform, rest float64) float64 {
	if rest <= 0 {
		return 0
	}
	return math.Abs(seg.Length-rest) / rest
}
