package metrics

import (
	"math"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
	"github.com/san-kum/pendant/internal/sim"
)

var (
	_ sim.Metric = (*PeakBobSpeed)(nil)
	_ sim.Metric = (*RestRatio)(nil)
	_ sim.Metric = (*AnchorLag)(nil)
)

// PeakBobSpeed is the fastest the bob moved between two frames, in units/s.
type PeakBobSpeed struct {
	peak  float64
	last  chain.Vec2
	lastT float64
	seen  bool
}

func NewPeakBobSpeed() *PeakBobSpeed { return &PeakBobSpeed{} }

func (m *PeakBobSpeed) Name() string { return "peak_bob_speed" }

func (m *PeakBobSpeed) Observe(f pendant.Frame) {
	if m.seen && f.Time > m.lastT && !f.Reinitialized {
		v := f.Bob.Sub(m.last).Len() / (f.Time - m.lastT)
		m.peak = math.Max(m.peak, v)
	}
	m.last, m.lastT, m.seen = f.Bob, f.Time, true
}

func (m *PeakBobSpeed) Value() float64 { return m.peak }

func (m *PeakBobSpeed) Reset() { *m = PeakBobSpeed{} }

// RestRatio is the fraction of ticks on which the bob was brought to rest.
type RestRatio struct {
	resting int
	samples int
}

func NewRestRatio() *RestRatio { return &RestRatio{} }

func (m *RestRatio) Name() string { return "rest_ratio" }

func (m *RestRatio) Observe(f pendant.Frame) {
	m.samples++
	if f.Resting {
		m.resting++
	}
}

func (m *RestRatio) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.resting) / float64(m.samples)
}

func (m *RestRatio) Reset() {
	m.resting = 0
	m.samples = 0
}

// AnchorLag is the mean horizontal distance between bob and anchor.
type AnchorLag struct {
	sum     float64
	samples int
}

func NewAnchorLag() *AnchorLag { return &AnchorLag{} }

func (m *AnchorLag) Name() string { return "anchor_lag" }

func (m *AnchorLag) Observe(f pendant.Frame) {
	m.sum += math.Abs(f.Bob[0] - f.Anchor[0])
	m.samples++
}

func (m *AnchorLag) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *AnchorLag) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default returns the standard metric set for a chain with the given
// parameters.
func Default(p chain.Params) []sim.Metric {
	return []sim.Metric{
		NewMaxStretch(p.RestLength),
		NewMeanStretch(p.RestLength),
		NewPeakBobSpeed(),
		NewRestRatio(),
		NewAnchorLag(),
	}
}
