package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/pendant"
)

func frame(t float64, bob chain.Vec2, lengths ...float64) pendant.Frame {
	f := pendant.Frame{Time: t, Bob: bob}
	for _, l := range lengths {
		f.Segments = append(f.Segments, chain.SegmentTransform{Length: l})
	}
	return f
}

func TestStretch(t *testing.T) {
	mx := NewMaxStretch(10)
	mean := NewMeanStretch(10)

	for _, f := range []pendant.Frame{
		frame(0, chain.V(0, 0), 10, 11),
		frame(1, chain.V(0, 0), 9.5, 10),
	} {
		mx.Observe(f)
		mean.Observe(f)
	}

	if math.Abs(mx.Value()-0.1) > 1e-12 {
		t.Errorf("max stretch = %v, want 0.1", mx.Value())
	}
	if math.Abs(mean.Value()-0.0375) > 1e-12 {
		t.Errorf("mean stretch = %v, want 0.0375", mean.Value())
	}

	mx.Reset()
	mean.Reset()
	if mx.Value() != 0 || mean.Value() != 0 {
		t.Error("reset did not clear stretch metrics")
	}
}

func TestPeakBobSpeed(t *testing.T) {
	m := NewPeakBobSpeed()

	m.Observe(frame(0, chain.V(0, 0)))
	if m.Value() != 0 {
		t.Errorf("first frame should not produce a speed, got %v", m.Value())
	}
	m.Observe(frame(0.5, chain.V(3, 4)))
	m.Observe(frame(1.0, chain.V(4, 4)))

	if math.Abs(m.Value()-10) > 1e-12 {
		t.Errorf("peak speed = %v, want 10", m.Value())
	}

	// a reseeded chain jumps; that is not motion
	jump := frame(1.5, chain.V(1000, 0))
	jump.Reinitialized = true
	m.Observe(jump)
	if math.Abs(m.Value()-10) > 1e-12 {
		t.Errorf("reinitialized frame counted: %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset did not clear peak speed")
	}
}

func TestRestRatio(t *testing.T) {
	m := NewRestRatio()
	for i, resting := range []bool{true, false, true, true} {
		f := frame(float64(i), chain.V(0, 0))
		f.Resting = resting
		m.Observe(f)
	}
	if m.Value() != 0.75 {
		t.Errorf("rest ratio = %v, want 0.75", m.Value())
	}
}

func TestAnchorLag(t *testing.T) {
	m := NewAnchorLag()

	f := frame(0, chain.V(-4, -100))
	f.Anchor = chain.V(0, 0)
	m.Observe(f)

	f = frame(1, chain.V(12, -100))
	f.Anchor = chain.V(10, 0)
	m.Observe(f)

	if m.Value() != 3 {
		t.Errorf("anchor lag = %v, want 3", m.Value())
	}
}

func TestDefault(t *testing.T) {
	ms := Default(chain.DefaultParams())
	seen := map[string]bool{}
	for _, m := range ms {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(ms) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(ms))
	}
}
