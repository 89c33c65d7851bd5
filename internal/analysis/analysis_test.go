package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pendant/internal/chain"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dt   float64
		n    int
	}{
		{"2Hz", 2, 1.0 / 64, 256},
		{"0.5Hz", 0.5, 1.0 / 60, 600},
		{"odd length", 3, 0.01, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := sine(tt.freq, tt.dt, tt.n)
			for i := range samples {
				samples[i] += 7 // offset must not win as DC
			}
			f, power, err := DominantFrequency(samples, tt.dt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			res := 1 / (float64(tt.n) * tt.dt)
			if math.Abs(f-tt.freq) > res {
				t.Errorf("frequency = %v, want %v ± %v", f, tt.freq, res)
			}
			if power <= 0 {
				t.Errorf("power = %v, want positive", power)
			}
		})
	}
}

func TestDominantFrequencyErrors(t *testing.T) {
	if _, _, err := DominantFrequency([]float64{1, 2}, 0.1); err != ErrTooShort {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
	if _, _, err := DominantFrequency(make([]float64, 8), 0); err == nil {
		t.Error("expected error for zero dt")
	}
}

func TestPowerSpectrumLength(t *testing.T) {
	if got := len(PowerSpectrum(make([]float64, 10))); got != 6 {
		t.Errorf("spectrum length = %d, want 6", got)
	}
	if PowerSpectrum(nil) != nil {
		t.Error("empty signal should give nil spectrum")
	}
	for k, v := range PowerSpectrum([]float64{5, 5, 5, 5, 5, 5}) {
		if v > 1e-20 {
			t.Errorf("constant signal has power %v at bin %d", v, k)
		}
	}
}

func TestOffsets(t *testing.T) {
	anchors := []chain.Vec2{chain.V(10, 0), chain.V(20, 0), chain.V(30, 0)}
	bob := []chain.Vec2{chain.V(5, -100), chain.V(25, -100)}
	got := Offsets(anchors, bob)
	if len(got) != 2 || got[0] != -5 || got[1] != 5 {
		t.Errorf("Offsets = %v, want [-5 5]", got)
	}
}

func TestCrossingsAndPeriod(t *testing.T) {
	dt := 0.01
	n := 400
	times := make([]float64, n)
	signal := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
		signal[i] = math.Sin(2*math.Pi*times[i] - 0.3) // period 1s
	}

	c := Crossings(times, signal)
	if len(c) != 4 {
		t.Fatalf("expected 4 rising crossings, got %d (%v)", len(c), c)
	}
	if p := MeanPeriod(c); math.Abs(p-1) > 1e-3 {
		t.Errorf("period = %v, want 1", p)
	}
	if MeanPeriod(c[:1]) != 0 {
		t.Error("one crossing should give no period")
	}
}

func TestBobPhase(t *testing.T) {
	times := []float64{0, 0.5, 1}
	anchors := []chain.Vec2{chain.V(0, 0), chain.V(0, 0), chain.V(0, 0)}
	bob := []chain.Vec2{chain.V(0, -10), chain.V(2, -10), chain.V(3, -10)}

	p := BobPhase(times, anchors, bob)
	if len(p.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(p.Points))
	}
	if p.Points[0] != (Point{X: 2, Y: 4}) || p.Points[1] != (Point{X: 3, Y: 2}) {
		t.Errorf("points = %v", p.Points)
	}

	art := p.ToASCII(20, 8)
	if strings.Count(art, "\n") != 8 {
		t.Errorf("expected 8 rows, got:\n%s", art)
	}
	if !strings.Contains(art, "•") {
		t.Error("plot has no points")
	}
	if (&PhasePortrait{}).ToASCII(20, 8) != "" {
		t.Error("empty portrait should render nothing")
	}
}
