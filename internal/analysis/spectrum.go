package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/pendant/internal/chain"
)

// ErrTooShort is returned when a signal has too few samples to analyse.
var ErrTooShort = errors.New("analysis: need at least 4 samples")

// PowerSpectrum returns |X[k]|² for k in [0, n/2] of the mean-removed,
// Hann-windowed signal.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 1.0
		if n > 1 {
			w = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(spectrum[k])
		ps[k] = a * a
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC bin
// and its power. Resolution is 1/(n·dt).
func DominantFrequency(samples []float64, dt float64) (float64, float64, error) {
	if len(samples) < 4 {
		return 0, 0, ErrTooShort
	}
	if dt <= 0 {
		return 0, 0, errors.New("analysis: dt must be positive")
	}

	ps := PowerSpectrum(samples)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) / (float64(len(samples)) * dt), ps[best], nil
}

// Offsets returns bob.x - anchor.x per frame.
func Offsets(anchors, bob []chain.Vec2) []float64 {
	n := min(len(anchors), len(bob))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = bob[i][0] - anchors[i][0]
	}
	return out
}
