package chain

import "math"

// SegmentTransform places one link for the renderer: a thin rectangle of
// Length centred on Midpoint and rotated by Angle.
type SegmentTransform struct {
	Midpoint Vec2
	Length   float64
	RawAngle float64 // degrees, direction from node i to node i+1
	Angle    float64 // degrees, smoothed; this is what gets drawn
}

// RestAngle is the direction of a link in a chain hanging straight down.
const RestAngle = -90.0

// Smoother keeps the last emitted angle per segment so that drawn links turn
// at most MaxRotationChange*RotationDamping degrees per tick.
type Smoother struct {
	RotationDamping   float64
	MaxRotationChange float64

	angles []float64
}

func NewSmoother(rotationDamping, maxRotationChange float64) *Smoother {
	return &Smoother{
		RotationDamping:   rotationDamping,
		MaxRotationChange: maxRotationChange,
	}
}

// Reset sizes the smoother for n segments, all at RestAngle.
func (sm *Smoother) Reset(n int) {
	if cap(sm.angles) >= n {
		sm.angles = sm.angles[:n]
	} else {
		sm.angles = make([]float64, n)
	}
	for i := range sm.angles {
		sm.angles[i] = RestAngle
	}
}

// Angles returns a copy of the last emitted angles.
func (sm *Smoother) Angles() []float64 {
	out := make([]float64, len(sm.angles))
	copy(out, sm.angles)
	return out
}

// Derive computes one transform per adjacent node pair, in chain order, and
// advances the smoothing state. A zero-length link keeps its previous angle.
func (sm *Smoother) Derive(s *State) []SegmentTransform {
	n := len(s.Nodes) - 1
	if len(sm.angles) != n {
		sm.Reset(n)
	}

	out := make([]SegmentTransform, n)
	for i := 0; i < n; i++ {
		a, b := s.Nodes[i].Pos, s.Nodes[i+1].Pos
		d := b.Sub(a)
		length := d.Len()

		prev := sm.angles[i]
		raw := prev
		if length > 0 {
			raw = math.Atan2(d[1], d[0]) * 180 / math.Pi
		}

		step := DeltaAngle(prev, raw)
		step = math.Max(-sm.MaxRotationChange, math.Min(sm.MaxRotationChange, step))
		angle := WrapAngle(prev + step*sm.RotationDamping)
		sm.angles[i] = angle

		out[i] = SegmentTransform{
			Midpoint: a.Add(b).Mul(0.5),
			Length:   length,
			RawAngle: raw,
			Angle:    angle,
		}
	}
	return out
}

// DeltaAngle returns the shortest signed difference to - from, in degrees,
// in (-180, 180].
func DeltaAngle(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return d
}

// WrapAngle maps a into (-180, 180].
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
