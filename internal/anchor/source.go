// Package anchor provides the positions the top of the chain follows.
package anchor

import (
	"math"

	"github.com/san-kum/pendant/internal/chain"
)

// Source supplies the anchor position for simulation time t (seconds).
// Interactive sources ignore t and report the latest pointer position.
type Source interface {
	Position(t float64) chain.Vec2
}

// Func adapts a plain function to Source.
type Func func(t float64) chain.Vec2

func (f Func) Position(t float64) chain.Vec2 { return f(t) }

// Static holds the anchor at one point.
type Static struct {
	At chain.Vec2
}

func (s Static) Position(float64) chain.Vec2 { return s.At }

// Linear moves from From to To over Duration seconds, then holds at To.
type Linear struct {
	From, To chain.Vec2
	Duration float64
}

func (l Linear) Position(t float64) chain.Vec2 {
	if l.Duration <= 0 || t >= l.Duration {
		return l.To
	}
	if t <= 0 {
		return l.From
	}
	return l.From.Add(l.To.Sub(l.From).Mul(t / l.Duration))
}

// Circle orbits Center counter-clockwise, starting on the +x side.
type Circle struct {
	Center chain.Vec2
	Radius float64
	Period float64
}

func (c Circle) Position(t float64) chain.Vec2 {
	if c.Period <= 0 {
		return c.Center.Add(chain.V(c.Radius, 0))
	}
	phase := 2 * math.Pi * t / c.Period
	return c.Center.Add(chain.V(c.Radius*math.Cos(phase), c.Radius*math.Sin(phase)))
}

// Sway swings horizontally around Center with a sine of the given amplitude
// and frequency (Hz).
type Sway struct {
	Center    chain.Vec2
	Amplitude float64
	Frequency float64
}

func (s Sway) Position(t float64) chain.Vec2 {
	return s.Center.Add(chain.V(s.Amplitude*math.Sin(2*math.Pi*s.Frequency*t), 0))
}

// Step sits at From until time At, then jumps to To.
type Step struct {
	From, To chain.Vec2
	At       float64
}

func (s Step) Position(t float64) chain.Vec2 {
	if t < s.At {
		return s.From
	}
	return s.To
}

// Pointer reports whatever position was last set, typically from mouse input.
// It is owned by the tick loop like the chain itself.
type Pointer struct {
	at chain.Vec2
}

func NewPointer(at chain.Vec2) *Pointer { return &Pointer{at: at} }

func (p *Pointer) Set(at chain.Vec2) { p.at = at }

func (p *Pointer) Position(float64) chain.Vec2 { return p.at }
