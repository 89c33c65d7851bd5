// Package pendant is the entry point hosts drive once per frame.
//
// A Pendant owns one chain, its angle smoother, the anchor source and the
// bob image. Hosts call Tick with the frame time and draw the returned Frame.
// Nothing in a Pendant is safe for concurrent use; all calls, including the
// callbacks returned by Bindings, belong on the goroutine that calls Tick.
package pendant

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/san-kum/pendant/internal/anchor"
	"github.com/san-kum/pendant/internal/bobimage"
	"github.com/san-kum/pendant/internal/chain"
)

// ErrNoDefaultImage is returned by ResetBobImage when no default image was
// configured.
var ErrNoDefaultImage = errors.New("pendant: no default bob image")

// Frame is everything a renderer needs for one tick. Nodes and Segments are
// fresh slices owned by the caller.
type Frame struct {
	Time          float64
	Anchor        chain.Vec2
	Bob           chain.Vec2
	Nodes         []chain.Vec2
	Segments      []chain.SegmentTransform
	Resting       bool
	Reinitialized bool
	ImageChanged  bool // the bob image changed since the previous frame
}

type Observer interface {
	OnStep(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnStep(f Frame) { fn(f) }

type Option func(*Pendant)

// WithDefaultImage sets the image ResetBobImage returns to. It also becomes
// the initial bob image.
func WithDefaultImage(img image.Image) Option {
	return func(p *Pendant) {
		p.defaultBob = img
		p.bob = img
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pendant) { p.log = l }
}

type Pendant struct {
	solver   *chain.Solver
	state    *chain.State
	smoother *chain.Smoother
	source   anchor.Source

	time      float64
	observers []Observer

	bob        image.Image
	defaultBob image.Image
	pending    []<-chan bobimage.Result
	imageDirty bool

	log *slog.Logger
}

// New builds a chain hanging straight down from the source's position at
// time zero.
func New(params chain.Params, src anchor.Source, opts ...Option) (*Pendant, error) {
	if src == nil {
		return nil, fmt.Errorf("pendant: nil anchor source")
	}
	solver, err := chain.NewSolver(params)
	if err != nil {
		return nil, err
	}
	state, err := chain.NewState(params.NodeCount, params.RestLength, src.Position(0))
	if err != nil {
		return nil, err
	}
	sm := chain.NewSmoother(params.RotationDamping, params.MaxRotationChange)
	sm.Reset(params.NodeCount - 1)

	p := &Pendant{
		solver:   solver,
		state:    state,
		smoother: sm,
		source:   src,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pendant) AddObserver(o Observer) { p.observers = append(p.observers, o) }

func (p *Pendant) Params() chain.Params { return p.solver.Params() }

// SetParams swaps the tuning. A node count change re-seeds the chain on the
// next Tick.
func (p *Pendant) SetParams(params chain.Params) error {
	return p.solver.SetParams(params)
}

func (p *Pendant) Source() anchor.Source { return p.source }

func (p *Pendant) SetSource(src anchor.Source) {
	if src != nil {
		p.source = src
	}
}

func (p *Pendant) Time() float64 { return p.time }

// Nodes returns a copy of the current node positions.
func (p *Pendant) Nodes() []chain.Vec2 { return p.state.Positions(nil) }

// Restart rewinds time and hangs the chain straight down from the source's
// position at time zero.
func (p *Pendant) Restart() error {
	params := p.solver.Params()
	if err := p.state.Reset(params.NodeCount, params.RestLength, p.source.Position(0)); err != nil {
		return err
	}
	p.smoother.Reset(params.NodeCount - 1)
	p.time = 0
	return nil
}

// Tick advances the simulation by dt seconds. The anchor is read once, at the
// end of the step. Finished image imports are applied before stepping.
func (p *Pendant) Tick(dt float64) (Frame, error) {
	p.collectImages()

	p.time += dt
	at := p.source.Position(p.time)

	tick, err := p.solver.Step(p.state, p.smoother, at, dt)
	if err != nil {
		return Frame{}, err
	}
	if tick.Reinitialized {
		p.log.Debug("chain reinitialized", "nodes", p.state.Len())
	}

	f := Frame{
		Time:          p.time,
		Anchor:        at,
		Bob:           p.state.Bob(),
		Nodes:         p.state.Positions(nil),
		Segments:      tick.Segments,
		Resting:       tick.Resting,
		Reinitialized: tick.Reinitialized,
		ImageChanged:  p.imageDirty,
	}
	p.imageDirty = false

	for _, o := range p.observers {
		o.OnStep(f)
	}
	return f, nil
}

// Valid reports whether every node position is finite.
func (p *Pendant) Valid() bool { return p.state.IsValid() }
