package chain

import "fmt"

// Params holds the tunable parameters of a chain. Lengths are in the anchor's
// coordinate units (pixels for the interactive hosts), Gravity in units/s²
// and angles in degrees.
type Params struct {
	NodeCount         int
	RestLength        float64
	Iterations        int
	Damping           float64 // fraction of momentum removed per tick, usually [0, 0.1]
	Gravity           float64
	VelocityThreshold float64 // bob speed per tick below which it is brought to rest
	RotationDamping   float64 // blend factor toward the target angle, [0, 1]
	MaxRotationChange float64 // degrees per tick
	Thickness         float64 // rendered segment thickness
}

const (
	DefaultNodeCount         = 24
	DefaultRestLength        = 10.0
	DefaultIterations        = 12
	DefaultDamping           = 0.03
	DefaultGravity           = 3000.0
	DefaultVelocityThreshold = 0.05
	DefaultRotationDamping   = 0.1
	DefaultMaxRotationChange = 5.0
	DefaultThickness         = 4.0
)

func DefaultParams() Params {
	return Params{
		NodeCount:         DefaultNodeCount,
		RestLength:        DefaultRestLength,
		Iterations:        DefaultIterations,
		Damping:           DefaultDamping,
		Gravity:           DefaultGravity,
		VelocityThreshold: DefaultVelocityThreshold,
		RotationDamping:   DefaultRotationDamping,
		MaxRotationChange: DefaultMaxRotationChange,
		Thickness:         DefaultThickness,
	}
}

// Validate checks the structural parameters. Damping and gravity are taken
// as given: a damping of 1 simply arrests all motion.
func (p Params) Validate() error {
	if p.NodeCount < 2 {
		return fmt.Errorf("%w, got %d", ErrNodeCount, p.NodeCount)
	}
	if !(p.RestLength > 0) {
		return fmt.Errorf("%w, got %g", ErrRestLength, p.RestLength)
	}
	if p.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative, got %d", ErrParameterBounds, p.Iterations)
	}
	if p.VelocityThreshold < 0 {
		return fmt.Errorf("%w: velocity threshold must be non-negative, got %g", ErrParameterBounds, p.VelocityThreshold)
	}
	if p.RotationDamping < 0 || p.RotationDamping > 1 {
		return fmt.Errorf("%w: rotation damping must be in [0, 1], got %g", ErrParameterBounds, p.RotationDamping)
	}
	if p.MaxRotationChange < 0 {
		return fmt.Errorf("%w: max rotation change must be non-negative, got %g", ErrParameterBounds, p.MaxRotationChange)
	}
	if p.Thickness < 0 {
		return fmt.Errorf("%w: thickness must be non-negative, got %g", ErrParameterBounds, p.Thickness)
	}
	return nil
}

// GetParams returns the float-valued parameters keyed by name, for hosts that
// tune them interactively.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"nodes":          float64(p.NodeCount),
		"rest_length":    p.RestLength,
		"iterations":     float64(p.Iterations),
		"damping":        p.Damping,
		"gravity":        p.Gravity,
		"rest_threshold": p.VelocityThreshold,
		"rot_damping":    p.RotationDamping,
		"rot_max":        p.MaxRotationChange,
	}
}

// SetParam returns a copy of p with the named parameter replaced.
func (p Params) SetParam(name string, value float64) (Params, error) {
	switch name {
	case "nodes":
		p.NodeCount = int(value + 0.5)
	case "rest_length":
		p.RestLength = value
	case "iterations":
		p.Iterations = int(value + 0.5)
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	case "rest_threshold":
		p.VelocityThreshold = value
	case "rot_damping":
		p.RotationDamping = value
	case "rot_max":
		p.MaxRotationChange = value
	default:
		return p, fmt.Errorf("unknown parameter: %s", name)
	}
	return p, p.Validate()
}
