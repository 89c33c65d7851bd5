package anchor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pendant/internal/chain"
)

// Spec describes a Source in configuration files and on the command line.
type Spec struct {
	Kind      string  `yaml:"kind" json:"kind"`
	X         float64 `yaml:"x" json:"x"`
	Y         float64 `yaml:"y" json:"y"`
	ToX       float64 `yaml:"to_x,omitempty" json:"to_x,omitempty"`
	ToY       float64 `yaml:"to_y,omitempty" json:"to_y,omitempty"`
	Radius    float64 `yaml:"radius,omitempty" json:"radius,omitempty"`
	Period    float64 `yaml:"period,omitempty" json:"period,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`
	Frequency float64 `yaml:"frequency,omitempty" json:"frequency,omitempty"`
	Duration  float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
	At        float64 `yaml:"at,omitempty" json:"at,omitempty"`
}

// Kinds lists the accepted Spec kinds with their positional CLI arguments.
var Kinds = map[string]string{
	"static": "x,y",
	"linear": "x,y,to_x,to_y,duration",
	"circle": "x,y,radius,period",
	"sway":   "x,y,amplitude,frequency",
	"step":   "x,y,to_x,to_y,at",
}

func (s Spec) Build() (Source, error) {
	from := chain.V(s.X, s.Y)
	to := chain.V(s.ToX, s.ToY)

	switch s.Kind {
	case "", "static":
		return Static{At: from}, nil
	case "linear":
		return Linear{From: from, To: to, Duration: s.Duration}, nil
	case "circle":
		if s.Radius < 0 {
			return nil, fmt.Errorf("circle radius must be non-negative, got %g", s.Radius)
		}
		return Circle{Center: from, Radius: s.Radius, Period: s.Period}, nil
	case "sway":
		return Sway{Center: from, Amplitude: s.Amplitude, Frequency: s.Frequency}, nil
	case "step":
		return Step{From: from, To: to, At: s.At}, nil
	default:
		return nil, fmt.Errorf("unknown anchor kind: %s", s.Kind)
	}
}

func (s Spec) String() string {
	kind := s.Kind
	if kind == "" {
		kind = "static"
	}
	var vals []float64
	switch kind {
	case "linear":
		vals = []float64{s.X, s.Y, s.ToX, s.ToY, s.Duration}
	case "circle":
		vals = []float64{s.X, s.Y, s.Radius, s.Period}
	case "sway":
		vals = []float64{s.X, s.Y, s.Amplitude, s.Frequency}
	case "step":
		vals = []float64{s.X, s.Y, s.ToX, s.ToY, s.At}
	default:
		vals = []float64{s.X, s.Y}
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return kind + ":" + strings.Join(parts, ",")
}

// Parse reads the "kind:a,b,c" form, e.g. "circle:0,0,80,2".
func Parse(text string) (Spec, error) {
	kind, args, _ := strings.Cut(strings.TrimSpace(text), ":")
	layout, ok := Kinds[kind]
	if !ok {
		return Spec{}, fmt.Errorf("unknown anchor kind: %q", kind)
	}
	names := strings.Split(layout, ",")

	var fields []string
	if args != "" {
		fields = strings.Split(args, ",")
	}
	if len(fields) != len(names) {
		return Spec{}, fmt.Errorf("anchor %s expects %d values (%s), got %d", kind, len(names), layout, len(fields))
	}

	s := Spec{Kind: kind}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Spec{}, fmt.Errorf("anchor %s: %s: %w", kind, names[i], err)
		}
		switch names[i] {
		case "x":
			s.X = v
		case "y":
			s.Y = v
		case "to_x":
			s.ToX = v
		case "to_y":
			s.ToY = v
		case "radius":
			s.Radius = v
		case "period":
			s.Period = v
		case "amplitude":
			s.Amplitude = v
		case "frequency":
			s.Frequency = v
		case "duration":
			s.Duration = v
		case "at":
			s.At = v
		}
	}
	return s, nil
}
