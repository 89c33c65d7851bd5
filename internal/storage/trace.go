package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/sim"
)

// Trace is the per-frame record of a run as stored in nodes.csv.
type Trace struct {
	Times   []float64
	Anchors []chain.Vec2
	Resting []bool
	Nodes   [][]chain.Vec2
}

func TraceFromResult(r *sim.Result) *Trace {
	return &Trace{
		Times:   r.Times,
		Anchors: r.Anchors,
		Resting: r.Resting,
		Nodes:   r.Nodes,
	}
}

func (t *Trace) Len() int { return len(t.Times) }

// Bob returns the last node of every frame.
func (t *Trace) Bob() []chain.Vec2 {
	out := make([]chain.Vec2, len(t.Nodes))
	for i, nodes := range t.Nodes {
		if len(nodes) > 0 {
			out[i] = nodes[len(nodes)-1]
		}
	}
	return out
}

// WriteTrace writes a header of time,ax,ay,rest,x0,y0,... followed by one row
// per frame. Rows are as wide as the widest frame; narrower frames leave
// trailing cells empty.
func WriteTrace(w io.Writer, t *Trace) error {
	cw := csv.NewWriter(w)

	width := 0
	for _, nodes := range t.Nodes {
		width = max(width, len(nodes))
	}

	header := []string{"time", "ax", "ay", "rest"}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := range t.Times {
		row = row[:0]
		row = append(row, formatFloat(t.Times[i]))

		var a chain.Vec2
		if i < len(t.Anchors) {
			a = t.Anchors[i]
		}
		row = append(row, formatFloat(a[0]), formatFloat(a[1]))

		rest := "0"
		if i < len(t.Resting) && t.Resting[i] {
			rest = "1"
		}
		row = append(row, rest)

		var nodes []chain.Vec2
		if i < len(t.Nodes) {
			nodes = t.Nodes[i]
		}
		for j := 0; j < width; j++ {
			if j < len(nodes) {
				row = append(row, formatFloat(nodes[j][0]), formatFloat(nodes[j][1]))
			} else {
				row = append(row, "", "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTrace parses what WriteTrace wrote.
func ReadTrace(r *csv.Reader) (*Trace, error) {
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	t := &Trace{}
	if len(records) < 2 {
		return t, nil
	}

	for line, record := range records[1:] {
		if len(record) < 4 {
			return nil, fmt.Errorf("line %d: expected at least 4 columns, got %d", line+2, len(record))
		}
		vals, err := parseFloats(record[:3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		t.Times = append(t.Times, vals[0])
		t.Anchors = append(t.Anchors, chain.V(vals[1], vals[2]))
		t.Resting = append(t.Resting, record[3] == "1")

		var nodes []chain.Vec2
		for j := 4; j+1 < len(record); j += 2 {
			if record[j] == "" {
				break
			}
			xy, err := parseFloats(record[j : j+2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line+2, err)
			}
			nodes = append(nodes, chain.V(xy[0], xy[1]))
		}
		t.Nodes = append(t.Nodes, nodes)
	}
	return t, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
