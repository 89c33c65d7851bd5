package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pendant/internal/chain"
)

type ExportData struct {
	RunMetadata
	Times   []float64      `json:"times"`
	Anchors [][2]float64   `json:"anchors"`
	Resting []bool         `json:"resting"`
	Nodes   [][][2]float64 `json:"nodes"`
}

// ExportJSON writes the metadata and trace of a run as one JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, trace *Trace) error {
	data := ExportData{
		RunMetadata: *meta,
		Times:       trace.Times,
		Anchors:     pairs(trace.Anchors),
		Resting:     trace.Resting,
		Nodes:       make([][][2]float64, len(trace.Nodes)),
	}
	for i, nodes := range trace.Nodes {
		data.Nodes[i] = pairs(nodes)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func pairs(vs []chain.Vec2) [][2]float64 {
	out := make([][2]float64, len(vs))
	for i, v := range vs {
		out[i] = [2]float64(v)
	}
	return out
}
