package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/pendant/internal/chain"
	"github.com/san-kum/pendant/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Times:   []float64{0, 0.5},
		Anchors: []chain.Vec2{chain.V(0, 0), chain.V(1, 0)},
		Resting: []bool{false, true},
		Nodes: [][]chain.Vec2{
			{chain.V(0, 0), chain.V(0, -10)},
			{chain.V(1, 0), chain.V(0.5, -9.75)},
		},
		StepsTaken: 1,
		Metrics:    map[string]float64{"max_stretch": 0.25},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	runID, err := st.Save(RunMetadata{Name: "test", Anchor: "static:0,0", Params: chain.DefaultParams(), Dt: 0.5, Duration: 0.5, Seed: 42}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "test" || meta.Seed != 42 || meta.Steps != 1 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Params != chain.DefaultParams() {
		t.Errorf("params = %+v", meta.Params)
	}
	if meta.Metrics["max_stretch"] != 0.25 {
		t.Errorf("metrics = %v", meta.Metrics)
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if trace.Len() != 2 {
		t.Fatalf("expected 2 frames, got %d", trace.Len())
	}
	if trace.Times[1] != 0.5 || trace.Anchors[1] != chain.V(1, 0) {
		t.Errorf("frame 1 = t %v anchor %v", trace.Times[1], trace.Anchors[1])
	}
	if trace.Resting[0] || !trace.Resting[1] {
		t.Errorf("resting = %v", trace.Resting)
	}
	if trace.Bob()[1] != chain.V(0.5, -9.75) {
		t.Errorf("bob = %v", trace.Bob())
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := st.Save(RunMetadata{Name: "same"}, sampleResult())
		if err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate run id %s", id)
		}
		seen[id] = true
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
}

func TestStoreWithoutTrace(t *testing.T) {
	st := New(t.TempDir())

	res := &sim.Result{StepsTaken: 600, Metrics: map[string]float64{}}
	id, err := st.Save(RunMetadata{Name: "bench"}, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(st.Dir(), id, "nodes.csv")); !os.IsNotExist(err) {
		t.Errorf("expected no trace file, stat err = %v", err)
	}
	if _, err := st.LoadTrace(id); err == nil {
		t.Error("expected error loading missing trace")
	}
}

func TestListEmpty(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestTraceRaggedRows(t *testing.T) {
	tr := &Trace{
		Times:   []float64{0, 1},
		Anchors: []chain.Vec2{{}, {}},
		Resting: []bool{false, false},
		Nodes: [][]chain.Vec2{
			{chain.V(0, 0), chain.V(0, -10), chain.V(0, -20)},
			{chain.V(0, 0), chain.V(0, -10)},
		},
	}

	var buf bytes.Buffer
	if err := WriteTrace(&buf, tr); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "time,ax,ay,rest,x0,y0,x1,y1,x2,y2" {
		t.Errorf("header = %q", header)
	}

	got, err := ReadTrace(csv.NewReader(&buf))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(got.Nodes[0]) != 3 || len(got.Nodes[1]) != 2 {
		t.Errorf("node counts = %d, %d; want 3, 2", len(got.Nodes[0]), len(got.Nodes[1]))
	}
}

func TestReadTraceBadRow(t *testing.T) {
	in := "time,ax,ay,rest\n0,0,0,0\nx,0,0,0\n"
	if _, err := ReadTrace(csv.NewReader(strings.NewReader(in))); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{ID: "r1", Name: "r", Dt: 0.5}
	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, TraceFromResult(sampleResult())); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out struct {
		ID    string         `json:"id"`
		Dt    float64        `json:"dt"`
		Times []float64      `json:"times"`
		Nodes [][][2]float64 `json:"nodes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if out.ID != "r1" || out.Dt != 0.5 || len(out.Times) != 2 {
		t.Errorf("export = %+v", out)
	}
	if out.Nodes[1][1] != [2]float64{0.5, -9.75} {
		t.Errorf("node = %v", out.Nodes[1][1])
	}
}
