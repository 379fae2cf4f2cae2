package sim

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/chainwatch/cascade/pkg/model"
)

func load(t *testing.T, nodes []string, edges [][2]string) *model.Graph {
	t.Helper()

	ns := make([]*model.Node, 0, len(nodes))
	for _, id := range nodes {
		ns = append(ns, &model.Node{ID: id})
	}
	es := make([]*model.Edge, 0, len(edges))
	for _, e := range edges {
		es = append(es, &model.Edge{Source: e[0], Target: e[1]})
	}

	g, err := model.Load(ns, es)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return g
}

func pathIDs(paths []Path) [][]string {
	out := make([][]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.NodeIDs)
	}
	return out
}

func TestSimulateChain(t *testing.T) {
	// A -> B -> C with depth 2 reaches both hops.
	g := load(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	result, err := New(0).Simulate(context.Background(), g, "A", 2)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	want := [][]string{{"A", "B"}, {"A", "B", "C"}}
	if !reflect.DeepEqual(pathIDs(result.Paths), want) {
		t.Errorf("Paths = %v, want %v", pathIDs(result.Paths), want)
	}
	if !reflect.DeepEqual(result.AffectedNodeIDs, []string{"B", "C"}) {
		t.Errorf("AffectedNodeIDs = %v, want [B C]", result.AffectedNodeIDs)
	}
	if result.Metrics.TotalPaths != 2 {
		t.Errorf("TotalPaths = %d, want 2", result.Metrics.TotalPaths)
	}
	if result.Metrics.MaxPathLength != 2 {
		t.Errorf("MaxPathLength = %d, want 2", result.Metrics.MaxPathLength)
	}
	if result.Metrics.AveragePathLength != 1.5 {
		t.Errorf("AveragePathLength = %g, want 1.5", result.Metrics.AveragePathLength)
	}
	if result.Truncated {
		t.Error("Result unexpectedly truncated")
	}
}

func TestSimulateDepthZero(t *testing.T) {
	g := load(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	result, err := New(0).Simulate(context.Background(), g, "A", 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if len(result.Paths) != 0 {
		t.Errorf("Expected no propagation paths at depth 0, got %v", pathIDs(result.Paths))
	}
	if len(result.AffectedNodeIDs) != 0 {
		t.Errorf("Expected empty affected set, got %v", result.AffectedNodeIDs)
	}
}

func TestSimulateCycleTerminates(t *testing.T) {
	// A -> B -> A: only the simple path [A,B] may appear, and the run
	// must terminate despite the cycle.
	g := load(t, []string{"A", "B"}, [][2]string{{"A", "B"}, {"B", "A"}})

	result, err := New(0).Simulate(context.Background(), g, "A", 3)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	want := [][]string{{"A", "B"}}
	if !reflect.DeepEqual(pathIDs(result.Paths), want) {
		t.Errorf("Paths = %v, want %v", pathIDs(result.Paths), want)
	}
}

func TestSimulateDiamond(t *testing.T) {
	// Convergent routes must both be enumerated: the visited set is
	// path-local, not global.
	g := load(t, []string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}})

	result, err := New(0).Simulate(context.Background(), g, "A", 2)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	want := [][]string{{"A", "B"}, {"A", "B", "D"}, {"A", "C"}, {"A", "C", "D"}}
	if !reflect.DeepEqual(pathIDs(result.Paths), want) {
		t.Errorf("Paths = %v, want %v", pathIDs(result.Paths), want)
	}
	if !reflect.DeepEqual(result.AffectedNodeIDs, []string{"B", "C", "D"}) {
		t.Errorf("AffectedNodeIDs = %v, want [B C D]", result.AffectedNodeIDs)
	}
}

func TestSimulateSourceNotFound(t *testing.T) {
	g := load(t, []string{"A"}, nil)

	result, err := New(0).Simulate(context.Background(), g, "missing", 2)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Simulate() error = %v, want ErrNotFound", err)
	}
	if result != nil {
		t.Error("Expected no partial result on NotFound")
	}
}

func TestSimulateInvalidArguments(t *testing.T) {
	g := load(t, []string{"A"}, nil)

	if _, err := New(0).Simulate(context.Background(), g, "A", -1); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("negative depth error = %v, want ErrInvalidArgument", err)
	}
	if _, err := New(0).Simulate(context.Background(), g, "", 2); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("empty source error = %v, want ErrInvalidArgument", err)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	g := load(t, []string{"A", "B", "C", "D", "E"},
		[][2]string{{"A", "D"}, {"A", "B"}, {"B", "C"}, {"D", "C"}, {"C", "E"}})

	s := New(0)
	first, err := s.Simulate(context.Background(), g, "A", 4)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := s.Simulate(context.Background(), g, "A", 4)
		if err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Run %d differed from first run", i)
		}
	}
}

func TestSimulateTruncation(t *testing.T) {
	// Fan-out of 5 from the source gives 5 single-hop paths; a cap of 3
	// keeps the first 3 in traversal order and marks the result.
	g := load(t, []string{"A", "n1", "n2", "n3", "n4", "n5"},
		[][2]string{{"A", "n1"}, {"A", "n2"}, {"A", "n3"}, {"A", "n4"}, {"A", "n5"}})

	result, err := New(3).Simulate(context.Background(), g, "A", 1)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !result.Truncated {
		t.Error("Expected Truncated = true")
	}
	want := [][]string{{"A", "n1"}, {"A", "n2"}, {"A", "n3"}}
	if !reflect.DeepEqual(pathIDs(result.Paths), want) {
		t.Errorf("Paths = %v, want first 3 in traversal order %v", pathIDs(result.Paths), want)
	}
}

func TestSimulateCancellation(t *testing.T) {
	g := load(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(0).Simulate(ctx, g, "A", 2)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if !result.Cancelled {
		t.Error("Expected Cancelled = true for a cancelled context")
	}
	if len(result.Paths) != 0 {
		t.Errorf("Expected no paths for an immediately cancelled run, got %d", len(result.Paths))
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	g := load(t, []string{"A"}, nil)

	m := ComputeMetrics(g, nil)
	if m.TotalPaths != 0 || m.MaxFanOut != 0 || m.AveragePathLength != 0.0 || m.MaxPathLength != 0 {
		t.Errorf("Empty path set should yield zero metrics, got %+v", m)
	}
}

func TestComputeMetricsFanOut(t *testing.T) {
	// B has the largest fan-out (2) among nodes on the enumerated paths.
	g := load(t, []string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"B", "D"}})

	result, err := New(0).Simulate(context.Background(), g, "A", 2)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if result.Metrics.MaxFanOut != 2 {
		t.Errorf("MaxFanOut = %d, want 2", result.Metrics.MaxFanOut)
	}
}
