package cycles

import (
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

func TestScanNoCycles(t *testing.T) {
	g := load(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})

	report := Scan(g, 0)
	if len(report.Cycles) != 0 {
		t.Errorf("Expected no cycles in a DAG, got %d", len(report.Cycles))
	}
}

func TestScanFindsCycle(t *testing.T) {
	g := load(t, []string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}, {"C", "D"}})

	report := Scan(g, 0)
	if len(report.Cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(report.Cycles))
	}

	got := report.Cycles[0].NodeIDs
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("Cycle members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cycle members = %v, want %v", got, want)
			break
		}
	}
}

func TestScanTwoIndependentCycles(t *testing.T) {
	g := load(t, []string{"A", "B", "X", "Y"},
		[][2]string{{"A", "B"}, {"B", "A"}, {"X", "Y"}, {"Y", "X"}})

	report := Scan(g, 0)
	if len(report.Cycles) != 2 {
		t.Fatalf("Expected 2 cycles, got %d", len(report.Cycles))
	}
	// Sorted by smallest member: {A,B} before {X,Y}.
	if report.Cycles[0].NodeIDs[0] != "A" || report.Cycles[1].NodeIDs[0] != "X" {
		t.Errorf("Cycle order not deterministic: %v", report.Cycles)
	}
}

func TestScanHubs(t *testing.T) {
	g := load(t, []string{"hub", "a", "b", "c", "leaf"},
		[][2]string{{"hub", "a"}, {"hub", "b"}, {"hub", "c"}, {"a", "leaf"}})

	report := Scan(g, 3)
	if len(report.Hubs) != 1 {
		t.Fatalf("Expected 1 hub, got %d", len(report.Hubs))
	}
	if report.Hubs[0].NodeID != "hub" || report.Hubs[0].FanOut != 3 {
		t.Errorf("Hub = %+v, want hub with fan-out 3", report.Hubs[0])
	}
}
