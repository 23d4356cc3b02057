package graph

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// buildDiamond wires a -> b -> d and a -> c -> d.
func buildDiamond(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := g.AddNode(Node{ID: id, Type: "T"}); err != nil {
			t.Fatalf("AddNode(%s) error: %v", id, err)
		}
	}
	edges := []Edge{
		{From: "a", To: "b", ToPort: "Input"},
		{From: "a", To: "c", ToPort: "Input"},
		{From: "b", To: "d", ToPort: "A"},
		{From: "c", To: "d", ToPort: "B"},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%+v) error: %v", e, err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty ID) error = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) error: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(duplicate) error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "b", ToPort: "Input"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x", ToPort: "Input"}, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := g.AddEdge(Edge{From: "a", To: "b", ToPort: "Input"}); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "b", ToPort: "Input"}); !errors.Is(err, ErrPortOccupied) {
		t.Errorf("AddEdge(occupied port) error = %v, want ErrPortOccupied", err)
	}
}

func TestDefaultFromPort(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b", ToPort: "Input"})

	e, ok := g.Source("b", "Input")
	if !ok {
		t.Fatal("Source() not found")
	}
	if e.FromPort != PortOutput {
		t.Errorf("FromPort = %q, want %q", e.FromPort, PortOutput)
	}
}

func TestRoots(t *testing.T) {
	g := buildDiamond(t)
	roots := g.Roots()
	if len(roots) != 1 || roots[0].ID != "d" {
		t.Fatalf("Roots() = %v, want [d]", rootIDs(roots))
	}

	// Detaching d's inputs makes b and c roots too.
	g.RemoveEdge("d", "A")
	g.RemoveEdge("d", "B")
	got := rootIDs(g.Roots())
	want := []string{"b", "c", "d"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Roots() after detach = %v, want %v", got, want)
	}
}

func rootIDs(roots []*Node) []string {
	out := make([]string, len(roots))
	for i, n := range roots {
		out[i] = n.ID
	}
	return out
}

func TestRemoveNode(t *testing.T) {
	g := buildDiamond(t)
	g.RemoveNode("b")

	if _, ok := g.Node("b"); ok {
		t.Error("node b still present after RemoveNode")
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	// Both b's inbound edge and its edge into d must be gone.
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if _, ok := g.Source("d", "A"); ok {
		t.Error("edge into d[A] survived removing its source")
	}
}

func TestInboundPortsSorted(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "z"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "z", ToPort: "B"})
	_ = g.AddEdge(Edge{From: "b", To: "z", ToPort: "A"})
	_ = g.AddEdge(Edge{From: "c", To: "z", ToPort: "Inputs[0]"})

	got := g.InboundPorts("z")
	want := []string{"A", "B", "Inputs[0]"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("InboundPorts() = %v, want %v", got, want)
	}
}

func TestReachable(t *testing.T) {
	g := buildDiamond(t)
	_ = g.AddNode(Node{ID: "island"})

	seen := g.Reachable("d")
	for _, id := range []string{"a", "b", "c", "d"} {
		if !seen[id] {
			t.Errorf("Reachable(d) missing %s", id)
		}
	}
	if seen["island"] {
		t.Error("Reachable(d) includes disconnected node")
	}
	if len(g.Reachable("missing")) != 0 {
		t.Error("Reachable(missing) should be empty")
	}
}

func TestSplitPort(t *testing.T) {
	tests := []struct {
		port      string
		wantField string
		wantIndex int
	}{
		{"Input", "Input", -1},
		{"Inputs[0]", "Inputs", 0},
		{"Inputs[12]", "Inputs", 12},
		{"Inputs[]", "Inputs[]", -1},
		{"Inputs[x]", "Inputs[x]", -1},
		{"[3]", "[3]", -1},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			field, index := SplitPort(tt.port)
			if field != tt.wantField || index != tt.wantIndex {
				t.Errorf("SplitPort(%q) = (%q, %d), want (%q, %d)",
					tt.port, field, index, tt.wantField, tt.wantIndex)
			}
		})
	}
}

func TestIndexedPortRoundTrip(t *testing.T) {
	port := IndexedPort("Props", 3)
	if port != "Props[3]" {
		t.Fatalf("IndexedPort() = %q, want Props[3]", port)
	}
	field, index := SplitPort(port)
	if field != "Props" || index != 3 {
		t.Errorf("SplitPort(IndexedPort()) = (%q, %d), want (Props, 3)", field, index)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g := buildDiamond(t)
	n, _ := g.Node("a")
	n.Fields["Spacing"] = 8.0

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round trip changed counts: %d/%d -> %d/%d",
			g.NodeCount(), g.EdgeCount(), back.NodeCount(), back.EdgeCount())
	}
	bn, ok := back.Node("a")
	if !ok {
		t.Fatal("node a missing after round trip")
	}
	if bn.Fields["Spacing"] != 8.0 {
		t.Errorf("Fields[Spacing] = %v, want 8", bn.Fields["Spacing"])
	}

	// Re-marshaling must be byte-identical: the document is used as a cache key.
	again, err := Marshal(back)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("marshaling is not deterministic")
	}
}

func TestFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"duplicate node", Document{Nodes: []NodeDoc{{ID: "a"}, {ID: "a"}}}},
		{"dangling edge", Document{
			Nodes: []NodeDoc{{ID: "a"}},
			Edges: []EdgeDoc{{From: "a", To: "ghost", ToPort: "Input"}},
		}},
		{"doubly fed port", Document{
			Nodes: []NodeDoc{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			Edges: []EdgeDoc{
				{From: "a", To: "c", ToPort: "Input"},
				{From: "b", To: "c", ToPort: "Input"},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromDocument(tt.doc); err == nil {
				t.Error("FromDocument() error = nil, want error")
			}
		})
	}
}

func TestFreshID(t *testing.T) {
	a, b := FreshID(), FreshID()
	if a == b {
		t.Error("FreshID() returned the same ID twice")
	}
	if !strings.HasPrefix(a, "node-") {
		t.Errorf("FreshID() = %q, want node- prefix", a)
	}
}
