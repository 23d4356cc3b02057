package raise

import (
	"testing"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/lower"
)

// spawnTree covers the shapes a round trip must survive: scalars, vectors,
// nested assets, named-handle arrays, indexed arrays, and orphans.
func spawnTree() *asset.Asset {
	return asset.New("WorldStructure").
		Set("Name", "village").
		Set("Anchor", map[string]any{"X": 4.0, "Y": 0.0, "Z": 4.0}).
		Set("Positions", asset.New("Chance").
			Set("Chance", 0.75).
			Set("Input", asset.New("Union").
				Set("Inputs", []any{
					asset.New("Grid").Set("Spacing", 8.0),
					asset.New("Grid").Set("Spacing", 32.0),
				}))).
		Set("Biomes", []any{
			asset.New("BiomeEntry").Set("Biome", "meadow"),
			asset.New("BiomeEntry").Set("Biome", "tundra"),
			asset.New("BiomeEntry").Set("Biome", "desert"),
		}).
		Set(asset.OrphansKey, []any{
			asset.New("Constant").Set("Value", 1.0),
		})
}

func TestRoundTrip(t *testing.T) {
	tree := spawnTree()
	g := lower.Lower(tree, lower.Options{})
	back := Tree(g, nil)
	if back == nil {
		t.Fatal("Tree() = nil")
	}
	if !asset.Equal(tree, back) {
		t.Error("raise(lower(tree)) is not structurally equal to the original")
	}
}

func TestRoundTripIdempotent(t *testing.T) {
	// Lowering a raised tree must reproduce the same graph document.
	g := lower.Lower(spawnTree(), lower.Options{Prefix: "n"})
	again := lower.Lower(Tree(g, nil), lower.Options{Prefix: "n"})

	a, err := graph.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	b, err := graph.Marshal(again)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(a) != string(b) {
		t.Error("lower(raise(lower(tree))) diverged from lower(tree)")
	}
}

func TestRoundTripMigratesLegacyPort(t *testing.T) {
	// Pre-v2 chance nodes carried their upstream under "Positions". A round
	// trip rewrites the field to the current name.
	tree := asset.New("Spawn").
		Set("Positions", asset.New("Chance").
			Set("Chance", 0.5).
			Set("Positions", asset.New("Grid")))
	back := Tree(lower.Lower(tree, lower.Options{}), nil)

	chance := back.Child("Positions")
	if chance == nil {
		t.Fatal("chance node missing after round trip")
	}
	if chance.Child("Input") == nil {
		t.Error("legacy field was not migrated to Input")
	}
	if chance.Child("Positions") != nil {
		t.Error("legacy field survived migration")
	}
}

func TestRaiseSubtree(t *testing.T) {
	g := lower.Lower(spawnTree(), lower.Options{})

	var unionID string
	for _, n := range g.Nodes() {
		if n.Type == "Union" {
			unionID = n.ID
		}
	}
	if unionID == "" {
		t.Fatal("union node not found")
	}

	a := Raise(g, unionID, nil)
	if a == nil || a.Type != "Union" {
		t.Fatalf("Raise(union) = %+v", a)
	}
	inputs := a.Children("Inputs")
	if len(inputs) != 2 {
		t.Fatalf("Inputs = %d elements, want 2", len(inputs))
	}
	if s, _ := inputs[0].Float("Spacing"); s != 8 {
		t.Errorf("Inputs[0].Spacing = %v, want 8", s)
	}
}

func TestRaiseMissingRoot(t *testing.T) {
	g := graph.New()
	if a := Raise(g, "ghost", nil); a != nil {
		t.Errorf("Raise(missing) = %+v, want nil", a)
	}
	if a := Tree(g, nil); a != nil {
		t.Errorf("Tree(empty) = %+v, want nil", a)
	}
}

func TestSlotIndexBeatsEdgeOrder(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "root", Type: "WorldStructure"})
	_ = g.AddNode(graph.Node{ID: "x", Type: "BiomeEntry", Fields: map[string]any{"Biome": "x"}})
	_ = g.AddNode(graph.Node{ID: "y", Type: "BiomeEntry", Fields: map[string]any{"Biome": "y"}})
	// Wired back to front; the slot index must win.
	_ = g.AddEdge(graph.Edge{From: "y", To: "root", ToPort: graph.IndexedPort("Biomes", 1)})
	_ = g.AddEdge(graph.Edge{From: "x", To: "root", ToPort: graph.IndexedPort("Biomes", 0)})

	a := Raise(g, "root", nil)
	entries := a.Children("Biomes")
	if len(entries) != 2 {
		t.Fatalf("Biomes = %d elements, want 2", len(entries))
	}
	first, _ := entries[0].String("Biome")
	second, _ := entries[1].String("Biome")
	if first != "x" || second != "y" {
		t.Errorf("Biomes order = [%s, %s], want [x, y]", first, second)
	}
}

func TestRaiseCycleTerminates(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "a", Type: "Positions.Chance"})
	_ = g.AddNode(graph.Node{ID: "b", Type: "Positions.Offset"})
	_ = g.AddEdge(graph.Edge{From: "b", To: "a", ToPort: "Input"})
	_ = g.AddEdge(graph.Edge{From: "a", To: "b", ToPort: "Input"})

	a := Raise(g, "a", nil)
	if a == nil {
		t.Fatal("Raise() = nil")
	}
	// The revisiting path raises as an absent field.
	if a.Child("Input") == nil {
		t.Fatal("direct child missing")
	}
	if a.Child("Input").Child("Input") != nil {
		t.Error("cycle did not terminate at the revisited node")
	}
}

func TestForest(t *testing.T) {
	g := graph.New()
	for _, n := range []graph.Node{
		{ID: "r1", Type: "Spawn", Fields: map[string]any{"Name": "one"}},
		{ID: "r2", Type: "Spawn", Fields: map[string]any{"Name": "two"}},
		{ID: "g1", Type: "Positions.Grid"},
		{ID: "g2", Type: "Positions.Grid"},
		{ID: "stray", Type: "Constant"},
	} {
		_ = g.AddNode(n)
	}
	_ = g.AddEdge(graph.Edge{From: "g1", To: "r1", ToPort: "Positions"})
	_ = g.AddEdge(graph.Edge{From: "g2", To: "r2", ToPort: "Positions"})

	trees := Forest(g, []string{"r1", "r2"}, nil)
	if len(trees) != 2 {
		t.Fatalf("Forest() = %d trees, want 2", len(trees))
	}
	for i, want := range []string{"one", "two"} {
		if trees[i] == nil {
			t.Fatalf("tree %d is nil", i)
		}
		if name, _ := trees[i].String("Name"); name != want {
			t.Errorf("tree %d Name = %q, want %q", i, name, want)
		}
		if trees[i].Child("Positions") == nil {
			t.Errorf("tree %d lost its positions subtree", i)
		}
	}

	// The stray node folds into the first tree's orphans.
	orphans := trees[0].Orphans()
	if len(orphans) != 1 || orphans[0].Type != "Constant" {
		t.Errorf("orphans = %+v, want one Constant", orphans)
	}
	if len(trees[1].Orphans()) != 0 {
		t.Error("second tree claimed orphans")
	}
}

func TestForestMissingRoot(t *testing.T) {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "r1", Type: "Spawn"})
	trees := Forest(g, []string{"ghost", "r1"}, nil)
	if trees[0] != nil {
		t.Error("missing root should yield a nil tree")
	}
	if trees[1] == nil || trees[1].Type != "Spawn" {
		t.Error("valid root after a missing one was not raised")
	}
}
