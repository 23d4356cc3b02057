// Package eval walks a position-provider graph and computes concrete sample
// positions for live previews.
//
// Evaluation is a pure function of (graph, range, seed, root): no I/O, no
// timers, no goroutines. Callers own cancellation and debouncing; the
// interpreter's contract is that identical inputs produce identical output,
// so stale results can always be discarded safely.
//
// One seeded generator is threaded root-to-leaf in evaluation order. That
// keeps previews deterministic per seed, at the cost of making output
// sensitive to edits upstream of any sampling node. This is a deliberate
// tradeoff; per-node RNG isolation would need a different interpreter design.
package eval

import (
	"math/rand/v2"
	"strings"

	"github.com/terraweave/terraweave/pkg/graph"
)

// MaxSamples caps interpreter output. The cap applies at every node
// boundary, not only at the root, so upstream fan-out cannot accumulate
// unbounded intermediate results.
const MaxSamples = 4096

// Range is the horizontal spatial window samples are generated over.
type Range struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinZ float64 `json:"min_z"`
	MaxZ float64 `json:"max_z"`
}

// Sample is one generated world position.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Node kinds the interpreter understands. Type labels may carry a category
// prefix ("Positions.Grid"); dispatch is on the unprefixed kind.
const (
	KindGrid        = "Grid"
	KindChance      = "Chance"
	KindOffset      = "Offset"
	KindUnion       = "Union"
	KindCache       = "Cache"
	KindConditional = "Conditional"
)

// Evaluable reports whether a node type label belongs to the evaluable set,
// i.e. whether the interpreter has dedicated semantics for it.
func Evaluable(typeLabel string) bool {
	switch kindOf(typeLabel) {
	case KindGrid, KindChance, KindOffset, KindUnion, KindCache, KindConditional:
		return true
	}
	return false
}

// kindOf strips the category prefix from a resolved type label.
func kindOf(typeLabel string) string {
	if _, rest, ok := strings.Cut(typeLabel, "."); ok {
		return rest
	}
	return typeLabel
}

// Evaluate interprets the graph and returns at most MaxSamples positions.
// rootID may be empty; the root is then resolved by cascade: the first
// candidate root (no outgoing edge) with an evaluable type, else the
// evaluable node structurally nearest a terminal. A graph with no evaluable
// node yields an empty result, never an error.
//
// Results are deterministic for a fixed (graph, range, seed, root).
func Evaluate(g *graph.Graph, r Range, seed uint64, rootID string) []Sample {
	root, ok := resolveRoot(g, rootID)
	if !ok {
		return nil
	}
	e := &interp{
		g:        g,
		r:        r,
		rng:      rand.New(rand.NewPCG(seed, 0)),
		visiting: map[string]bool{},
	}
	return e.evalNode(root)
}

// resolveRoot picks the node evaluation starts from.
func resolveRoot(g *graph.Graph, rootID string) (string, bool) {
	if rootID != "" {
		if _, ok := g.Node(rootID); ok {
			return rootID, true
		}
	}
	// Trees imported from disk never declare an explicit root, and a graph
	// mid-edit may have several terminals; fall back to structure.
	for _, n := range g.Roots() {
		if Evaluable(n.Type) {
			return n.ID, true
		}
	}
	// No evaluable terminal: take the evaluable node closest to one.
	depth := distanceToSink(g)
	best, bestDepth := "", -1
	for _, n := range g.Nodes() {
		if !Evaluable(n.Type) {
			continue
		}
		if d, ok := depth[n.ID]; ok && (bestDepth < 0 || d < bestDepth) {
			best, bestDepth = n.ID, d
		}
	}
	return best, best != ""
}

// distanceToSink returns each node's shortest outgoing-edge distance to a
// node with no outgoing edge. Nodes trapped in cycles are absent.
func distanceToSink(g *graph.Graph) map[string]int {
	feeds := map[string][]string{}
	for _, e := range g.Edges() {
		feeds[e.To] = append(feeds[e.To], e.From)
	}
	dist := map[string]int{}
	queue := []string{}
	for _, n := range g.Roots() {
		dist[n.ID] = 0
		queue = append(queue, n.ID)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, from := range feeds[cur] {
			if _, seen := dist[from]; !seen {
				dist[from] = dist[cur] + 1
				queue = append(queue, from)
			}
		}
	}
	return dist
}

type interp struct {
	g        *graph.Graph
	r        Range
	rng      *rand.Rand
	visiting map[string]bool
}

// evalPort evaluates the node feeding the given input port, or nil when the
// port is unconnected or the source is already on the call stack (a true
// cycle short-circuits to empty rather than recursing forever).
func (e *interp) evalPort(id, port string) []Sample {
	edge, ok := e.g.Source(id, port)
	if !ok {
		return nil
	}
	if e.visiting[edge.From] {
		return nil
	}
	return e.evalNode(edge.From)
}

// firstPort evaluates the first connected port among the given names.
// Union inputs may be named (A/B) or indexed (Inputs[i]) depending on how
// the graph was built; both spellings are accepted.
func (e *interp) firstPort(id string, ports ...string) []Sample {
	for _, p := range ports {
		if _, ok := e.g.Source(id, p); ok {
			return e.evalPort(id, p)
		}
	}
	return nil
}

func (e *interp) evalNode(id string) []Sample {
	node, ok := e.g.Node(id)
	if !ok {
		return nil
	}
	// Marked for the duration of the recursion only: a diamond dependency
	// legitimately re-evaluates the same node on a second path.
	e.visiting[id] = true
	defer delete(e.visiting, id)

	var out []Sample
	switch kindOf(node.Type) {
	case KindGrid:
		out = e.evalGrid(node)
	case KindChance:
		out = e.evalChance(node)
	case KindOffset:
		out = e.evalOffset(node)
	case KindUnion:
		a := e.firstPort(id, "A", graph.IndexedPort("Inputs", 0))
		b := e.firstPort(id, "B", graph.IndexedPort("Inputs", 1))
		out = append(append(out, a...), b...)
	case KindCache:
		out = e.evalPort(id, "Input")
	case KindConditional:
		// Predicates are runtime state the editor cannot see; the true
		// branch previews and the false branch is dead by construction.
		out = e.evalPort(id, "True")
	default:
		// Unrecognized types forward their generic input when wired,
		// keeping previews alive across schema additions.
		if _, ok := e.g.Source(id, "Input"); ok {
			out = e.evalPort(id, "Input")
		}
	}

	if len(out) > MaxSamples {
		out = out[:MaxSamples]
	}
	return out
}

// evalGrid emits a jittered lattice over the spatial range. With jitter 0
// the lattice is exact and seed-independent.
func (e *interp) evalGrid(node *graph.Node) []Sample {
	spacing := node.Float("Spacing", 16)
	if spacing <= 0 {
		spacing = 16
	}
	jitter := node.Float("Jitter", 0)
	y := node.Float("Y", 0)

	var out []Sample
	for x := e.r.MinX; x < e.r.MaxX; x += spacing {
		for z := e.r.MinZ; z < e.r.MaxZ; z += spacing {
			if len(out) >= MaxSamples {
				return out
			}
			dx := (e.rng.Float64()*2 - 1) * jitter
			dz := (e.rng.Float64()*2 - 1) * jitter
			out = append(out, Sample{X: x + dx, Y: y, Z: z + dz})
		}
	}
	return out
}

// evalChance keeps each upstream sample independently with the configured
// probability. Chance 0 yields the empty set; chance 1 passes everything
// (Float64 is always below 1).
func (e *interp) evalChance(node *graph.Node) []Sample {
	chance := node.Float("Chance", 0.5)
	upstream := e.evalPort(node.ID, "Input")
	out := make([]Sample, 0, len(upstream))
	for _, s := range upstream {
		if e.rng.Float64() < chance {
			out = append(out, s)
		}
	}
	return out
}

// evalOffset translates upstream samples. The offset is either a vector
// field ("Offset": {X,Y,Z}) or the scalar X/Y/Z fields.
func (e *interp) evalOffset(node *graph.Node) []Sample {
	var dx, dy, dz float64
	if vec, ok := node.Fields["Offset"].(map[string]any); ok {
		dx, _ = vec["X"].(float64)
		dy, _ = vec["Y"].(float64)
		dz, _ = vec["Z"].(float64)
	} else {
		dx = node.Float("X", 0)
		dy = node.Float("Y", 0)
		dz = node.Float("Z", 0)
	}
	upstream := e.evalPort(node.ID, "Input")
	out := make([]Sample, len(upstream))
	for i, s := range upstream {
		out[i] = Sample{X: s.X + dx, Y: s.Y + dy, Z: s.Z + dz}
	}
	return out
}
