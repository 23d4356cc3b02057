// Package graph implements the flat node/edge representation of an asset
// tree: the structure the editing surface mutates, the lowering pass
// produces, and the raising pass and evaluator consume.
//
// Nodes carry only node-local data (scalars, vectors, scalar arrays); every
// nested asset becomes an edge into a named or indexed input port. A node has
// one logical output port, so an input slot fully identifies an edge.
package graph

import (
	"errors"
	"maps"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs are never reused.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrPortOccupied is returned by [Graph.AddEdge] when the target port
	// already has an inbound edge. Every input slot accepts at most one edge.
	ErrPortOccupied = errors.New("target port already connected")
)

// PortOutput is the output port ID for single-output nodes.
const PortOutput = "output"

// Node is a vertex in the editing graph.
//
// Fields holds only scalar, vector, and scalar-array values copied verbatim
// from the source asset; nested assets arrive as inbound edges, not field
// values. X and Y are a canvas position hint: relevant to the editing
// surface, ignored by raising and evaluation.
type Node struct {
	ID     string
	Type   string
	X, Y   float64
	Fields map[string]any
}

// Float returns a numeric field or def when absent or mistyped.
func (n *Node) Float(name string, def float64) float64 {
	if f, ok := n.Fields[name].(float64); ok {
		return f
	}
	return def
}

// Edge is a directed connection from a node's output into another node's
// input port. ToPort is either a plain field name, an indexed slot produced
// by [IndexedPort], or a named slot from the resolver's handle overrides.
type Edge struct {
	From     string
	FromPort string
	To       string
	ToPort   string
}

// Graph is a mutable node/edge set. Nodes keep insertion order, which the
// multi-root raising pass uses as the positional fallback for untagged
// sub-roots. Graph is not safe for concurrent use.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]int          // node ID -> edge indexes
	incoming map[string]map[string]int // node ID -> target port -> edge index
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]int),
		incoming: make(map[string]map[string]int),
	}
}

// FreshID returns a new node ID for nodes created outside a lowering call
// (editor insertions, API mutations). Lowered nodes use deterministic
// counter-based IDs instead; see the lower package.
func FreshID() string { return "node-" + uuid.NewString() }

// AddNode inserts a node. The node's field map is initialized when nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Fields == nil {
		n.Fields = map[string]any{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge connects two existing nodes. It enforces the one-edge-per-input
// invariant: a second edge into the same (node, port) is rejected with
// ErrPortOccupied.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.FromPort == "" {
		e.FromPort = PortOutput
	}
	if _, taken := g.incoming[e.To][e.ToPort]; taken {
		return ErrPortOccupied
	}
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], idx)
	if g.incoming[e.To] == nil {
		g.incoming[e.To] = make(map[string]int)
	}
	g.incoming[e.To][e.ToPort] = idx
	return nil
}

// RemoveEdge disconnects the edge feeding the given input port, if any.
// Edge indexes stay stable; removed slots become tombstones skipped by Edges.
func (g *Graph) RemoveEdge(to, toPort string) {
	idx, ok := g.incoming[to][toPort]
	if !ok {
		return
	}
	e := g.edges[idx]
	delete(g.incoming[to], toPort)
	g.outgoing[e.From] = slices.DeleteFunc(g.outgoing[e.From], func(i int) bool { return i == idx })
	g.edges[idx] = Edge{}
}

// RemoveNode deletes a node and every edge touching it.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, port := range g.InboundPorts(id) {
		g.RemoveEdge(id, port)
	}
	for _, idx := range slices.Clone(g.outgoing[id]) {
		e := g.edges[idx]
		g.RemoveEdge(e.To, e.ToPort)
	}
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
}

// Node returns the node with the given ID, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's own nodes, so field mutations are visible to the graph.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns the live edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.To != "" {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return len(g.Edges()) }

// Inbound returns the edges feeding a node, keyed by target port.
func (g *Graph) Inbound(id string) map[string]Edge {
	ports := g.incoming[id]
	out := make(map[string]Edge, len(ports))
	for port, idx := range ports {
		out[port] = g.edges[idx]
	}
	return out
}

// InboundPorts returns a node's occupied input ports in sorted order.
func (g *Graph) InboundPorts(id string) []string {
	return slices.Sorted(maps.Keys(g.incoming[id]))
}

// Source returns the edge feeding the given input port, or false.
func (g *Graph) Source(to, toPort string) (Edge, bool) {
	idx, ok := g.incoming[to][toPort]
	if !ok {
		return Edge{}, false
	}
	return g.edges[idx], true
}

// OutDegree returns the number of outgoing edges from a node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Roots returns nodes with no outgoing edge, in insertion order. A node
// nothing consumes is a candidate root for raising and evaluation.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			roots = append(roots, g.nodes[id])
		}
	}
	return roots
}

// Reachable returns the set of node IDs reachable from id by walking edges
// backwards (toward inputs), including id itself. This is the containment
// footprint of the sub-tree rooted at id.
func (g *Graph) Reachable(id string) map[string]bool {
	seen := map[string]bool{}
	var walk func(string)
	walk = func(cur string) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		for _, idx := range g.incoming[cur] {
			walk(g.edges[idx].From)
		}
	}
	if _, ok := g.nodes[id]; ok {
		walk(id)
	}
	return seen
}
