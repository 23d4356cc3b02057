package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// =============================================================================
// Graph Serialization
// =============================================================================

// Document is the canonical serialization format for editing graphs. It is
// the shape exchanged with the editing surface, stored in caches, and posted
// to the HTTP API.
//
// The format is designed for round-trip fidelity: lowering a tree, exporting,
// re-importing, and raising reproduces an equivalent tree.
type Document struct {
	Nodes []NodeDoc `json:"nodes" bson:"nodes"`
	Edges []EdgeDoc `json:"edges" bson:"edges"`
}

// NodeDoc is the serialized form of a [Node].
type NodeDoc struct {
	ID     string         `json:"id" bson:"id"`
	Type   string         `json:"type" bson:"type"`
	X      float64        `json:"x,omitempty" bson:"x,omitempty"`
	Y      float64        `json:"y,omitempty" bson:"y,omitempty"`
	Fields map[string]any `json:"fields,omitempty" bson:"fields,omitempty"`
}

// EdgeDoc is the serialized form of an [Edge].
type EdgeDoc struct {
	From     string `json:"from" bson:"from"`
	FromPort string `json:"from_port,omitempty" bson:"from_port,omitempty"`
	To       string `json:"to" bson:"to"`
	ToPort   string `json:"to_port" bson:"to_port"`
}

// ToDocument converts a graph to its serialization format.
// Nodes are sorted by ID for deterministic output.
func ToDocument(g *Graph) Document {
	nodes := g.Nodes()
	slices.SortFunc(nodes, func(a, b *Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	out := Document{
		Nodes: make([]NodeDoc, len(nodes)),
		Edges: make([]EdgeDoc, 0, len(g.Edges())),
	}
	for i, n := range nodes {
		fields := n.Fields
		if len(fields) == 0 {
			fields = nil
		}
		out.Nodes[i] = NodeDoc{ID: n.ID, Type: n.Type, X: n.X, Y: n.Y, Fields: fields}
	}
	for _, e := range g.Edges() {
		from := e.FromPort
		if from == PortOutput {
			from = ""
		}
		out.Edges = append(out.Edges, EdgeDoc{From: e.From, FromPort: from, To: e.To, ToPort: e.ToPort})
	}
	return out
}

// FromDocument converts a serialized document back into a graph.
// Returns an error when the document violates graph constraints
// (duplicate IDs, dangling edges, doubly fed ports).
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, n := range doc.Nodes {
		node := Node{ID: n.ID, Type: n.Type, X: n.X, Y: n.Y, Fields: n.Fields}
		if err := g.AddNode(node); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range doc.Edges {
		edge := Edge{From: e.From, FromPort: e.FromPort, To: e.To, ToPort: e.ToPort}
		if err := g.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("edge %s->%s[%s]: %w", e.From, e.To, e.ToPort, err)
		}
	}
	return g, nil
}

// Marshal serializes a graph to JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal deserializes JSON bytes into a graph.
func Unmarshal(data []byte) (*Graph, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes a graph as indented JSON to w. The output can be re-imported
// with [Read] for round-trip processing.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON graph from r.
func Read(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// ExportFile writes a graph to a JSON file at path.
func ExportFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// ImportFile reads a JSON graph file at path.
func ImportFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
