// Package render draws node/edge graphs as Graphviz diagrams for debugging
// and documentation. The canvas positions stored on nodes are ignored; DOT
// layout is structural so overlapping mid-edit nodes still render legibly.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/terraweave/terraweave/pkg/graph"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes node fields in labels.
	// When false, only the node ID and type are shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [SVG] or [PNG].
//
// Edges point from producer to consumer and carry the consumer port as the
// edge label, so positional array slots stay readable in the diagram.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.ToPort == graph.PortOutput || e.ToPort == "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n", e.From, e.To, e.ToPort)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.Type
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	parts := []string{label}
	for _, k := range sortedFieldNames(n) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Fields[k]))
	}
	return strings.Join(parts, "\n")
}

func sortedFieldNames(n *graph.Node) []string {
	names := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Category fill colors. Unprefixed types stay white.
var categoryFills = map[string]string{
	"Positions":   "#dbeafe",
	"Density":     "#dcfce7",
	"Curve":       "#fef9c3",
	"Material":    "#fee2e2",
	"Environment": "#f3e8ff",
	"Tint":        "#ffedd5",
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if cat, _, ok := strings.Cut(n.Type, "."); ok {
		if fill, known := categoryFills[cat]; known {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
	}
	return attrs
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
