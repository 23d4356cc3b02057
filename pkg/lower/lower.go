// Package lower converts a persisted asset tree into a flat node/edge graph
// for the editing surface.
//
// Lowering is a pure function of its inputs: node IDs come from a counter
// scoped to the call plus the caller-supplied prefix, so lowering the same
// tree twice with the same prefix produces identical graphs. That property
// is what makes round-trip tests and stable re-import of unedited files
// possible.
package lower

import (
	"fmt"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/resolve"
)

// Layout spacing for position hints. Inputs sit left of their consumer;
// siblings stack downward. The hints matter only to the editing surface.
const (
	colSpacing    = 260
	rowSpacing    = 140
	orphanSpacing = 600
)

// Options configures one lowering call.
type Options struct {
	// Prefix scopes generated node IDs, e.g. prefix "imp" yields
	// "imp_1", "imp_2", ... Defaults to "node".
	Prefix string

	// X, Y position the root node on the canvas.
	X, Y float64

	// ContainingField names the field the tree's own root was embedded
	// under when lowering a sub-tree of an outer structure. It determines
	// the root's category prefix. Empty for standalone trees.
	ContainingField string

	// Tables are the resolver tables to consult. Nil uses the defaults.
	Tables *resolve.Tables
}

// Lower transforms an asset tree into a graph. It never fails: unrecognized
// discriminants and fields pass through under the resolver's identity
// mapping, so a tree written by a newer schema still imports.
func Lower(a *asset.Asset, opts Options) *graph.Graph {
	if opts.Prefix == "" {
		opts.Prefix = "node"
	}
	if opts.Tables == nil {
		opts.Tables = resolve.Default()
	}
	l := &lowerer{
		g:      graph.New(),
		tables: opts.Tables,
		prefix: opts.Prefix,
		rows:   map[int]int{},
		baseX:  opts.X,
		baseY:  opts.Y,
	}
	l.lowerAsset(a, opts.ContainingField, 0)
	return l.g
}

type lowerer struct {
	g      *graph.Graph
	tables *resolve.Tables
	prefix string
	seq    int
	rows   map[int]int
	baseX  float64
	baseY  float64
}

// nextID allocates the next node ID. The counter is monotonically increasing
// and scoped to this lowering call.
func (l *lowerer) nextID() string {
	l.seq++
	return fmt.Sprintf("%s_%d", l.prefix, l.seq)
}

// place assigns a canvas position hint: one column per tree depth, one row
// per sibling already placed at that depth.
func (l *lowerer) place(depth int) (x, y float64) {
	row := l.rows[depth]
	l.rows[depth]++
	return l.baseX - float64(depth)*colSpacing, l.baseY + float64(row)*rowSpacing
}

// lowerAsset materializes one asset as a node, recursing into nested assets
// and emitting one edge per containment link. Returns the new node's ID.
//
// Field traversal is in sorted field-name order so ID allocation is
// deterministic regardless of decode order.
func (l *lowerer) lowerAsset(a *asset.Asset, containingField string, depth int) string {
	id := l.nextID()
	x, y := l.place(depth)
	node := graph.Node{
		ID:     id,
		Type:   l.tables.TypeLabel(containingField, a),
		X:      x,
		Y:      y,
		Fields: map[string]any{},
	}
	// AddNode cannot fail here: IDs come from the call-scoped counter.
	_ = l.g.AddNode(node)

	for _, name := range a.FieldNames() {
		value := a.Fields[name]
		if name == asset.OrphansKey && asset.KindOf(value) == asset.KindAssetList {
			l.lowerOrphans(a.Children(name))
			continue
		}
		switch asset.KindOf(value) {
		case asset.KindAsset:
			childID := l.lowerAsset(value.(*asset.Asset), name, depth+1)
			port := l.tables.Port(node.Type, name)
			_ = l.g.AddEdge(graph.Edge{From: childID, To: id, ToPort: port})

		case asset.KindAssetList:
			names, named := l.tables.HandleNames(node.Type, name)
			for i, el := range a.Children(name) {
				childID := l.lowerAsset(el, name, depth+1)
				port := graph.IndexedPort(name, i)
				if named && i < len(names) {
					port = names[i]
				}
				port = l.tables.Port(node.Type, port)
				_ = l.g.AddEdge(graph.Edge{From: childID, To: id, ToPort: port})
			}

		default:
			// Scalars, vectors, and scalar arrays stay node-local,
			// including values of shapes this schema version has never
			// seen. They round-trip verbatim on raising.
			node.Fields[name] = value
		}
	}
	return id
}

// lowerOrphans imports disconnected subtrees as independent roots, offset
// below the primary tree and carrying no edge to it.
func (l *lowerer) lowerOrphans(orphans []*asset.Asset) {
	saved := l.baseY
	for i, o := range orphans {
		l.baseY = saved + float64(i+1)*orphanSpacing
		l.lowerAsset(o, "", 0)
	}
	l.baseY = saved
}
