// Package raise reconstructs persisted asset trees from an edited node/edge
// graph. It is the inverse of the lower package: node fields are copied back
// verbatim, inbound edges become nested assets or array slots, and slot
// indexes (not edge insertion order) decide array order.
//
// Raising never fails on partial structure. A root with no resolvable fields
// raises to a minimal asset holding only its discriminant; a missing edge is
// an absent field; an array slot with no emitted element is skipped.
package raise

import (
	"slices"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/resolve"
)

// Raise rebuilds the asset tree rooted at rootID. Only nodes reachable from
// the root through input edges contribute. Returns nil when the root does
// not exist.
func Raise(g *graph.Graph, rootID string, tables *resolve.Tables) *asset.Asset {
	if tables == nil {
		tables = resolve.Default()
	}
	r := &raiser{g: g, tables: tables, visiting: map[string]bool{}}
	return r.raiseNode(rootID)
}

// Tree is the round-trip inverse of lowering one file: the first discovered
// root raises as the primary tree and every remaining root is re-collected
// under the primary's reserved orphans field. Returns nil for an empty graph.
func Tree(g *graph.Graph, tables *resolve.Tables) *asset.Asset {
	roots := g.Roots()
	if len(roots) == 0 {
		return nil
	}
	ids := make([]string, len(roots))
	for i, n := range roots {
		ids[i] = n.ID
	}
	primary := Raise(g, ids[0], tables)
	if len(ids) > 1 {
		orphans := make([]any, 0, len(ids)-1)
		for _, id := range ids[1:] {
			if o := Raise(g, id, tables); o != nil {
				orphans = append(orphans, o)
			}
		}
		primary.Fields[asset.OrphansKey] = orphans
	}
	return primary
}

// Forest raises several independently tagged sub-roots sharing one physical
// graph, one tree per root in the given order. Nodes are partitioned by
// reachability from each root so neither raised tree leaks nodes belonging
// to another. Roots that do not exist yield nil entries.
//
// Nodes unreachable from every tagged root are claimed by the first tree,
// raised from their own candidate roots into its orphans field. Positional
// assignment is the editing surface's convention; the core does not enforce
// a stricter ownership rule.
func Forest(g *graph.Graph, rootIDs []string, tables *resolve.Tables) []*asset.Asset {
	if tables == nil {
		tables = resolve.Default()
	}
	out := make([]*asset.Asset, len(rootIDs))
	claimed := map[string]bool{}
	for i, rootID := range rootIDs {
		allowed := g.Reachable(rootID)
		r := &raiser{g: g, tables: tables, visiting: map[string]bool{}, allowed: allowed}
		out[i] = r.raiseNode(rootID)
		for id := range allowed {
			claimed[id] = true
		}
	}
	if len(out) == 0 || out[0] == nil {
		return out
	}

	// Unclaimed candidate roots fold into the first extracted tree.
	var orphans []any
	for _, n := range g.Roots() {
		if claimed[n.ID] {
			continue
		}
		if o := Raise(g, n.ID, tables); o != nil {
			orphans = append(orphans, o)
		}
	}
	if len(orphans) > 0 {
		out[0].Fields[asset.OrphansKey] = orphans
	}
	return out
}

type raiser struct {
	g        *graph.Graph
	tables   *resolve.Tables
	visiting map[string]bool // call-stack scope; guards against mid-edit cycles
	allowed  map[string]bool // nil means every node is fair game
}

// slotEntry pairs a raised array element with its slot index. Index is the
// source of truth for order; edge insertion order is irrelevant.
type slotEntry struct {
	index int
	child *asset.Asset
}

func (r *raiser) raiseNode(id string) *asset.Asset {
	node, ok := r.g.Node(id)
	if !ok {
		return nil
	}
	a := asset.New(r.tables.Discriminant(node.Type))
	for k, v := range node.Fields {
		a.Fields[k] = v
	}

	arrays := map[string][]slotEntry{}
	for _, port := range r.g.InboundPorts(id) {
		edge, _ := r.g.Source(id, port)
		if r.allowed != nil && !r.allowed[edge.From] {
			continue
		}
		if r.visiting[edge.From] {
			// A cycle introduced mid-edit; the revisiting path raises as
			// an absent field rather than recursing forever.
			continue
		}
		r.visiting[id] = true
		child := r.raiseNode(edge.From)
		delete(r.visiting, id)
		if child == nil {
			continue
		}
		canonical := r.tables.Port(node.Type, port)
		field, index := r.tables.Slot(node.Type, canonical)
		if index < 0 {
			a.Fields[field] = child
		} else {
			arrays[field] = append(arrays[field], slotEntry{index: index, child: child})
		}
	}

	for field, entries := range arrays {
		slices.SortFunc(entries, func(x, y slotEntry) int { return x.index - y.index })
		values := make([]any, 0, len(entries))
		for _, e := range entries {
			values = append(values, e.child)
		}
		a.Fields[field] = values
	}
	return a
}
