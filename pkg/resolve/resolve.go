// Package resolve maps between the persisted tree vocabulary (field names,
// discriminants) and the graph vocabulary (node type labels, port IDs).
//
// Both transformation passes consult the same loaded-once [Tables] value, so
// lowering and raising can never disagree on port naming. All lookups are
// pure and total: an unknown field/discriminant combination resolves to the
// identity mapping rather than an error, so unrecognized or future schema
// additions degrade to inert pass-through instead of blocking an import.
package resolve

import (
	"strings"

	"github.com/terraweave/terraweave/pkg/asset"
)

// CategorySep joins a category prefix and a discriminant into a resolved
// type label, e.g. "Positions.Grid".
const CategorySep = "."

// Generic constants are persisted with one discriminant whether they hold a
// number or a vector; the graph distinguishes the two as separate node types.
const (
	constantType    = "Constant"
	vectorConstType = "VectorConstant"

	// valueField is the constant's payload field inspected by the
	// vector-or-scalar classification rule.
	valueField = "Value"
)

// Category returns the type-label prefix for assets nested under the given
// field, or "" when the field carries no category.
func (t *Tables) Category(field string) string {
	return t.Categories[field]
}

// TypeLabel resolves the graph node type for an asset found under the given
// containing field. The classification of a generic constant as scalar or
// vector happens here, once, at node-materialization time: a constant whose
// value field is a non-array object is a vector constant.
func (t *Tables) TypeLabel(containingField string, a *asset.Asset) string {
	base := a.Type
	if base == constantType {
		if v, ok := a.Fields[valueField]; ok && asset.KindOf(v) == asset.KindVector {
			base = vectorConstType
		}
	}
	if prefix := t.Categories[containingField]; prefix != "" {
		return prefix + CategorySep + base
	}
	return base
}

// Discriminant inverts [Tables.TypeLabel]: it strips a known category prefix
// from a node type label and undoes the vector-constant classification.
// Labels with no known prefix pass through unchanged.
func (t *Tables) Discriminant(label string) string {
	if prefix, rest, ok := strings.Cut(label, CategorySep); ok && t.isCategory(prefix) {
		label = rest
	}
	if label == vectorConstType {
		return constantType
	}
	return label
}

func (t *Tables) isCategory(prefix string) bool {
	for _, p := range t.Categories {
		if p == prefix {
			return true
		}
	}
	return false
}

// Port returns the canonical input port ID for a field of the given node
// type, applying the rename migration when one exists. Unknown combinations
// return the port unchanged. Both passes call this at edge-construction time,
// so a legacy name and its replacement never coexist on one node instance.
func (t *Tables) Port(nodeType, port string) string {
	if renames, ok := t.Renames[nodeType]; ok {
		if current, ok := renames[port]; ok {
			return current
		}
	}
	return port
}

// HandleNames returns the positional port names overriding indexed slots for
// an array-valued field of the given node type. Legacy array fields whose
// positions carry fixed meaning (binary-operator inputs, mix gauges) are
// given semantic names instead of Field[i] slots.
func (t *Tables) HandleNames(nodeType, field string) ([]string, bool) {
	names, ok := t.Handles[nodeType][field]
	return names, ok
}

// Slot inverts port naming for the raising pass: given a canonical inbound
// port ID it returns the tree field the port feeds and the array slot index,
// or index -1 for plain single-asset fields.
//
// Named override ports map back to their position in the override list;
// Field[i] ports parse their index; anything else is a plain field.
func (t *Tables) Slot(nodeType, port string) (field string, index int) {
	for f, names := range t.Handles[nodeType] {
		for i, name := range names {
			if name == port {
				return f, i
			}
		}
	}
	return splitIndexed(port)
}

// splitIndexed parses "Field[i]" port IDs. Anything without a well-formed
// non-negative bracket suffix is a plain field name.
func splitIndexed(port string) (string, int) {
	open := strings.LastIndexByte(port, '[')
	if open <= 0 || !strings.HasSuffix(port, "]") {
		return port, -1
	}
	idx := 0
	digits := port[open+1 : len(port)-1]
	if digits == "" {
		return port, -1
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return port, -1
		}
		idx = idx*10 + int(c-'0')
	}
	return port[:open], idx
}
