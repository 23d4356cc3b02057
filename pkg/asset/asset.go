// Package asset implements the persisted tree model for world-generator
// assets: nested, type-discriminated records covering density functions,
// position providers, material stacks, and the other generator families.
//
// An Asset is a discriminant (the "Type" field) plus an open field map.
// Fields the editor does not understand are kept verbatim so that any asset
// written by a newer generator version survives a load/save cycle unchanged
// (modulo field ordering). Nested assets and arrays of assets are the only
// values the lowering pass turns into edges; everything else travels as
// node-local data.
package asset

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
)

// TypeKey is the discriminant field name in the persisted JSON format.
const TypeKey = "Type"

// OrphansKey is the reserved field holding disconnected subtrees: assets that
// share a file with the primary tree but are not referenced by it. They are
// lowered as independent, edge-less roots and re-collected on raising.
const OrphansKey = "Orphans"

// Asset is one node of the persisted tree. Type is the discriminant; Fields
// holds everything else. After Decode, field values are normalized to:
//
//   - float64, string, bool        scalar
//   - map[string]any (no Type key) vector / plain record
//   - *Asset                       nested asset
//   - []any                        homogeneous array of scalars or of *Asset
//
// The zero value is not usable; use New or Decode.
type Asset struct {
	Type   string
	Fields map[string]any
}

// New creates an Asset with the given discriminant and an empty field map.
func New(typ string) *Asset {
	return &Asset{Type: typ, Fields: map[string]any{}}
}

// Set assigns a field value and returns the asset for chaining.
func (a *Asset) Set(name string, v any) *Asset {
	a.Fields[name] = v
	return a
}

// Float returns the named field as a float64. Integers decoded from JSON are
// already float64; anything else reports ok=false.
func (a *Asset) Float(name string) (float64, bool) {
	f, ok := a.Fields[name].(float64)
	return f, ok
}

// FloatOr returns the named float field or def when absent or mistyped.
func (a *Asset) FloatOr(name string, def float64) float64 {
	if f, ok := a.Float(name); ok {
		return f
	}
	return def
}

// String returns the named field as a string.
func (a *Asset) String(name string) (string, bool) {
	s, ok := a.Fields[name].(string)
	return s, ok
}

// Child returns the named field as a nested asset, or nil if the field is
// absent or not an asset.
func (a *Asset) Child(name string) *Asset {
	c, _ := a.Fields[name].(*Asset)
	return c
}

// Children returns the named field as an asset array. Non-asset elements are
// skipped; a missing field yields nil.
func (a *Asset) Children(name string) []*Asset {
	arr, ok := a.Fields[name].([]any)
	if !ok {
		return nil
	}
	var out []*Asset
	for _, v := range arr {
		if c, ok := v.(*Asset); ok {
			out = append(out, c)
		}
	}
	return out
}

// Orphans returns the disconnected subtrees stored under the reserved field.
func (a *Asset) Orphans() []*Asset { return a.Children(OrphansKey) }

// FieldNames returns the asset's field names in sorted order.
// Sorting makes traversal order deterministic, which the lowering pass relies
// on for stable node-id allocation.
func (a *Asset) FieldNames() []string {
	return slices.Sorted(maps.Keys(a.Fields))
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	out := &Asset{Type: a.Type, Fields: make(map[string]any, len(a.Fields))}
	for k, v := range a.Fields {
		out.Fields[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Asset:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Decode parses a persisted JSON asset. Any object carrying a Type key, at
// any depth, becomes an *Asset; other objects stay as plain maps (vectors and
// similar fixed-shape records). Returns an error only for malformed JSON or
// a top-level value that is not a discriminated object.
func Decode(data []byte) (*Asset, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	a, ok := fromValue(raw).(*Asset)
	if !ok {
		return nil, fmt.Errorf("decode asset: top-level value has no %q discriminant", TypeKey)
	}
	return a, nil
}

// fromValue normalizes a decoded JSON value, promoting discriminated objects
// to *Asset recursively.
func fromValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		typ, tagged := t[TypeKey].(string)
		out := make(map[string]any, len(t))
		for k, e := range t {
			if tagged && k == TypeKey {
				continue
			}
			out[k] = fromValue(e)
		}
		if tagged {
			return &Asset{Type: typ, Fields: out}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON emits the persisted format: the discriminant plus all fields.
// Keys are ordered alphabetically by encoding/json; persisted trees compare
// structurally, not byte-wise, so ordering carries no meaning.
func (a *Asset) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Fields)+1)
	out[TypeKey] = a.Type
	for k, v := range a.Fields {
		out[k] = toValue(v)
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses an asset in place. See Decode.
func (a *Asset) UnmarshalJSON(data []byte) error {
	parsed, err := Decode(data)
	if err != nil {
		return err
	}
	*a = *parsed
	return nil
}

func toValue(v any) any {
	switch t := v.(type) {
	case *Asset:
		out := make(map[string]any, len(t.Fields)+1)
		out[TypeKey] = t.Type
		for k, e := range t.Fields {
			out[k] = toValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toValue(e)
		}
		return out
	default:
		return v
	}
}

// Encode renders the asset as indented JSON, matching the on-disk format.
func Encode(a *Asset) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Equal reports structural equality of two assets: same discriminant, same
// field set, recursively equal values. Field ordering and float formatting
// are irrelevant. Used by round-trip tests and by save-time dirty checks.
func Equal(a, b *Asset) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || len(a.Fields) != len(b.Fields) {
		return false
	}
	for k, av := range a.Fields {
		bv, ok := b.Fields[k]
		if !ok || !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch at := a.(type) {
	case *Asset:
		bt, ok := b.(*Asset)
		return ok && Equal(at, bt)
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !valueEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, av := range at {
			bv, ok := bt[k]
			if !ok || !valueEqual(av, bv) {
				return false
			}
		}
		return true
	case float64:
		bt, ok := b.(float64)
		return ok && (at == bt || (math.IsNaN(at) && math.IsNaN(bt)))
	default:
		return a == b
	}
}
