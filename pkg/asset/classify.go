package asset

// Kind classifies a field value once at materialization time, so that the
// lowering pass and the resolver agree on a value's shape instead of
// re-inspecting it at every use site.
type Kind int

const (
	// KindScalar covers numbers, strings, and booleans.
	KindScalar Kind = iota
	// KindVector covers fixed-shape records without a discriminant,
	// e.g. an {X,Y,Z} triple.
	KindVector
	// KindAsset is a nested discriminated asset.
	KindAsset
	// KindAssetList is a homogeneous array of nested assets.
	// Element order is semantically meaningful: it becomes the port index.
	KindAssetList
	// KindScalarList is an array of scalars (or an empty array).
	KindScalarList
)

// KindOf classifies a normalized field value (a value produced by Decode).
// Arrays are classified by their first element; Decode guarantees arrays in
// valid packs are homogeneous, and Validate flags the ones that are not.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case *Asset:
		return KindAsset
	case map[string]any:
		return KindVector
	case []any:
		if len(t) > 0 {
			if _, ok := t[0].(*Asset); ok {
				return KindAssetList
			}
		}
		return KindScalarList
	default:
		return KindScalar
	}
}

// VectorXYZ extracts the X/Y/Z components of a vector record. Missing
// components read as zero.
func VectorXYZ(m map[string]any) (x, y, z float64) {
	x, _ = m["X"].(float64)
	y, _ = m["Y"].(float64)
	z, _ = m["Z"].(float64)
	return x, y, z
}
