// Package pkg provides the core libraries for Terraweave world-generator editing.
//
// # Overview
//
// Terraweave bridges two representations of a world-generator configuration:
// the nested JSON asset trees the generator consumes, and the flat node/edge
// graphs a visual editor manipulates. The pkg directory is organized around
// that bridge:
//
//  1. [asset] - Persisted asset trees (discriminated JSON objects)
//  2. [graph] - Editor-side node/edge graphs with ports
//  3. [resolve] - Type label and port name resolution tables
//  4. [lower] / [raise] - Tree-to-graph and graph-to-tree passes
//  5. [eval] - Preview interpreter for position-provider graphs
//  6. [pack] - Asset pack directory I/O, validation, scaffolding
//
// # Architecture
//
// The typical data flow through Terraweave:
//
//	JSON asset file
//	         ↓
//	    [asset] package (decode discriminated tree)
//	         ↓
//	    [lower] package (flatten to node/edge graph)
//	         ↓
//	    edit · [eval] previews · [render] diagrams
//	         ↓
//	    [raise] package (rebuild the asset tree)
//	         ↓
//	    JSON asset file (structurally equal to the input)
//
// # Quick Start
//
// Lower a tree, preview it, and raise it back:
//
//	import (
//	    "github.com/terraweave/terraweave/pkg/eval"
//	    "github.com/terraweave/terraweave/pkg/lower"
//	    "github.com/terraweave/terraweave/pkg/pack"
//	    "github.com/terraweave/terraweave/pkg/raise"
//	)
//
//	// 1. Read an asset tree
//	tree, _ := pack.ReadAsset("Biomes/DefaultBiome.json")
//
//	// 2. Lower it to a graph
//	g := lower.Lower(tree, lower.Options{})
//
//	// 3. Evaluate a preview window
//	samples := eval.Evaluate(g, eval.Range{MinX: 0, MaxX: 256, MinZ: 0, MaxZ: 256}, 42, "")
//
//	// 4. Raise the edited graph back to a tree
//	out := raise.Tree(g, nil)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [asset] - The persisted representation. A discriminated JSON object
// (one with a "Type" key) decodes into a tree of assets; everything else
// stays as plain values. Structural equality, cloning, and field
// classification live here.
//
// [graph] - The editing representation. Nodes hold local fields and canvas
// positions; edges connect a producer's output to one named input port per
// consumer. Deterministic JSON import/export for editor persistence.
//
// [resolve] - The bidirectional naming bridge: category prefixes for type
// labels, legacy port renames, and positional handle names for array
// fields. Unknown names map through unchanged so new schema never breaks
// old editors.
//
// [lower] - Tree flattening. Nested assets become nodes and edges, scalar
// fields stay node-local, and detached subtrees re-lower as independent
// roots placed below the main layout.
//
// [raise] - The inverse pass. Inbound edges become nested assets or array
// slots (slot index decides order), extra roots fold into the primary
// tree's orphans field, and mid-edit cycles degrade to absent fields.
//
// [eval] - Deterministic preview interpreter for position-provider graphs:
// grids, chance filters, offsets, unions. One seeded generator threads
// through the whole evaluation; identical inputs give identical samples.
//
// ## Infrastructure
//
// [pack] - Asset pack directories: recursive load and atomic save,
// single-file helpers, sidebar tree scanning, reference validation, and
// blank-project scaffolding.
//
// [cache] - Content-addressed result caching with file, Redis, MongoDB,
// and null backends. Keys hash the serialized graph plus every evaluation
// parameter, so stale entries are structurally impossible.
//
// [render] - Graphviz diagrams of editor graphs (DOT, SVG, PNG) with
// category-colored nodes and port-labeled edges.
//
// [errors] - Structured error codes shared by the CLI and HTTP API.
//
// [observability] - Hook registry for metrics and tracing, no-op by
// default, registered once at startup.
//
// [buildinfo] - Build-time version information set via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/eval/...     # Specific package
//
// [asset]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/asset
// [graph]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/graph
// [resolve]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/resolve
// [lower]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/lower
// [raise]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/raise
// [eval]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/eval
// [pack]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/pack
// [cache]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/cache
// [render]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/render
// [errors]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/errors
// [observability]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/terraweave/terraweave/pkg/buildinfo
package pkg
