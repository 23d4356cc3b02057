package resolve

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Tables holds the resolver's configuration surface: the field→category
// table, the legacy-port rename table, and the positional handle-name
// overrides. The tables are loaded once and shared read-only by both
// transformation passes; they must be versioned alongside schema changes so
// older persisted trees keep lowering correctly.
type Tables struct {
	// Version tags the schema generation the tables describe.
	Version int `toml:"version"`

	// Categories maps a containing field name to the category prefix applied
	// to nested asset type labels, e.g. Positions -> "Positions".
	Categories map[string]string `toml:"categories"`

	// Renames maps node type -> legacy port ID -> current port ID.
	Renames map[string]map[string]string `toml:"renames"`

	// Handles maps node type -> array field -> positional port names used
	// instead of indexed Field[i] slots.
	Handles map[string]map[string][]string `toml:"handles"`
}

// Default returns the built-in tables for the current schema generation.
func Default() *Tables {
	return &Tables{
		Version: 2,
		Categories: map[string]string{
			"Positions":           "Positions",
			"Density":             "Density",
			"Curve":               "Curve",
			"PinchCurve":          "Curve",
			"TwistCurve":          "Curve",
			"MaterialProvider":    "Material",
			"EnvironmentProvider": "Environment",
			"TintProvider":        "Tint",
		},
		Renames: map[string]map[string]string{
			// Pre-v2 files wired filters and offsets through a "Positions"
			// port; the current schema uses the generic "Input".
			"Positions.Chance": {"Positions": "Input"},
			"Positions.Offset": {"Positions": "Input"},
			"Positions.Cache":  {"Positions": "Input"},
		},
		Handles: map[string]map[string][]string{
			// Binary operators keep fixed-meaning slots under stable names.
			"Positions.Union": {"Inputs": []string{"A", "B"}},
			"Density.Mix":     {"Inputs": []string{"A", "B", "Gauge"}},
		},
	}
}

// Parse decodes a TOML tables document and overlays it on the defaults.
// Entries present in the document replace the default entry for the same
// key; everything else keeps its built-in value. This lets a pack pin the
// table version it was authored against without restating the full tables.
func Parse(data []byte) (*Tables, error) {
	var overlay Tables
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse resolver tables: %w", err)
	}
	t := Default()
	if overlay.Version != 0 {
		t.Version = overlay.Version
	}
	for field, prefix := range overlay.Categories {
		t.Categories[field] = prefix
	}
	for nodeType, renames := range overlay.Renames {
		if t.Renames[nodeType] == nil {
			t.Renames[nodeType] = map[string]string{}
		}
		for old, current := range renames {
			t.Renames[nodeType][old] = current
		}
	}
	for nodeType, handles := range overlay.Handles {
		if t.Handles[nodeType] == nil {
			t.Handles[nodeType] = map[string][]string{}
		}
		for field, names := range handles {
			t.Handles[nodeType][field] = names
		}
	}
	return t, nil
}

// Load reads TOML tables from a file. See [Parse].
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resolver tables: %w", err)
	}
	return Parse(data)
}
