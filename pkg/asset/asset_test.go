package asset

import (
	"encoding/json"
	"testing"
)

const biomeJSON = `{
  "Type": "Biome",
  "Name": "meadow",
  "Terrain": {
    "Type": "DAOTerrain",
    "Density": { "Type": "Constant", "Value": 0.25 }
  },
  "Props": [
    { "Type": "Prop", "Name": "oak" },
    { "Type": "Prop", "Name": "rock" }
  ],
  "Offset": { "X": 1, "Y": 2, "Z": 3 },
  "Weights": [0.5, 0.5]
}`

func TestDecode(t *testing.T) {
	a, err := Decode([]byte(biomeJSON))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if a.Type != "Biome" {
		t.Errorf("Type = %q, want %q", a.Type, "Biome")
	}
	if name, _ := a.String("Name"); name != "meadow" {
		t.Errorf("Name = %q, want %q", name, "meadow")
	}

	terrain := a.Child("Terrain")
	if terrain == nil {
		t.Fatal("Child(Terrain) = nil")
	}
	density := terrain.Child("Density")
	if density == nil || density.Type != "Constant" {
		t.Fatalf("nested Density did not decode as an asset: %+v", density)
	}
	if v, _ := density.Float("Value"); v != 0.25 {
		t.Errorf("Density.Value = %v, want 0.25", v)
	}

	props := a.Children("Props")
	if len(props) != 2 {
		t.Fatalf("Children(Props) = %d elements, want 2", len(props))
	}
	if name, _ := props[1].String("Name"); name != "rock" {
		t.Errorf("Props[1].Name = %q, want %q", name, "rock")
	}

	// Vectors stay plain maps, not assets.
	if _, isAsset := a.Fields["Offset"].(*Asset); isAsset {
		t.Error("Offset decoded as *Asset, want map[string]any")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed JSON", `{"Type": `},
		{"no discriminant", `{"Name": "meadow"}`},
		{"top-level array", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.input)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	a, err := Decode([]byte(biomeJSON))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	b, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	if !Equal(a, b) {
		t.Error("round-tripped asset is not structurally equal to the original")
	}
}

func TestEqual(t *testing.T) {
	base := func() *Asset {
		a, _ := Decode([]byte(biomeJSON))
		return a
	}

	tests := []struct {
		name   string
		mutate func(*Asset)
		want   bool
	}{
		{"identical", func(*Asset) {}, true},
		{"different discriminant", func(a *Asset) { a.Type = "Other" }, false},
		{"changed scalar", func(a *Asset) { a.Set("Name", "tundra") }, false},
		{"extra field", func(a *Asset) { a.Set("New", 1.0) }, false},
		{"removed field", func(a *Asset) { delete(a.Fields, "Name") }, false},
		{"changed nested value", func(a *Asset) {
			a.Child("Terrain").Child("Density").Set("Value", 0.5)
		}, false},
		{"reordered is still equal", func(a *Asset) {
			// Rebuild the field map in a different insertion order.
			fields := map[string]any{}
			for k, v := range a.Fields {
				fields[k] = v
			}
			a.Fields = fields
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.mutate(b)
			if got := Equal(a, b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	a, _ := Decode([]byte(biomeJSON))
	b := a.Clone()
	if !Equal(a, b) {
		t.Fatal("clone is not equal to the original")
	}
	b.Child("Terrain").Set("New", 1.0)
	if Equal(a, b) {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestMarshalJSONIncludesDiscriminant(t *testing.T) {
	a := New("Constant").Set("Value", 1.5)
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if raw[TypeKey] != "Constant" {
		t.Errorf("marshaled %s = %v, want Constant", TypeKey, raw[TypeKey])
	}
	if raw["Value"] != 1.5 {
		t.Errorf("marshaled Value = %v, want 1.5", raw["Value"])
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"float", 1.5, KindScalar},
		{"string", "x", KindScalar},
		{"bool", true, KindScalar},
		{"vector", map[string]any{"X": 1.0}, KindVector},
		{"asset", New("Constant"), KindAsset},
		{"asset list", []any{New("Prop")}, KindAssetList},
		{"scalar list", []any{1.0, 2.0}, KindScalarList},
		{"empty list", []any{}, KindScalarList},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.value); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestVectorXYZ(t *testing.T) {
	x, y, z := VectorXYZ(map[string]any{"X": 1.0, "Z": 3.0})
	if x != 1 || y != 0 || z != 3 {
		t.Errorf("VectorXYZ() = (%v, %v, %v), want (1, 0, 3)", x, y, z)
	}
}

func TestFieldNamesSorted(t *testing.T) {
	a := New("T").Set("b", 1.0).Set("a", 2.0).Set("c", 3.0)
	names := a.FieldNames()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("FieldNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("FieldNames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
