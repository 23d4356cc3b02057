package pack

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/terraweave/terraweave/pkg/asset"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding, located by file and field path.
type Issue struct {
	File     string   `json:"file"`
	Where    string   `json:"where"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report collects validation issues for a whole pack.
type Report struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether the pack validated without errors. Warnings alone do
// not fail validation.
func (r *Report) OK() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (r *Report) add(file, where string, sev Severity, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		File:     file,
		Where:    where,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Validate checks the pack's asset trees for problems the editor would
// otherwise surface only as broken previews: empty discriminants, arrays
// mixing nested assets with plain values, and world structures referencing
// biomes no file defines. Untyped files are not validated.
func Validate(p *Pack) *Report {
	r := &Report{}
	biomes := biomeNames(p)

	for _, f := range p.Assets() {
		walkAsset(r, f.Rel, "", f.Asset)
		if strings.HasPrefix(f.Rel, "WorldStructures/") || strings.Contains(f.Rel, "/WorldStructures/") {
			checkBiomeRefs(r, f.Rel, f.Asset, biomes)
		}
	}
	return r
}

// biomeNames collects the Name field of every biome file in the pack.
// Biome files may lack a discriminant (the starter biome does), so untyped
// files under Biomes/ are probed for a Name too.
func biomeNames(p *Pack) map[string]bool {
	names := map[string]bool{}
	for _, f := range p.Files {
		if !strings.Contains("/"+f.Rel, "/Biomes/") {
			continue
		}
		if f.Asset != nil {
			if name, ok := f.Asset.String("Name"); ok && name != "" {
				names[name] = true
			}
			continue
		}
		var probe struct {
			Name string `json:"Name"`
		}
		if json.Unmarshal(f.Raw, &probe) == nil && probe.Name != "" {
			names[probe.Name] = true
		}
	}
	return names
}

func walkAsset(r *Report, file, where string, a *asset.Asset) {
	if a.Type == "" {
		r.add(file, where, SeverityError, "asset has an empty discriminant")
	}
	for _, name := range a.FieldNames() {
		childWhere := name
		if where != "" {
			childWhere = where + "." + name
		}
		walkValue(r, file, childWhere, a.Fields[name])
	}
}

func walkValue(r *Report, file, where string, v any) {
	switch t := v.(type) {
	case *asset.Asset:
		walkAsset(r, file, where, t)
	case []any:
		assets, plain := 0, 0
		for i, e := range t {
			if child, ok := e.(*asset.Asset); ok {
				assets++
				walkAsset(r, file, fmt.Sprintf("%s[%d]", where, i), child)
			} else {
				plain++
				walkValue(r, file, fmt.Sprintf("%s[%d]", where, i), e)
			}
		}
		if assets > 0 && plain > 0 {
			r.add(file, where, SeverityWarning,
				"array mixes nested assets with plain values (%d assets, %d plain)", assets, plain)
		}
	case map[string]any:
		for k, e := range t {
			walkValue(r, file, where+"."+k, e)
		}
	}
}

// checkBiomeRefs verifies that biome names referenced by a world structure
// resolve to a biome file in the pack.
func checkBiomeRefs(r *Report, file string, a *asset.Asset, biomes map[string]bool) {
	if name, ok := a.String("DefaultBiome"); ok && name != "" && !biomes[name] {
		r.add(file, "DefaultBiome", SeverityWarning, "references unknown biome %q", name)
	}
	entries, _ := a.Fields["Biomes"].([]any)
	for i, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := entry["Biome"].(string); ok && name != "" && !biomes[name] {
			r.add(file, fmt.Sprintf("Biomes[%d].Biome", i), SeverityWarning,
				"references unknown biome %q", name)
		}
	}
}
