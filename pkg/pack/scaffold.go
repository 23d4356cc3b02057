package pack

import (
	"os"
	"path/filepath"

	"github.com/terraweave/terraweave/pkg/errors"
)

// GeneratorDir is the root folder name generator packs live under.
const GeneratorDir = "HytaleGenerator"

// Pack subdirectories created by InitProject.
var scaffoldDirs = []string{"Biomes", "Settings", "WorldStructures"}

// Starter files for a blank project. The world structure references the
// starter biome by name, so the pack previews out of the box.
var scaffoldFiles = map[string]string{
	"Settings/Settings.json": `{
  "CustomConcurrency": -1,
  "BufferCapacityFactor": 0.3,
  "TargetViewDistance": 512.0,
  "TargetPlayerCount": 3.0,
  "StatsCheckpoints": []
}
`,
	"WorldStructures/MainWorld.json": `{
  "Type": "NoiseRange",
  "DefaultBiome": "default_biome",
  "DefaultTransitionDistance": 16,
  "MaxBiomeEdgeDistance": 32,
  "Biomes": [
    { "Biome": "default_biome", "Min": -1.0, "Max": 1.0 }
  ],
  "Density": {
    "Type": "SimplexNoise2D",
    "Lacunarity": 2.0,
    "Persistence": 0.5,
    "Scale": 256.0,
    "Octaves": 1,
    "Seed": "main"
  },
  "Framework": {}
}
`,
	"Biomes/DefaultBiome.json": `{
  "Name": "default_biome",
  "Terrain": {
    "Type": "DAOTerrain",
    "Density": { "Type": "Constant", "Value": 0.0 }
  },
  "MaterialProvider": {
    "Type": "Constant",
    "Material": "stone"
  },
  "Props": [],
  "EnvironmentProvider": { "Type": "Constant", "Environment": "default" },
  "TintProvider": { "Type": "Constant", "Color": "#7CFC00" }
}
`,
}

// InitProject creates a blank project with the minimal generator folder
// structure and starter assets. The target must be empty or absent.
func InitProject(target string) error {
	if entries, err := os.ReadDir(target); err == nil && len(entries) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "target directory is not empty: %s", target)
	}

	gen := filepath.Join(target, GeneratorDir)
	for _, sub := range scaffoldDirs {
		if err := os.MkdirAll(filepath.Join(gen, sub), 0755); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "create %s", sub)
		}
	}
	for rel, content := range scaffoldFiles {
		path := filepath.Join(gen, filepath.FromSlash(rel))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return errors.Wrap(errors.ErrCodeIO, err, "write %s", rel)
		}
	}
	return nil
}
