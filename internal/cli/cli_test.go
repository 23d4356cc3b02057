package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraweave/terraweave/pkg/asset"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir() = %q, want XDG path", dir)
	}
}

func TestCacheDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".cache", appName)) {
		t.Errorf("cacheDir() = %q, want ~/.cache/%s", dir, appName)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := newCache(true)
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "eval:k", []byte("x"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, found, _ := c.Get(ctx, "eval:k"); found {
		t.Error("disabled cache returned a hit")
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{formatDOT, formatSVG, formatPNG} {
		if err := validateFormat(f); err != nil {
			t.Errorf("validateFormat(%q) error: %v", f, err)
		}
	}
	for _, f := range []string{"", "jpeg", "SVG"} {
		if err := validateFormat(f); err == nil {
			t.Errorf("validateFormat(%q) error = nil, want error", f)
		}
	}
}

func TestLoadTables(t *testing.T) {
	tables, err := loadTables("")
	if err != nil || tables == nil {
		t.Fatalf("loadTables(\"\") = %v, %v", tables, err)
	}

	path := filepath.Join(t.TempDir(), "tables.toml")
	if err := os.WriteFile(path, []byte("[categories]\nFoliageProvider = \"Foliage\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	tables, err = loadTables(path)
	if err != nil {
		t.Fatalf("loadTables(file) error: %v", err)
	}
	if tables.Categories["FoliageProvider"] != "Foliage" {
		t.Error("overlay entry missing")
	}

	if _, err := loadTables(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadTables(missing) error = nil, want error")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"lower", "raise", "eval", "render", "validate", "init", "cache", "serve", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestLowerRaiseCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "spawn.json")
	graphOut := filepath.Join(dir, "spawn.graph.json")
	raised := filepath.Join(dir, "raised.json")

	src := `{
	  "Type": "Spawn",
	  "Name": "pines",
	  "Positions": {
	    "Type": "Chance",
	    "Chance": 1.0,
	    "Input": { "Type": "Grid", "Spacing": 8.0 }
	  }
	}`
	if err := os.WriteFile(input, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runCommand(t, "lower", input, "-o", graphOut, "--no-cache"); err != nil {
		t.Fatalf("lower: %v", err)
	}
	if _, err := os.Stat(graphOut); err != nil {
		t.Fatalf("graph file missing: %v", err)
	}

	if err := runCommand(t, "raise", graphOut, "-o", raised); err != nil {
		t.Fatalf("raise: %v", err)
	}

	want, err := asset.Decode([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(raised)
	if err != nil {
		t.Fatal(err)
	}
	got, err := asset.Decode(data)
	if err != nil {
		t.Fatalf("raised output is not an asset: %v", err)
	}
	if !asset.Equal(want, got) {
		t.Error("lower then raise through the CLI changed the tree")
	}
}

func TestInitAndValidateCommands(t *testing.T) {
	dir := t.TempDir()
	if err := runCommand(t, "init", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runCommand(t, "validate", filepath.Join(dir, "HytaleGenerator")); err != nil {
		t.Errorf("validate on a fresh scaffold: %v", err)
	}
	if err := runCommand(t, "init", dir); err == nil {
		t.Error("init on a non-empty directory did not fail")
	}
}

func TestRenderDOTCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "spawn.json")
	graphOut := filepath.Join(dir, "spawn.graph.json")
	dotOut := filepath.Join(dir, "spawn.dot")

	if err := os.WriteFile(input, []byte(`{"Type": "Grid", "Spacing": 8.0}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := runCommand(t, "lower", input, "-o", graphOut, "--no-cache"); err != nil {
		t.Fatalf("lower: %v", err)
	}
	if err := runCommand(t, "render", graphOut, "-f", "dot", "-o", dotOut); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(dotOut)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph G") {
		t.Errorf("render output is not DOT:\n%s", dot)
	}

	if err := runCommand(t, "render", graphOut, "-f", "jpeg"); err == nil {
		t.Error("render with an invalid format did not fail")
	}
}
