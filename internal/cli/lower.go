package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/cache"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/lower"
	"github.com/terraweave/terraweave/pkg/observability"
)

// lowerOpts holds the command-line flags for the lower command.
type lowerOpts struct {
	output  string // output file path
	prefix  string // node ID prefix
	tables  string // resolver tables TOML file
	noCache bool   // skip the result cache
}

// lowerCommand creates the lower command: asset tree file in, graph file out.
func (c *CLI) lowerCommand() *cobra.Command {
	var opts lowerOpts

	cmd := &cobra.Command{
		Use:   "lower [file]",
		Short: "Flatten a JSON asset tree into an editable node graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLower(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with .graph.json)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "node", "node ID prefix")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "resolver tables TOML file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the result cache")

	return cmd
}

func (c *CLI) runLower(cmd *cobra.Command, input string, opts *lowerOpts) error {
	ctx := cmd.Context()
	store := newCache(opts.noCache)
	defer store.Close()

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".graph.json"
	}

	// Lowered graphs are cached by content hash of the tree plus the prefix.
	key := cache.GraphKey(cache.Hash(data), opts.prefix)
	if cached, found, _ := store.Get(ctx, key); found {
		if err := os.WriteFile(output, cached, 0644); err != nil {
			return err
		}
		g, err := graph.Unmarshal(cached)
		if err == nil {
			printSuccess("Lowered %s", input)
			printStats(g.NodeCount(), g.EdgeCount(), true)
			printFile(output)
			return nil
		}
		// A corrupt cached document falls through to a fresh pass.
	}

	tree, err := asset.Decode(data)
	if err != nil {
		return err
	}

	tables, err := loadTables(opts.tables)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	start := time.Now()
	observability.Transform().OnLowerStart(ctx, input)
	g := lower.Lower(tree, lower.Options{Prefix: opts.prefix, Tables: tables})
	observability.Transform().OnLowerComplete(ctx, input, g.NodeCount(), time.Since(start), nil)
	p.done(fmt.Sprintf("Lowered %d nodes, %d edges", g.NodeCount(), g.EdgeCount()))

	doc, err := graph.Marshal(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, doc, 0644); err != nil {
		return err
	}
	_ = store.Set(ctx, key, doc, cache.DefaultTTL)

	printSuccess("Lowered %s", input)
	printStats(g.NodeCount(), g.EdgeCount(), false)
	printFile(output)
	return nil
}
