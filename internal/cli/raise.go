package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraweave/terraweave/pkg/asset"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/observability"
	"github.com/terraweave/terraweave/pkg/pack"
	"github.com/terraweave/terraweave/pkg/raise"
)

// raiseOpts holds the command-line flags for the raise command.
type raiseOpts struct {
	output string // output file path
	root   string // explicit root node ID
	pick   bool   // pick the root interactively
	tables string // resolver tables TOML file
}

// raiseCommand creates the raise command: graph file in, asset tree file out.
func (c *CLI) raiseCommand() *cobra.Command {
	var opts raiseOpts

	cmd := &cobra.Command{
		Use:   "raise [graph]",
		Short: "Rebuild a JSON asset tree from an edited node graph",
		Long: `Raise converts an edited node graph back into the nested JSON tree the
generator consumes. By default the whole graph raises as one tree: extra
roots fold into the primary tree's orphans field so nothing is lost.
Use --root to raise a single subtree, or --pick to choose interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRaise(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with .json)")
	cmd.Flags().StringVar(&opts.root, "root", "", "raise only the subtree rooted at this node ID")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick the root interactively")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "resolver tables TOML file")

	return cmd
}

func (c *CLI) runRaise(cmd *cobra.Command, input string, opts *raiseOpts) error {
	ctx := cmd.Context()

	g, err := graph.ImportFile(input)
	if err != nil {
		return err
	}

	tables, err := loadTables(opts.tables)
	if err != nil {
		return err
	}

	rootID := opts.root
	if opts.pick && rootID == "" {
		rootID, err = pickRoot(g)
		if err != nil {
			return err
		}
		if rootID == "" {
			printInfo("No root selected")
			return nil
		}
	}

	start := time.Now()
	observability.Transform().OnRaiseStart(ctx, input)

	var tree *asset.Asset
	if rootID != "" {
		tree = raise.Raise(g, rootID, tables)
		if tree == nil {
			observability.Transform().OnRaiseComplete(ctx, input, 0, time.Since(start), nil)
			return fmt.Errorf("no such node: %s", rootID)
		}
	} else {
		tree = raise.Tree(g, tables)
		if tree == nil {
			observability.Transform().OnRaiseComplete(ctx, input, 0, time.Since(start), nil)
			return fmt.Errorf("graph is empty: %s", input)
		}
	}
	observability.Transform().OnRaiseComplete(ctx, input, len(g.Roots()), time.Since(start), nil)

	output := opts.output
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		base = strings.TrimSuffix(base, ".graph")
		output = base + ".json"
	}

	if err := pack.ExportAsset(output, tree); err != nil {
		return err
	}

	printSuccess("Raised %s", input)
	printDetail("Root type: %s", tree.Type)
	if orphans := tree.Orphans(); len(orphans) > 0 {
		printWarning("%d detached subtrees kept under %q", len(orphans), asset.OrphansKey)
	}
	printFile(output)
	return nil
}
