package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraweave/terraweave/pkg/cache"
	"github.com/terraweave/terraweave/pkg/eval"
	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/observability"
)

// evalOpts holds the command-line flags for the eval command.
type evalOpts struct {
	output  string  // output file path, empty prints to stdout
	root    string  // explicit root node ID
	pick    bool    // pick the root interactively
	seed    uint64  // RNG seed
	minX    float64 // spatial window
	maxX    float64
	minZ    float64
	maxZ    float64
	noCache bool // skip the result cache
}

// evalCommand creates the eval command: preview sample positions for a graph.
func (c *CLI) evalCommand() *cobra.Command {
	opts := evalOpts{
		seed: 42,
		maxX: 256,
		maxZ: 256,
	}

	cmd := &cobra.Command{
		Use:   "eval [graph]",
		Short: "Evaluate a position-provider graph into preview samples",
		Long: `Eval interprets the graph and prints the generated sample positions as
JSON. Results are deterministic for a fixed graph, window, seed, and root,
and identical runs are served from the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEval(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.root, "root", "", "start evaluation at this node ID")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "pick the root interactively")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "random seed")
	cmd.Flags().Float64Var(&opts.minX, "min-x", opts.minX, "window minimum X")
	cmd.Flags().Float64Var(&opts.maxX, "max-x", opts.maxX, "window maximum X (exclusive)")
	cmd.Flags().Float64Var(&opts.minZ, "min-z", opts.minZ, "window minimum Z")
	cmd.Flags().Float64Var(&opts.maxZ, "max-z", opts.maxZ, "window maximum Z (exclusive)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "skip the result cache")

	return cmd
}

func (c *CLI) runEval(cmd *cobra.Command, input string, opts *evalOpts) error {
	ctx := cmd.Context()
	store := newCache(opts.noCache)
	defer store.Close()

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	g, err := graph.Unmarshal(data)
	if err != nil {
		return err
	}

	rootID := opts.root
	if opts.pick && rootID == "" {
		rootID, err = pickRoot(g)
		if err != nil {
			return err
		}
	}

	r := eval.Range{MinX: opts.minX, MaxX: opts.maxX, MinZ: opts.minZ, MaxZ: opts.maxZ}
	key := cache.EvalKey(cache.Hash(data), cache.EvalKeyOpts{
		MinX: r.MinX, MaxX: r.MaxX, MinZ: r.MinZ, MaxZ: r.MaxZ,
		Seed: opts.seed, Root: rootID,
	})

	if cached, found, _ := store.Get(ctx, key); found {
		var samples []eval.Sample
		if json.Unmarshal(cached, &samples) == nil {
			printStats(g.NodeCount(), g.EdgeCount(), true)
			return writeSamples(opts.output, cached, len(samples))
		}
	}

	start := time.Now()
	observability.Eval().OnEvaluateStart(ctx, g.NodeCount(), opts.seed)
	samples := eval.Evaluate(g, r, opts.seed, rootID)
	observability.Eval().OnEvaluateComplete(ctx, len(samples), time.Since(start))
	c.Logger.Debugf("Evaluated %d samples in %s", len(samples), time.Since(start).Round(time.Millisecond))

	out, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return err
	}
	_ = store.Set(ctx, key, out, cache.DefaultTTL)

	printStats(g.NodeCount(), g.EdgeCount(), false)
	return writeSamples(opts.output, out, len(samples))
}

// writeSamples writes the sample JSON to the output path, or stdout when
// no path is set.
func writeSamples(output string, data []byte, count int) error {
	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}
	printSuccess("Evaluated %d samples", count)
	printFile(output)
	return nil
}
