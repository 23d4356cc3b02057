package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terraweave/terraweave/pkg/graph"
	"github.com/terraweave/terraweave/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // output format: dot, svg, png
	detailed bool   // include node fields in labels
}

// renderCommand creates the render command for drawing graph diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Render a node graph as a Graphviz diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node fields in labels")

	return cmd
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPNG: true}

func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", f)
	}
	return nil
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()

	g, err := graph.ImportFile(input)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	dot := render.ToDOT(g, render.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG, formatPNG:
		spinner := newSpinnerWithContext(ctx, "Rendering diagram")
		spinner.Start()
		if opts.format == formatSVG {
			data, err = render.SVG(ctx, dot)
		} else {
			data, err = render.PNG(ctx, dot)
		}
		if err != nil {
			spinner.StopWithError(err.Error())
			return err
		}
		spinner.Stop()
	}
	c.Logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	output := opts.output
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		output = strings.TrimSuffix(base, ".graph") + "." + opts.format
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	printFile(output)
	return nil
}
