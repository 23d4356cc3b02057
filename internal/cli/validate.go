package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/terraweave/terraweave/pkg/pack"
)

// validateCommand creates the validate command for checking asset packs.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check an asset pack for broken structure and references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pack.Load(args[0])
			if err != nil {
				return err
			}
			c.Logger.Infof("Loaded %d files (%d asset trees)", len(p.Files), len(p.Assets()))

			report := pack.Validate(p)
			for _, issue := range report.Issues {
				loc := issue.File
				if issue.Where != "" {
					loc += ": " + issue.Where
				}
				switch issue.Severity {
				case pack.SeverityError:
					printError("%s: %s", loc, issue.Message)
				default:
					printWarning("%s: %s", loc, issue.Message)
				}
			}

			if !report.OK() {
				return fmt.Errorf("validation failed with %d issues", len(report.Issues))
			}
			if len(report.Issues) > 0 {
				printInfo("%d warnings", len(report.Issues))
			} else {
				printSuccess("Pack is valid")
			}
			return nil
		},
	}
}

// initCommand creates the init command for scaffolding a blank project.
func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a blank project with the minimal generator layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pack.InitProject(args[0]); err != nil {
				return err
			}
			printSuccess("Created project in %s", args[0])
			printDetail("Layout: %s/{Biomes, Settings, WorldStructures}", pack.GeneratorDir)
			return nil
		},
	}
}
