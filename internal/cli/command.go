package cli

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/idelchi/nmclean/internal/nmclean"
	"github.com/idelchi/nmclean/internal/scan"
	"github.com/idelchi/nmclean/internal/size"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Command builds the root command.
//
//nolint:funlen // Flag registration
func (c CLI) Command() *cobra.Command {
	var (
		options    nmclean.Options
		minSizeStr string
	)

	cmd := &cobra.Command{
		Use:   "nmclean [flags] [path]",
		Short: "Find and delete stale node_modules directories",
		Long: heredoc.Doc(`
			nmclean finds node_modules directories below a path and reports their age and size.

			Matched directories are never descended into, and hidden directories are skipped.
			Sizes are resolved in one bulk pass after the scan; a size that cannot be
			determined is shown as '?' and counted as zero when reporting freed space.

			Positional Arguments:
			  path                   Directory to scan. Defaults to current directory if not specified.

			Use --delete to remove the listed directories after a confirmation prompt,
			or --delete --yes to skip it.
		`),
		Example: heredoc.Doc(`
			# List node_modules below the current directory, oldest first
			nmclean

			# Largest first, only those untouched for 30 days
			nmclean --size --older-than 30 ~/src

			# Delete them without asking
			nmclean -a 30 --delete --yes ~/src
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Path = "."
			if len(args) > 0 {
				options.Path = args[0]
			}

			// Parse minSize string to bytes
			if minSizeStr != "" {
				n, err := humanize.ParseBytes(minSizeStr)
				if err != nil {
					return fmt.Errorf("invalid min-size: %w", err)
				}

				options.MinSize = n
			}

			if err := options.Validate(); err != nil {
				return err
			}

			return logic(cmd, options)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.BoolVarP(&options.Delete, "delete", "d", false, "Delete the listed directories")
	flags.BoolVarP(&options.Yes, "yes", "y", false, "Skip the confirmation prompt")
	flags.BoolVarP(&options.SortBySize, "size", "s", false, "Sort by size (largest first) instead of age")
	flags.BoolVar(&options.NewestFirst, "newest", false, "Sort by age newest first (default oldest first)")
	flags.IntVarP(&options.OlderThan, "older-than", "a", 0, "Only include directories older than this many days (0=all)")
	flags.StringVar(&minSizeStr, "min-size", "0B", "Only include directories at least this large (e.g., 100MB)")
	flags.StringVarP(&options.Target, "target", "t", scan.DefaultTarget, "Directory name to look for")
	flags.IntVarP(&options.Concurrency, "jobs", "j", nmclean.DefaultConcurrency(), "Number of concurrent workers")
	flags.StringVar(&options.SizeStrategy, "size-strategy", size.StrategyWalk,
		fmt.Sprintf("How to measure sizes: %v", size.Strategies))
	flags.DurationVar(&options.Timeout, "timeout", 0, "Stop scanning after this long and report partial results (0=none)")
	flags.BoolVar(&options.DryRun, "dry-run", false, "Report what would be deleted without deleting")
	flags.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}
