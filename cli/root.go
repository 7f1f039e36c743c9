// Package cli wires the catalog commands: serve, browse and version.
package cli

import (
	"github.com/spf13/cobra"
)

// New returns the root command.
func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalog <command> [flags]",
		Short:         "LearnFlow catalog browse service",
		Long:          "Hosts the course, project, study group and resource lists and derives filtered, sorted views over them.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `  $ catalog serve --config configs/local.yaml
  $ catalog browse --file courses.json --q java --fields title,tags --sort rating
  $ catalog version`,
	}

	rootCmd.AddCommand(
		serveCmd(),
		browseCmd(),
		versionCmd(),
	)

	return rootCmd
}
