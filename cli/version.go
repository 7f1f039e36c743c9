package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build metadata, overridden via -ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "catalog %s (commit %s)\n", Version, Commit)
			return err
		},
	}
}
